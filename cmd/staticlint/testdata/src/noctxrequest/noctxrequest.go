package noctxrequest

import (
	"context"
	"net/http"
)

func Build(ctx context.Context) {
	_, _ = http.NewRequest(http.MethodGet, "/v1.0/me", nil) // want "use http.NewRequestWithContext to propagate deadlines"
	_, _ = http.NewRequestWithContext(ctx, http.MethodGet, "/v1.0/me", nil)
}
