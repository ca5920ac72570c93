package stdjson

import (
	"encoding/json" // want "use github.com/goccy/go-json instead of encoding/json"
	"strings"
)

func Encode(v any) string {
	var b strings.Builder
	_ = json.NewEncoder(&b).Encode(v)
	return b.String()
}
