package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
)

func TestRun(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	tests := []struct {
		name     string
		args     []string
		secret   string
		wantUser string
		wantErr  bool
	}{
		{name: "Explicit user", args: []string{"-u", "alice", "-k", "k1"}, secret: "k1", wantUser: "alice"},
		{name: "Generated user", args: []string{"-k", "k2"}, secret: "k2"},
		{name: "Zero ttl", args: []string{"-ttl", "0s"}, wantErr: true},
		{name: "Unknown flag", args: []string{"-x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			require.Len(t, lines, 2)
			user := strings.TrimPrefix(lines[0], "user: ")
			token := strings.TrimPrefix(lines[1], "Authorization: Bearer ")
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, user)
			} else {
				assert.NotEmpty(t, user)
			}

			parsed, err := middleware.ParseToken(token, tt.secret)
			require.NoError(t, err)
			assert.Equal(t, user, parsed)
		})
	}
}

func TestRunUsesSecretFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-u", "bob"}, &out))

	token := strings.TrimPrefix(strings.Split(strings.TrimSpace(out.String()), "\n")[1], "Authorization: Bearer ")
	userID, err := middleware.ParseToken(token, "from-env")
	require.NoError(t, err)
	assert.Equal(t, "bob", userID)
}
