package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/storage"
)

func newTestService() *ResourceServiceImpl {
	logger := zap.NewNop()
	return NewResourceServiceWithStorage(storage.NewMemoryStorage(logger), logger)
}

func TestCreate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name       string
		collection string
		fields     map[string]any
		wantID     string
		wantErr    error
	}{
		{name: "Client id", collection: "contacts", fields: map[string]any{"id": "bob", "displayName": "Bob"}, wantID: "bob"},
		{name: "Generated id", collection: "events", fields: map[string]any{"subject": "Sync"}},
		{name: "Duplicate id", collection: "contacts", fields: map[string]any{"id": "bob"}, wantErr: storage.ErrResourceConflict},
		{name: "Numeric id", collection: "contacts", fields: map[string]any{"id": 42.0}, wantErr: ErrInvalidResourceID},
		{name: "Id with slash", collection: "contacts", fields: map[string]any{"id": "a/b"}, wantErr: ErrInvalidResourceID},
		{name: "Unknown collection", collection: "drives", fields: map[string]any{}, wantErr: ErrUnknownCollection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource, err := svc.Create(ctx, "alice", tt.collection, tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, resource.ID)
			} else {
				assert.Len(t, resource.ID, 36)
			}
			assert.NotContains(t, resource.Fields, "id")
			assert.Equal(t, resource.ID, resource.Document()["id"])
		})
	}
}

func TestCreateDoesNotModifyInput(t *testing.T) {
	svc := newTestService()
	fields := map[string]any{"id": "bob", "displayName": "Bob"}

	_, err := svc.Create(context.Background(), "alice", "contacts", fields)
	require.NoError(t, err)
	assert.Equal(t, "bob", fields["id"])
}

func TestMergeAndReplace(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "contacts", map[string]any{
		"id": "bob", "displayName": "Bob", "mobilePhone": "123",
	})
	require.NoError(t, err)

	merged, err := svc.Merge(ctx, "alice", "contacts", "bob", map[string]any{
		"displayName": "Robert", "mobilePhone": nil, "jobTitle": "Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"displayName": "Robert", "jobTitle": "Engineer"}, merged.Fields)

	replaced, err := svc.Replace(ctx, "alice", "contacts", "bob", map[string]any{"id": "bob", "nickName": "Bobby"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"nickName": "Bobby"}, replaced.Fields)

	stored, err := svc.Get(ctx, "alice", "contacts", "bob")
	require.NoError(t, err)
	assert.Equal(t, replaced.Fields, stored.Fields)

	_, err = svc.Merge(ctx, "alice", "contacts", "bob", map[string]any{"id": "other"})
	assert.ErrorIs(t, err, ErrInvalidResourceID)

	_, err = svc.Merge(ctx, "alice", "contacts", "missing", map[string]any{})
	assert.ErrorIs(t, err, storage.ErrResourceNotFound)

	_, err = svc.Replace(ctx, "alice", "contacts", "missing", map[string]any{})
	assert.ErrorIs(t, err, storage.ErrResourceNotFound)
}

func TestListAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		_, err := svc.Create(ctx, "alice", "messages", map[string]any{"id": id})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "mallory", "messages", map[string]any{"id": "z"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", "messages", "b"))

	list, err := svc.List(ctx, "alice", "messages")
	require.NoError(t, err)
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	assert.ErrorIs(t, svc.Delete(ctx, "alice", "messages", "b"), storage.ErrResourceNotFound)
	_, err = svc.List(ctx, "alice", "unknown")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestContent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "messages", map[string]any{"id": "m1", "content": "Hello"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "messages", map[string]any{"id": "m2", "content": map[string]any{"a": 1.0}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "messages", map[string]any{"id": "m3"})
	require.NoError(t, err)

	text, err := svc.Content(ctx, "alice", "messages", "m1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)

	text, err = svc.Content(ctx, "alice", "messages", "m2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, text)

	_, err = svc.Content(ctx, "alice", "messages", "m3")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestProfile(t *testing.T) {
	profile := newTestService().Profile("alice")
	assert.Equal(t, "alice", profile.ID)
	assert.Equal(t, "alice", profile.UserPrincipalName)
}

func TestConcurrentAccess(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	iterations := 100

	var wg sync.WaitGroup
	errs := make(chan error, iterations*2)

	wg.Add(iterations)
	for i := 0; i < iterations; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, "alice", "events", map[string]any{"subject": "standup"}); err != nil {
				errs <- err
			}
		}()
	}

	wg.Add(iterations)
	for i := 0; i < iterations; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.List(ctx, "alice", "events"); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Error during concurrent access: %v", err)
	}

	list, err := svc.List(ctx, "alice", "events")
	require.NoError(t, err)
	assert.Len(t, list, iterations)
}
