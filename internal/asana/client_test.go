package asana_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dy-sh/asana-tracker/internal/asana"
)

func newTestClient(t *testing.T, handler http.Handler) *asana.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return asana.NewClient("test-token", asana.WithBaseURL(srv.URL))
}

func TestMe(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/me", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"data":{"gid":"42","name":"Ada Lovelace","email":"ada@example.com"}}`)
		},
	))

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", user.GID)
	assert.Equal(t, "Ada Lovelace", user.Name)
}

func TestMeUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":[{"message":"Not Authorized"}]}`)
		},
	))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, asana.IsAuthError(err))
	assert.Contains(t, err.Error(), "Not Authorized")
}

func TestListWorkspacesFollowsPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workspaces", r.URL.Path)
			assert.Equal(t, "100", r.URL.Query().Get("limit"))

			switch r.URL.Query().Get("offset") {
			case "":
				fmt.Fprint(w, `{"data":[{"gid":"w1","name":"Alpha"}],"next_page":{"offset":"cursor-2"}}`)
			case "cursor-2":
				fmt.Fprint(w, `{"data":[{"gid":"w2","name":"Beta"}],"next_page":null}`)
			default:
				t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			}
		},
	))

	ws, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "Alpha", ws[0].Name)
	assert.Equal(t, "Beta", ws[1].Name)
}

func TestListProjectsSetsQueryParameters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/projects", r.URL.Path)
			assert.Equal(t, "ws1", r.URL.Query().Get("workspace"))
			assert.Contains(t, r.URL.Query().Get("opt_fields"), "completed")
			fmt.Fprint(w, `{"data":[{"gid":"p1","name":"Site Redesign","color":"light-green","archived":false}]}`)
		},
	))

	projects, err := client.ListProjects(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Site Redesign", projects[0].Name)
	assert.Equal(t, "light-green", projects[0].Color)
}

func TestListTasks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/projects/p1/tasks", r.URL.Path)
			fmt.Fprint(w, `{"data":[{"gid":"t1","name":"Draft","completed":true},{"gid":"t2","name":"Review","completed":false}]}`)
		},
	))

	tasks, err := client.ListTasks(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.True(t, tasks[0].Completed)
	assert.False(t, tasks[1].Completed)
}

func TestListProjectStatuses(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/projects/p1/project_statuses", r.URL.Path)
			fmt.Fprint(w, `{"data":[{"gid":"s1","text":"Going well","color":"green","created_at":"2025-06-01T12:00:00.000Z"}]}`)
		},
	))

	statuses, err := client.ListProjectStatuses(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "green", statuses[0].Color)
	require.NotNil(t, statuses[0].CreatedAt)
	assert.Equal(t, 2025, statuses[0].CreatedAt.Year())
}

func TestGetRetriesOnRateLimit(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"data":[{"gid":"w1","name":"Alpha"}]}`)
		},
	))

	ws, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Len(t, ws, 1)
	assert.Equal(t, 2, calls)
}

func TestGetReportsAPIErrorMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"errors":[{"message":"project access denied"}]}`)
		},
	))

	_, err := client.ListTasks(context.Background(), "p1")
	require.Error(t, err)
	assert.False(t, asana.IsAuthError(err))
	assert.Contains(t, err.Error(), "project access denied")
}
