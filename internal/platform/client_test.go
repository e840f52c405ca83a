package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prbot/prbot/internal/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	upgrader := auth.NewUser("test-token")
	gh := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = baseURL

	return &client{gh: gh, http: server.Client(), upgrader: upgrader}
}

func TestGetRepository(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello-world", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 123, "full_name": "octocat/hello-world"})
	})

	repo, err := c.GetRepository(context.Background(), "octocat", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, int64(123), repo.ID)
	assert.Equal(t, "octocat/hello-world", repo.FullName)
}

func TestGetPullRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"number": 42,
			"title":  "Add feature",
			"state":  "open",
			"user":   map[string]any{"login": "octocat"},
			"base":   map[string]any{"ref": "main", "sha": "base-sha"},
			"head":   map[string]any{"ref": "feature", "sha": "head-sha"},
			"draft":  false,
		})
	})

	pr, err := c.GetPullRequest(context.Background(), "octocat", "hello-world", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "octocat", pr.Author)
	assert.Equal(t, "main", pr.BaseBranch)
	assert.Equal(t, "feature", pr.HeadBranch)
}

func TestListCheckRunsPaginates(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Link", `<https://x/?page=2>; rel="next"`)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"check_runs": []map[string]any{{"name": "build", "status": "completed", "conclusion": "success"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"check_runs": []map[string]any{{"name": "test", "status": "completed", "conclusion": "failure"}},
		})
	})

	runs, err := c.ListCheckRuns(context.Background(), "octocat", "hello-world", "abc123")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "build", runs[0].Name)
	assert.Equal(t, "test", runs[1].Name)
	assert.Equal(t, 2, calls)
}

func TestSetCommitStatusTruncatesDescription(t *testing.T) {
	var received string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received, _ = body["description"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{})
	})

	longBody := strings.Repeat("x", 200)
	err := c.SetCommitStatus(context.Background(), "octocat", "hello-world", "abc123", CommitStatusPending, "prbot", longBody)
	require.NoError(t, err)
	assert.Len(t, received, 139)
}

func TestListLabels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{"name": "bug"}, {"name": "step/awaiting-review"}})
	})

	labels, err := c.ListLabels(context.Background(), "octocat", "hello-world", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "step/awaiting-review"}, labels)
}

func TestCreateComment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 999})
	})

	id, err := c.CreateComment(context.Background(), "octocat", "hello-world", 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(999), id)
}

func TestEnsureInstallationAuthSkipsNonAppMode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be made when upgrader is not in app mode")
	})

	err := c.EnsureInstallationAuth(context.Background(), "octocat", "hello-world")
	assert.NoError(t, err)
}

func TestWithRetryDoesNotRetryGithubErrorResponse(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), "test_op", func() error {
		attempts++
		return &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusNotFound}}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryRetriesTransportErrors(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), "test_op", func() error {
		attempts++
		return fmt.Errorf("transport blip")
	})
	assert.Error(t, err)
	assert.Equal(t, maxRetryAttempts, attempts)
}
