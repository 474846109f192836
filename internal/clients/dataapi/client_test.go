package dataapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youthunion-chat/internal/common/config"
	apperrors "youthunion-chat/internal/common/errors"
	commonhttp "youthunion-chat/internal/common/http"
	"youthunion-chat/internal/common/logger"
	"youthunion-chat/internal/models"
)

type stubTokens struct {
	mu          sync.Mutex
	tokens      []string
	calls       int
	invalidated int
	err         error
}

func (s *stubTokens) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	tok := s.tokens[min(s.calls, len(s.tokens)-1)]
	s.calls++
	return tok, nil
}

func (s *stubTokens) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
}

func newTestClient(t *testing.T, server *httptest.Server, tokens TokenSource, retries int) *Client {
	t.Helper()
	httpClient := commonhttp.NewClient(2*time.Second,
		commonhttp.WithMaxRetries(retries), commonhttp.WithBaseDelay(time.Millisecond))
	return NewWithTokenSource(server.URL+"/api", httpClient, tokens, logger.NewTestLogger(t))
}

func TestListActivities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/activities/", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("page_size"))
		assert.Equal(t, "hiến máu", r.URL.Query().Get("search"))
		assert.False(t, r.URL.Query().Has("type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count": 1, "next": null, "previous": null, "results": [
			{"id": 3, "title": "Hiến máu nhân đạo", "start_date": "2025-06-10T08:00:00Z", "participants_count": 4}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &stubTokens{tokens: []string{"tok-1"}}, 0)

	list, err := client.ListActivities(context.Background(), models.ListOptions{Page: 1, PageSize: 50, Search: "hiến máu"})

	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	assert.Equal(t, int64(3), list.Results[0].ID)
	assert.Equal(t, "Hiến máu nhân đạo", list.Results[0].Title)
	assert.Equal(t, 2025, list.Results[0].StartDate.Year())
}

func TestFetch_SubstitutesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/activities/42/", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"id": 42, "title": "Mùa hè xanh"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &stubTokens{tokens: []string{"tok"}}, 0)

	raw, err := client.Fetch(context.Background(), "/activities/{id}/", http.MethodGet, map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 42, "title": "Mùa hè xanh"}`, string(raw))

	raw, err = client.FetchByID(context.Background(), "activities", "42")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Mùa hè xanh")
}

func TestFetch_MissingIDForPlaceholder(t *testing.T) {
	client := NewWithTokenSource("http://unused/", commonhttp.NewClient(time.Second), &stubTokens{tokens: []string{"tok"}}, logger.NewNoOpLogger())

	_, err := client.Fetch(context.Background(), "/activities/{id}/", http.MethodGet, map[string]string{"search": "x"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDataAPIRequestFailed, apperrors.CodeOf(err))
}

func TestFetch_PostSendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"search": "clb"}, body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &stubTokens{tokens: []string{"tok"}}, 0)

	raw, err := client.Fetch(context.Background(), "/reports/", http.MethodPost, map[string]string{"search": "clb"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(raw))
}

func TestFetch_ReauthenticatesOnceOn401(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"total_activities": 12}`))
	}))
	defer server.Close()

	tokens := &stubTokens{tokens: []string{"expired", "fresh"}}
	client := newTestClient(t, server, tokens, 0)

	raw, err := client.Fetch(context.Background(), "/dashboard/stats/", http.MethodGet, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"total_activities": 12}`, string(raw))
	assert.Equal(t, 1, tokens.invalidated)
	assert.Equal(t, []string{"Bearer expired", "Bearer fresh"}, seen)
}

func TestFetch_Persistent401Fails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Given token not valid"}`))
	}))
	defer server.Close()

	tokens := &stubTokens{tokens: []string{"a", "b"}}
	client := newTestClient(t, server, tokens, 0)

	_, err := client.Fetch(context.Background(), "/users/", http.MethodGet, nil)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDataAPIRequestFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, 1, tokens.invalidated)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &stubTokens{tokens: []string{"tok"}}, 2)

	raw, err := client.Fetch(context.Background(), "/posts/", http.MethodGet, nil)

	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
	assert.Equal(t, 3, attempts)
}

func TestFetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &stubTokens{tokens: []string{"tok"}}, 2)

	_, err := client.FetchByID(context.Background(), "activities", "999")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDataAPIRequestFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "Not found.")
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, &stubTokens{tokens: []string{"tok"}}, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, "/activities/", http.MethodGet, nil)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDataAPITimeout, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsTimeout(err))
}

func TestFetch_TokenFailure(t *testing.T) {
	client := NewWithTokenSource("http://unused/", commonhttp.NewClient(time.Second),
		&stubTokens{err: apperrors.NewDataAPIAuthFailedError(errors.New("bad credentials"))}, logger.NewNoOpLogger())

	_, err := client.Fetch(context.Background(), "/activities/", http.MethodGet, nil)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDataAPIAuthFailed, apperrors.CodeOf(err))
}

func TestNew_LogsInWithServiceAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			var creds map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "chatbot", creds["username"])
			assert.Equal(t, "secret", creds["password"])
			w.Write([]byte(`{"access": "svc-token", "refresh": "r"}`))
		case "/api/activities/":
			assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
			w.Write([]byte(`{"count": 0, "results": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(config.DataAPIConfig{
		BaseURL:  server.URL + "/api/",
		Username: "chatbot",
		Password: "secret",
		Timeout:  2000,
	}, logger.NewTestLogger(t))

	list, err := client.ListActivities(context.Background(), models.ListOptions{Page: 1})

	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
}
