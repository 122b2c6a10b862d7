package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_SignInKeepsToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "id-token", body["idToken"])
		writeJSON(w, http.StatusOK, map[string]any{
			"token":   "session-token",
			"user":    map[string]any{"username": "ada"},
			"created": true,
		})
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"username": "ada"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	sess, err := c.SignIn(context.Background(), "id-token")
	require.NoError(t, err)
	assert.True(t, sess.Created)
	assert.Equal(t, "ada", sess.User.Username)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", me.Username)
	assert.Equal(t, "Bearer session-token", gotAuth)
}

func TestClient_DecodesErrorBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/v1/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"code":    "FORBIDDEN",
			"message": "Not the owner",
		})
	})
	mux.HandleFunc("GET /api/v1/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithToken("t"))

	err := c.DeleteCampaign(context.Background(), "cmp-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "Not the owner", apiErr.Message)
	assert.True(t, IsForbidden(err))

	_, err = c.Campaign(context.Background(), "cmp-missing")
	assert.True(t, IsNotFound(err))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not Found", apiErr.Message)
}

func TestClient_QueryParameters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/campaigns", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ada", r.URL.Query().Get("username"))
		writeJSON(w, http.StatusOK, map[string]any{
			"campaigns": []map[string]any{{"id": "cmp-1", "username": "ada"}},
			"canCreate": true,
		})
	})
	mux.HandleFunc("GET /api/v1/books", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "dun", q.Get("search"))
		assert.Empty(t, q.Get("cursor"))
		writeJSON(w, http.StatusOK, map[string]any{
			"books":   []map[string]any{{"id": "bk-1", "title": "Dune"}},
			"hasMore": false,
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	list, err := c.Campaigns(context.Background(), "ada")
	require.NoError(t, err)
	require.Len(t, list.Campaigns, 1)
	assert.True(t, list.CanCreate)

	page, err := c.Books(context.Background(), BookQuery{Search: "dun"})
	require.NoError(t, err)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Dune", page.Books[0].Title)
}

func TestClient_PublicCampaignsFollowsCursor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/public-campaigns", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("limit"))
		switch q.Get("cursor") {
		case "":
			writeJSON(w, http.StatusOK, map[string]any{
				"campaigns":  []map[string]any{{"id": "cmp-3"}, {"id": "cmp-2"}},
				"nextCursor": "c2",
				"hasMore":    true,
			})
		case "c2":
			writeJSON(w, http.StatusOK, map[string]any{
				"campaigns": []map[string]any{{"id": "cmp-1"}},
				"hasMore":   false,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	var (
		ids    []string
		cursor string
	)
	for {
		page, err := c.PublicCampaigns(context.Background(), cursor, 2)
		require.NoError(t, err)
		for _, cmp := range page.Campaigns {
			ids = append(ids, cmp.ID)
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []string{"cmp-3", "cmp-2", "cmp-1"}, ids)
}
