package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xieumar/HNG-Framez/internal/storage"
)

// uploadBackend stitches the ticket endpoint and the blob store into one
// httptest server, mimicking the real upload flow end to end.
func uploadBackend(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore("placeholder")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/uploads", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ticket, err := store.CreateUploadTicket(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ticket)
	})
	mux.Handle("/upload/", store.Handler())
	mux.Handle("/object/", store.Handler())

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	store.SetBaseURL(server.URL)
	return server, store
}

func TestUploadImage(t *testing.T) {
	server, store := uploadBackend(t)
	c := New(server.URL, "token")

	objectID, err := c.UploadImage(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, objectID)

	url, err := store.Resolve(context.Background(), objectID)
	require.NoError(t, err)
	assert.NotEmpty(t, url, "blob landed in the store")
}

func TestAPIErrorSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"not the owner"}`))
	}))
	defer server.Close()

	c := New(server.URL, "token")
	err := c.DeletePost(context.Background(), "p1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "not the owner", apiErr.Message)
}

func TestCreateCommentParsesVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts/p1/comments", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"comment_id":"c1","post_version":42}`))
	}))
	defer server.Close()

	c := New(server.URL, "token")
	commentID, version, err := c.CreateComment(context.Background(), "p1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "c1", commentID)
	assert.EqualValues(t, 42, version)
}

func TestFeedParsesPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts":[{"id":"p1","content":"hi","comments_count":3,"version":7,"author":{"id":"u1","name":"Ana"}}]}`))
	}))
	defer server.Close()

	c := New(server.URL, "")
	posts, err := c.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
	assert.EqualValues(t, 3, posts[0].CommentsCount)
	assert.EqualValues(t, 7, posts[0].Version)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "Ana", posts[0].Author.Name)
}
