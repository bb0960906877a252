package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUploadRoundTrip(t *testing.T) {
	store := NewMemoryStore("placeholder")
	server := httptest.NewServer(store.Handler())
	defer server.Close()
	store.SetBaseURL(server.URL)

	ctx := context.Background()
	ticket, err := store.CreateUploadTicket(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ObjectID)

	// unuploaded object does not resolve
	url, err := store.Resolve(ctx, ticket.ObjectID)
	require.NoError(t, err)
	assert.Empty(t, url)

	req, err := http.NewRequest(http.MethodPut, ticket.UploadURL, strings.NewReader("binary-bytes"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "image/jpeg")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), ticket.ObjectID, "upload echoes the storage id")

	url, err = store.Resolve(ctx, ticket.ObjectID)
	require.NoError(t, err)
	require.NotEmpty(t, url)

	getResp, err := http.Get(url)
	require.NoError(t, err)
	defer getResp.Body.Close()
	served, err := io.ReadAll(getResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "binary-bytes", string(served))
	assert.Equal(t, "image/jpeg", getResp.Header.Get("Content-Type"))
}

func TestMemoryStoreUploadWithoutTicket(t *testing.T) {
	store := NewMemoryStore("placeholder")
	server := httptest.NewServer(store.Handler())
	defer server.Close()

	req, err := http.NewRequest(http.MethodPut, server.URL+"/upload/forged-id", strings.NewReader("x"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore("https://blob.test")
	ctx := context.Background()

	ticket, err := store.CreateUploadTicket(ctx)
	require.NoError(t, err)
	store.Put(ticket.ObjectID, []byte("x"), "image/png")

	require.NoError(t, store.Delete(ctx, ticket.ObjectID))

	url, err := store.Resolve(ctx, ticket.ObjectID)
	require.NoError(t, err)
	assert.Empty(t, url)

	// deleting twice is tolerated
	assert.NoError(t, store.Delete(ctx, ticket.ObjectID))
}
