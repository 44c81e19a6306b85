package blob

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{URL: srv.URL, APIKey: "test-key", Bucket: "miniatures"})
	require.NoError(t, err)
	return c, srv
}

func TestNewRequiresURLAndBucket(t *testing.T) {
	_, err := New(Config{Bucket: "b"})
	require.Error(t, err)
	_, err = New(Config{URL: "http://x"})
	require.Error(t, err)
}

func TestUpload(t *testing.T) {
	var gotPath, gotUpsert, gotAuth, gotCT string
	var gotBody []byte
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	err := c.Upload(context.Background(), "f40.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/miniatures/f40.png", gotPath)
	assert.Equal(t, "false", gotUpsert, "uploads never overwrite")
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "image/png", gotCT)
	assert.Equal(t, []byte("png-bytes"), gotBody)
}

func TestUploadGatewayError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"The resource already exists"}`))
	})

	err := c.Upload(context.Background(), "dup.png", []byte("x"), "image/png")
	require.ErrorIs(t, err, ErrUpload)
	assert.Contains(t, err.Error(), "The resource already exists")
}

func TestPublicURL(t *testing.T) {
	c, err := New(Config{URL: "https://gw.example/", APIKey: "k", Bucket: "miniatures"})
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/storage/v1/object/public/miniatures/a.png", c.PublicURL("a.png"))
}

func TestIngestPassthrough(t *testing.T) {
	c, err := New(Config{URL: "https://gw.example", APIKey: "k", Bucket: "b"})
	require.NoError(t, err)

	got, err := c.Ingest(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)

	hosted := "https://images.example/photo.jpg"
	got, err = c.Ingest(context.Background(), hosted)
	require.NoError(t, err)
	assert.Equal(t, hosted, got, "hosted URLs pass through unchanged")
}

func TestIngestDataURI(t *testing.T) {
	raw := []byte("fake-image")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	var uploadedPath string
	var uploadedBody []byte
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		uploadedPath = r.URL.Path
		uploadedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	url, err := c.Ingest(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, raw, uploadedBody, "decoded payload uploaded as-is")
	assert.True(t, strings.HasSuffix(uploadedPath, ".png"), "extension derived from content type: %s", uploadedPath)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/storage/v1/object/public/miniatures/"), url)
}

func TestIngestUniqueNames(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
	var paths []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.Ingest(context.Background(), uri)
	require.NoError(t, err)
	_, err = c.Ingest(context.Background(), uri)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.NotEqual(t, paths[0], paths[1], "generated object names must not collide")
}

func TestIngestRejectsGarbage(t *testing.T) {
	c, err := New(Config{URL: "https://gw.example", APIKey: "k", Bucket: "b"})
	require.NoError(t, err)

	_, err = c.Ingest(context.Background(), "definitely not an image reference")
	require.ErrorIs(t, err, ErrUpload)
}
