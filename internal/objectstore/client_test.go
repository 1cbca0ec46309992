package objectstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the handful of path-style S3 calls the client makes and
// records them as "METHOD /path".
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string][]string
	calls   []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := strings.Trim(r.URL.Path, "/")
	call := r.Method + " /" + bucket
	if _, ok := r.URL.Query()["delete"]; ok {
		call += "?delete"
	}
	f.calls = append(f.calls, call)

	objects, exists := f.buckets[bucket]
	switch {
	case r.Method == http.MethodHead:
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		if exists {
			writeS3Error(w, http.StatusConflict, "BucketAlreadyOwnedByYou")
			return
		}
		f.buckets[bucket] = nil
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet:
		if !exists {
			writeS3Error(w, http.StatusNotFound, "NoSuchBucket")
			return
		}
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
		b.WriteString("<Name>" + bucket + "</Name><IsTruncated>false</IsTruncated>")
		for _, key := range objects {
			b.WriteString("<Contents><Key>" + key + "</Key></Contents>")
		}
		b.WriteString("</ListBucketResult>")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(b.String()))
	case r.Method == http.MethodPost:
		f.buckets[bucket] = nil
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></DeleteResult>`))
	case r.Method == http.MethodDelete:
		if !exists {
			writeS3Error(w, http.StatusNotFound, "NoSuchBucket")
			return
		}
		if len(objects) > 0 {
			writeS3Error(w, http.StatusConflict, "BucketNotEmpty")
			return
		}
		delete(f.buckets, bucket)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>` + code + `</Code><Message>` + code + `</Message></Error>`))
}

func newTestClient(t *testing.T, fake *fakeS3) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "admin",
		SecretKey: "admin-secret",
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{}, zerolog.Nop())
	assert.EqualError(t, err, "object storage endpoint is required")
}

func TestClient_BucketExists(t *testing.T) {
	fake := &fakeS3{buckets: map[string][]string{"acme": nil}}
	c := newTestClient(t, fake)

	ok, err := c.BucketExists(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.BucketExists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_MakeBucketTwiceIsIdempotent(t *testing.T) {
	fake := &fakeS3{buckets: map[string][]string{}}
	c := newTestClient(t, fake)

	require.NoError(t, c.MakeBucket(context.Background(), "acme"))
	require.NoError(t, c.MakeBucket(context.Background(), "acme"))
	assert.Len(t, fake.buckets, 1)
}

func TestClient_RemoveBucketEmptiesFirst(t *testing.T) {
	fake := &fakeS3{buckets: map[string][]string{"acme": {"a.csv", "b.csv"}}}
	c := newTestClient(t, fake)

	require.NoError(t, c.RemoveBucket(context.Background(), "acme"))
	assert.NotContains(t, fake.buckets, "acme")
	assert.Equal(t, []string{"GET /acme", "POST /acme?delete", "DELETE /acme"}, fake.calls)
}

func TestClient_RemoveMissingBucket(t *testing.T) {
	fake := &fakeS3{buckets: map[string][]string{}}
	c := newTestClient(t, fake)

	assert.NoError(t, c.RemoveBucket(context.Background(), "gone"))
}
