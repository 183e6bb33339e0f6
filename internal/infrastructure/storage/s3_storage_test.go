package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 records the requests an S3 client sends in path-style mode
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
	buckets  map[string]bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	bucket := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
	isBucket := !strings.Contains(strings.TrimPrefix(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodHead && isBucket:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case r.Method == http.MethodPut && isBucket:
		f.buckets[bucket] = true
	case r.Method == http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeS3) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newFakeS3Archive(t *testing.T, fake *fakeS3) *S3WebhookArchive {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	archive, err := NewS3WebhookArchive(&config.StorageConfig{
		Endpoint:     srv.URL,
		Bucket:       "webhooks",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Prefix:       "/raw/",
		UsePathStyle: true,
	}, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time {
		return time.Date(2026, 3, 9, 22, 15, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return archive
}

func TestNewS3WebhookArchive_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3WebhookArchive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		_, err := NewS3WebhookArchive(&config.StorageConfig{AccessKey: "k", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		_, err := NewS3WebhookArchive(&config.StorageConfig{Bucket: "b", SecretKey: "s"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		_, err := NewS3WebhookArchive(&config.StorageConfig{Bucket: "b", AccessKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config without endpoint uses AWS", func(t *testing.T) {
		archive, err := NewS3WebhookArchive(&config.StorageConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"})
		require.NoError(t, err)
		assert.Equal(t, "b", archive.GetBucket())
		assert.Empty(t, archive.prefix)
	})
}

func TestS3WebhookArchive_Archive(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{}}
	archive := newFakeS3Archive(t, fake)
	body := []byte(`{"event":"charge.success","data":{"reference":"CHK-1"}}`)

	key, err := archive.Archive(context.Background(), payment.ProviderPaystack, "CHK-1", body)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "raw/paystack/2026/03/09/CHK-1-"), key)
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Equal(t, []string{"PUT /webhooks/" + key}, fake.seen())
}

func TestS3WebhookArchive_EnsureBucket(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{}}
	archive := newFakeS3Archive(t, fake)

	require.NoError(t, archive.EnsureBucket(context.Background()))
	assert.Equal(t, []string{"HEAD /webhooks", "PUT /webhooks"}, fake.seen())

	require.NoError(t, archive.EnsureBucket(context.Background()))
	assert.Len(t, fake.seen(), 3, "an existing bucket is only checked")
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("WAT", 3600))
	body := []byte("{}")

	key, err := ObjectKey("", payment.ProviderOPay, "WAL-20260102-AB", body, at)
	require.NoError(t, err)
	assert.Equal(t, "opay/2026/01/02/WAL-20260102-AB-"+payment.HashBody(body)[:12]+".json", key)

	sameKey, err := ObjectKey("", payment.ProviderOPay, "WAL-20260102-AB", body, at)
	require.NoError(t, err)
	assert.Equal(t, key, sameKey, "redelivered bodies share a key")

	otherKey, err := ObjectKey("", payment.ProviderOPay, "WAL-20260102-AB", []byte(`{"x":1}`), at)
	require.NoError(t, err)
	assert.NotEqual(t, key, otherKey)

	escaped, err := ObjectKey("archive", payment.ProviderPaystack, "../etc/passwd", body, at)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(escaped, "archive/paystack/2026/01/02/"), escaped)
	assert.NotContains(t, escaped, "..")

	_, err = ObjectKey("", payment.ProviderPaystack, "  ", body, at)
	assert.Error(t, err)
}
