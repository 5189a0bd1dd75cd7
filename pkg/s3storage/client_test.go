package s3storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-trends/pkg/config"
)

// fakeS3 принимает PUT объектов и отдаёт ListObjectsV2.
type fakeS3 struct {
	mu      sync.Mutex
	puts    map[string][]byte
	headers map[string]http.Header
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.puts[r.URL.Path] = body
		f.headers[r.URL.Path] = r.Header.Clone()
		f.mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>archive</Name>
  <Prefix>reports/</Prefix>
  <KeyCount>2</KeyCount>
  <MaxKeys>1000</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>reports/2026/01/01/100000-old.pdf</Key><Size>10</Size><LastModified>2026-01-01T10:00:00.000Z</LastModified></Contents>
  <Contents><Key>reports/2026/01/02/100000-new.pdf</Key><Size>20</Size><LastModified>2026-01-02T10:00:00.000Z</LastModified></Contents>
</ListBucketResult>`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeS3) {
	t.Helper()
	fake := &fakeS3{puts: map[string][]byte{}, headers: map[string]http.Header{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(config.S3Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		Region:    "us-east-1",
		Bucket:    "archive",
		Prefix:    "reports",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return c, fake
}

func TestArchive_UploadsFile(t *testing.T) {
	c, fake := newTestClient(t)

	local := filepath.Join(t.TempDir(), "market_trends_report.pdf")
	require.NoError(t, os.WriteFile(local, []byte("%PDF-1.3 test"), 0o644))

	key, err := c.Archive(context.Background(), local)
	require.NoError(t, err)
	assert.Equal(t, "reports/2026/03/04/050607-market_trends_report.pdf", key)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	objPath := "/archive/" + key
	require.Contains(t, fake.puts, objPath)
	assert.Equal(t, "application/pdf", fake.headers[objPath].Get("Content-Type"))
}

func TestListReports_NewestFirst(t *testing.T) {
	c, _ := newTestClient(t)

	objs, err := c.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "reports/2026/01/02/100000-new.pdf", objs[0].Key)
	assert.Equal(t, int64(20), objs[0].Size)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(config.S3Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", normalizePrefix(""))
	assert.Equal(t, "reports/", normalizePrefix("/reports"))
	assert.Equal(t, "a/b/", normalizePrefix("a/b/"))
}
