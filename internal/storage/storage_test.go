package storage

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
)

func TestFileStoreSaveReturnsPublicURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root, "http://localhost:5000/static/")
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "http://localhost:5000/static/mockups/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"))

	key := strings.TrimPrefix(ref, "http://localhost:5000/static/")
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestFileStoreSaveReturnsLocalPathWithoutBaseURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root, "")
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, root))
	assert.Equal(t, ".jpg", filepath.Ext(ref))
	_, err = os.Stat(ref)
	assert.NoError(t, err)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "..", "../escape.png", "a/../../escape.png"} {
		_, err := store.Write(context.Background(), key, []byte("x"))
		assert.Error(t, err, "key %q", key)
	}
	got, err := store.Write(context.Background(), "/nested//dir/file.png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "nested/dir/file.png", got)
}

func TestFileStoreHonorsCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, []byte("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("  ", "")
	assert.Error(t, err)
}

func TestNewObjectKey(t *testing.T) {
	now := time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)
	a := NewObjectKey(now, "image/webp")
	b := NewObjectKey(now, "image/webp")
	assert.True(t, strings.HasPrefix(a, "mockups/2026/03/04/"), a)
	assert.Equal(t, ".webp", filepath.Ext(a))
	assert.NotEqual(t, a, b)
}

func TestTempScopeLifecycle(t *testing.T) {
	root := t.TempDir()
	scope, err := NewTempScope(root)
	require.NoError(t, err)

	p1, err := scope.WriteFile([]byte("one"), ".png")
	require.NoError(t, err)
	p2, err := scope.WriteFile([]byte("two"), "jpg")
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, scope.Dir(), filepath.Dir(p1))
	assert.Equal(t, ".jpg", filepath.Ext(p2))

	require.NoError(t, scope.Release())
	require.NoError(t, scope.Release())
	_, err = os.Stat(scope.Dir())
	assert.True(t, os.IsNotExist(err))

	_, err = scope.WriteFile([]byte("late"), ".png")
	assert.Error(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTempScopesDoNotCollide(t *testing.T) {
	root := t.TempDir()
	const n = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		dirs  = map[string]struct{}{}
		paths = map[string]struct{}{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scope, err := NewTempScope(root)
			if err != nil {
				t.Errorf("NewTempScope: %v", err)
				return
			}
			defer scope.Release()
			p, err := scope.WriteFile([]byte("x"), ".png")
			if err != nil {
				t.Errorf("WriteFile: %v", err)
				return
			}
			mu.Lock()
			dirs[scope.Dir()] = struct{}{}
			paths[p] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, dirs, n)
	assert.Len(t, paths, n)
}

const devAccountKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

func TestAzureBlobStoreSave(t *testing.T) {
	var (
		mu          sync.Mutex
		gotMethod   string
		gotPath     string
		gotType     string
		gotBody     []byte
		requestSeen bool
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath, gotType, gotBody, requestSeen = r.Method, r.URL.Path, r.Header.Get("x-ms-blob-content-type"), body, true
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	conn := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=" + devAccountKey +
		";BlobEndpoint=" + ts.URL + "/devstoreaccount1;"
	store, err := NewAzureBlobStore(conn, "mockups-out")
	require.NoError(t, err)

	ref, err := store.Save(context.Background(), []byte("blob-bytes"), "image/png")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.True(t, requestSeen)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/devstoreaccount1/mockups-out/mockups/"), gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "blob-bytes", string(gotBody))
	assert.True(t, strings.HasPrefix(ref, ts.URL+"/devstoreaccount1/mockups-out/mockups/"), ref)
}

func TestNewAzureBlobStoreValidation(t *testing.T) {
	_, err := NewAzureBlobStore("", "c")
	assert.Error(t, err)
	_, err = NewAzureBlobStore("UseDevelopmentStorage=true", "")
	assert.Error(t, err)
}
