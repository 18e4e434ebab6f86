package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"

	"practice-service/internal/clock"
	"practice-service/internal/storage"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	c := qt.New(t)
	root := t.TempDir()
	clk := clock.NewFake(time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC))
	store := storage.NewLocalStore(root, "http://files.local/media/", clk, zap.NewNop())
	ctx := context.Background()

	key, size, err := store.Save(ctx, "Report.PDF", strings.NewReader("hello"))
	c.Assert(err, qt.IsNil)
	c.Assert(size, qt.Equals, int64(5))
	c.Assert(strings.HasPrefix(key, "attachments/2025/03/"), qt.IsTrue)
	c.Assert(strings.HasSuffix(key, ".pdf"), qt.IsTrue)
	c.Assert(store.URL(key), qt.Equals, "http://files.local/media/"+key)

	rc, err := store.Open(ctx, key)
	c.Assert(err, qt.IsNil)
	body, err := io.ReadAll(rc)
	c.Assert(rc.Close(), qt.IsNil)
	c.Assert(err, qt.IsNil)
	c.Assert(string(body), qt.Equals, "hello")

	c.Assert(store.Delete(ctx, key), qt.IsNil)
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	c.Assert(os.IsNotExist(err), qt.IsTrue)

	// Deleting twice is fine.
	c.Assert(store.Delete(ctx, key), qt.IsNil)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	c := qt.New(t)
	store := storage.NewLocalStore(t.TempDir(), "", clock.Real(), zap.NewNop())

	for _, key := range []string{"", "../etc/passwd", "/abs/path", "attachments/../../x"} {
		_, err := store.Open(context.Background(), key)
		c.Assert(err, qt.Equals, storage.ErrInvalidKey, qt.Commentf("key %q", key))
	}
}
