package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/njchilds90/dimplot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "functions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("functions: []\n"), 0o644))

	changed := make(chan struct{}, 4)
	w, err := Watch(context.Background(), path, testutil.NewTestLogger(t), func() { changed <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("functions:\n  - F(a) = a\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "functions.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	changed := make(chan struct{}, 1)
	w, err := Watch(context.Background(), path, nil, func() { changed <- struct{}{} })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))

	select {
	case <-changed:
		t.Fatal("change reported for another file")
	case <-time.After(3 * Debounce):
	}
	assert.Equal(t, path, w.Path())
}

func TestWatch_StopsWithContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "functions.yaml")
	ctx, cancel := context.WithCancel(context.Background())
	w, err := Watch(ctx, path, nil, func() {})
	require.NoError(t, err)
	cancel()

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not exit")
	}
	_ = w.fw.Close()
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "f.yaml"), nil, func() {})
	assert.Error(t, err)
}
