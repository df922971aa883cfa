package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadnorm/internal/watch"
)

func TestBackfill(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"b.csv", "a.json", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o700))

	var seen []string

	w := watch.New(dir, func(_ context.Context, path string) error {
		seen = append(seen, filepath.Base(path))
		return errors.New("ignored")
	})

	require.NoError(t, w.Backfill(context.Background()))
	assert.Equal(t, []string{"a.json", "b.csv"}, seen)
}

func TestRun_HandlesNewFiles(t *testing.T) {
	dir := t.TempDir()
	got := make(chan string, 4)

	w := watch.New(dir, func(_ context.Context, path string) error {
		got <- filepath.Base(path)
		return nil
	}, watch.WithSettle(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt.bak"), []byte("x"), 0o600))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("1,2\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case name := <-got:
		assert.Equal(t, "export.csv", name)
	case <-time.After(5 * time.Second):
		t.Fatal("file was not handled")
	}

	select {
	case name := <-got:
		t.Fatalf("unexpected second call for %s", name)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRun_MissingDir(t *testing.T) {
	w := watch.New(filepath.Join(t.TempDir(), "nope"), func(context.Context, string) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}
