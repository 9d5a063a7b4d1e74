package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minionops/minionbase/internal/config"
)

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store, err := New(config.ArchiveConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	ctx := context.Background()
	doc := []byte(`[{"jid": "jid-1"}]`)
	require.NoError(t, store.Save(ctx, "job_returns-1.json", nopCloser{bytes.NewReader(doc)}, int64(len(doc))))

	rc, err := store.Open(ctx, "job_returns-1.json")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, doc, got)
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store, err := New(config.ArchiveConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": t.TempDir()},
	})
	require.NoError(t, err)

	ctx := context.Background()
	doc := []byte("x")
	require.Error(t, store.Save(ctx, "../escape.json", nopCloser{bytes.NewReader(doc)}, 1))
	_, err = store.Open(ctx, "sub/dir.json")
	require.Error(t, err)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.ArchiveConfig{Type: "ftp"})
	require.Error(t, err)
}

func TestNewLocalRequiresDir(t *testing.T) {
	_, err := New(config.ArchiveConfig{Type: "local", Data: map[string]interface{}{}})
	require.Error(t, err)
}
