package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"marketdata-collector/internal/application"
	"marketdata-collector/internal/domain"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "commodities_indexes.json")
	w := NewFileWriter()
	recs := []domain.CanonicalRecord{{SymbolID: 11, Date: domain.NewDate(2024, 1, 1), Close: null.FloatFrom(81.23)}}

	require.NoError(t, w.Write(context.Background(), path, recs))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `[{"symbol_id": 11, "date": "2024-01-01", "open": null, "high": null, "low": null, "close": 81.23, "volume": null}]`, string(raw))
	require.Contains(t, string(raw), "\n        \"symbol_id\"")

	var back []domain.CanonicalRecord
	require.NoError(t, w.Read(context.Background(), path, &back))
	require.Equal(t, recs, back)
}

func TestFileWriter_EmptyBatchIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forex_indexes.json")
	require.NoError(t, NewFileWriter().Write(context.Background(), path, []domain.CanonicalRecord{}))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]", string(raw))
}

func TestFileWriter_FailedWriteKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crypto_indexes.json")
	w := NewFileWriter()
	require.NoError(t, w.Write(context.Background(), path, []int{1, 2}))

	err := w.Write(context.Background(), path, map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `[1, 2]`, string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileWriter_ReadMissing(t *testing.T) {
	var v []domain.CanonicalRecord
	err := NewFileWriter().Read(context.Background(), filepath.Join(t.TempDir(), "nope.json"), &v)
	require.True(t, errors.Is(err, application.ErrNotFound))
}
