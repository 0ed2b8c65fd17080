package archive_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/card-randomizer/internal/archive"
	"github.com/xtding233/card-randomizer/internal/patch"
)

func openStore(t *testing.T) *archive.Store {
	t.Helper()
	s, err := archive.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := s.Record(ctx, archive.Run{
		Seed:       ^uint64(0),
		Style:      "balanced",
		Profile:    "default",
		OptionLog:  "Seed: 1\n",
		SpoilerLog: "Shop cards:\nA. \n",
		Patches:    []patch.HexEntry{{Address: "500", Value: "01"}},
		CreatedAt:  created,
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ^uint64(0), got.Seed, "full uint64 range survives")
	assert.Equal(t, "balanced", got.Style)
	assert.Equal(t, "Shop cards:\nA. \n", got.SpoilerLog)
	assert.Equal(t, []patch.HexEntry{{Address: "500", Value: "01"}}, got.Patches)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = s.Get(ctx, id+100)
	assert.True(t, errors.Is(err, archive.ErrRunNotFound))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Record(ctx, archive.Run{
			Seed:      uint64(i),
			Style:     "balanced",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, uint64(2), runs[0].Seed)
	assert.Equal(t, uint64(1), runs[1].Seed)
	assert.Nil(t, runs[0].Patches)

	_, err = s.List(ctx, 0)
	assert.Error(t, err)
}

func TestRecordValidation(t *testing.T) {
	s := openStore(t)
	_, err := s.Record(context.Background(), archive.Run{Seed: 1})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Record(ctx, archive.Run{Style: "balanced"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := archive.Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), archive.Run{Style: "chaos"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = archive.Open(path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = archive.Open("  ")
	assert.Error(t, err)

	var nilStore *archive.Store
	assert.NoError(t, nilStore.Close())
}
