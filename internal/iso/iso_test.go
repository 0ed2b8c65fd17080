package iso_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/card-randomizer/internal/iso"
	"github.com/xtding233/card-randomizer/internal/patch"
)

func image(t *testing.T, id string, size int) string {
	t.Helper()
	data := make([]byte, size)
	copy(data, id)
	path := filepath.Join(t.TempDir(), "game.iso")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCheck(t *testing.T) {
	path := image(t, "GRNE52", 64)

	assert.NoError(t, iso.Image{Size: 64, GameID: "GRNE52"}.Check(path))
	assert.NoError(t, iso.Image{}.Check(path))

	err := iso.Image{Size: 65, GameID: "GRNE52"}.Check(path)
	assert.True(t, errors.Is(err, iso.ErrBadISOSize), "got %v", err)

	err = iso.Image{Size: 64, GameID: "GRNP52"}.Check(path)
	assert.True(t, errors.Is(err, iso.ErrBadGameID), "got %v", err)

	err = iso.Image{}.Check(filepath.Join(t.TempDir(), "missing.iso"))
	assert.Error(t, err)
}

func TestCheckShortImage(t *testing.T) {
	path := image(t, "GRN", 3)
	err := iso.Image{GameID: "GRNE52"}.Check(path)
	assert.True(t, errors.Is(err, iso.ErrBadGameID), "got %v", err)
}

func TestApply(t *testing.T) {
	path := image(t, "GRNE52", 32)
	l := patch.NewLedger()
	l.Set(0x10, 0xAB, 0xCD)
	l.Set(0x1F, 0x01)

	require.NoError(t, iso.Image{Size: 32, GameID: "GRNE52"}.Apply(path, l))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("GRNE52"), got[:6])
	assert.Equal(t, []byte{0xAB, 0xCD}, got[0x10:0x12])
	assert.Equal(t, byte(0x01), got[0x1F])
}

func TestApplyRefusesWrongImage(t *testing.T) {
	path := image(t, "XXXX00", 32)
	l := patch.NewLedger()
	l.Set(0x10, 0xAB)

	err := iso.Image{GameID: "GRNE52"}.Apply(path, l)
	require.True(t, errors.Is(err, iso.ErrBadGameID))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(0), got[0x10], "image must be untouched")
}
