// Package iso checks a disc image before patching and writes a patch
// ledger into it.
package iso

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xtding233/card-randomizer/internal/patch"
)

var (
	ErrBadISOSize = errors.New("unexpected image size")
	ErrBadGameID  = errors.New("unexpected game id")
)

// Image describes the image a profile expects. A zero Size skips the
// size check.
type Image struct {
	Size   int64
	GameID string
}

// Check opens path and verifies its size and game-id prefix.
func (im Image) Check(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return im.check(f)
}

func (im Image) check(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	if im.Size > 0 && fi.Size() != im.Size {
		return fmt.Errorf("%w: %d bytes, want %d", ErrBadISOSize, fi.Size(), im.Size)
	}
	return CheckGameID(f, im.GameID)
}

// CheckGameID compares the first len(id) bytes of r with id.
func CheckGameID(r io.ReaderAt, id string) error {
	if id == "" {
		return nil
	}
	buf := make([]byte, len(id))
	if _, err := r.ReadAt(buf, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: image shorter than id", ErrBadGameID)
		}
		return fmt.Errorf("read game id: %w", err)
	}
	if !bytes.Equal(buf, []byte(id)) {
		return fmt.Errorf("%w: %q, want %q", ErrBadGameID, buf, id)
	}
	return nil
}

// Apply checks the image at path and then writes every ledger entry into
// it in place.
func (im Image) Apply(path string, l *patch.Ledger) (err error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close image: %w", cerr)
		}
	}()
	if err := im.check(f); err != nil {
		return err
	}
	if err := l.Apply(f); err != nil {
		return fmt.Errorf("patch image: %w", err)
	}
	return nil
}
