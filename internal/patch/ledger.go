// Package patch accumulates the address → bytes edits of one randomizer run.
package patch

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
)

// Entry is one patch: write Value at byte offset Address.
type Entry struct {
	Address int64
	Value   []byte
}

// Ledger maps image offsets to replacement bytes. A second write to the
// same address replaces the first.
type Ledger struct {
	m map[int64][]byte
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{m: make(map[int64][]byte)}
}

// Set records value at addr. value is copied.
func (l *Ledger) Set(addr int64, value ...byte) {
	l.m[addr] = append([]byte(nil), value...)
}

// Get returns the bytes recorded at addr.
func (l *Ledger) Get(addr int64) ([]byte, bool) {
	v, ok := l.m[addr]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Len is the number of patched addresses.
func (l *Ledger) Len() int { return len(l.m) }

// Addresses returns every patched address in ascending order.
func (l *Ledger) Addresses() []int64 {
	out := make([]int64, 0, len(l.m))
	for a := range l.m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Entries returns the patches sorted by address.
func (l *Ledger) Entries() []Entry {
	addrs := l.Addresses()
	out := make([]Entry, len(addrs))
	for i, a := range addrs {
		out[i] = Entry{Address: a, Value: append([]byte(nil), l.m[a]...)}
	}
	return out
}

// Apply writes every entry into w in address order.
func (l *Ledger) Apply(w io.WriterAt) error {
	for _, e := range l.Entries() {
		if _, err := w.WriteAt(e.Value, e.Address); err != nil {
			return fmt.Errorf("write %d bytes at %#x: %w", len(e.Value), e.Address, err)
		}
	}
	return nil
}

// HexEntry is the text form of an Entry used by the archive and the HTTP API.
type HexEntry struct {
	Address string `json:"address"`
	Value   string `json:"value"`
}

// Hex renders the entries as hex strings, sorted by address.
func (l *Ledger) Hex() []HexEntry {
	entries := l.Entries()
	out := make([]HexEntry, len(entries))
	for i, e := range entries {
		out[i] = HexEntry{
			Address: fmt.Sprintf("%x", e.Address),
			Value:   hex.EncodeToString(e.Value),
		}
	}
	return out
}

// FromHex rebuilds a ledger from its hex form.
func FromHex(entries []HexEntry) (*Ledger, error) {
	l := NewLedger()
	for i, e := range entries {
		var addr int64
		if _, err := fmt.Sscanf(e.Address, "%x", &addr); err != nil {
			return nil, fmt.Errorf("entry %d: address %q: %w", i, e.Address, err)
		}
		v, err := hex.DecodeString(e.Value)
		if err != nil {
			return nil, fmt.Errorf("entry %d: value %q: %w", i, e.Value, err)
		}
		l.Set(addr, v...)
	}
	return l, nil
}
