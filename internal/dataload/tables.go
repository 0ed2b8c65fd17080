// Package dataload parses the game's data tables into a catalog.Dataset.
//
// Tables are comma separated with no header. Numbers are hex unless noted;
// multi-address columns separate addresses with '.'.
package dataload

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xtding233/card-randomizer/internal/catalog"
)

// readRows returns the non-blank rows of r. Every row must have at least
// minFields columns.
func readRows(r io.Reader, minFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < minFields {
			return nil, fmt.Errorf("line %d: want %d fields, got %d", line, minFields, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimRight(rec[i], "\r")
		}
		rows = append(rows, rec)
	}
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func parseAddr(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 16, 64)
}

func parseAddrList(s string) ([]int64, error) {
	parts := strings.Split(s, ".")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		a, err := parseAddr(p)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func parseByteList(s string) ([]byte, error) {
	parts := strings.Split(s, ".")
	out := make([]byte, 0, len(parts))
	for _, p := range parts {
		b, err := parseByte(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// ReadCards parses `id,interact,name,rarity`; rarity is decimal 1..4.
func ReadCards(r io.Reader) ([]catalog.Card, error) {
	rows, err := readRows(r, 4)
	if err != nil {
		return nil, err
	}
	cards := make([]catalog.Card, 0, len(rows))
	for i, row := range rows {
		id, err := parseByte(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: card id: %w", i+1, err)
		}
		interact, err := parseByte(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: interact id: %w", i+1, err)
		}
		rarity, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: rarity: %w", i+1, err)
		}
		if !catalog.Rarity(rarity).Valid() {
			return nil, fmt.Errorf("row %d: rarity %d out of range 1..4", i+1, rarity)
		}
		cards = append(cards, catalog.Card{ID: id, InteractID: interact, Name: row[2], Rarity: catalog.Rarity(rarity)})
	}
	return cards, nil
}

// ReadItems parses `id,name`.
func ReadItems(r io.Reader) ([]catalog.Item, error) {
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	items := make([]catalog.Item, 0, len(rows))
	for i, row := range rows {
		id, err := parseByte(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: item id: %w", i+1, err)
		}
		items = append(items, catalog.Item{ID: id, Name: row[1]})
	}
	return items, nil
}

// ReadDeckPairs parses `addr,addr` full-random deck rows.
func ReadDeckPairs(r io.Reader) ([]catalog.DeckPair, error) {
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.DeckPair, 0, len(rows))
	for i, row := range rows {
		first, err := parseAddr(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: first address: %w", i+1, err)
		}
		second, err := parseAddr(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: second address: %w", i+1, err)
		}
		out = append(out, catalog.DeckPair{First: first, Second: second})
	}
	return out, nil
}

// ReadDeckSlots parses `addr.addr...,card.card...` balanced deck rows.
func ReadDeckSlots(r io.Reader) ([]catalog.StartingDeckSlot, error) {
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.StartingDeckSlot, 0, len(rows))
	for i, row := range rows {
		addrs, err := parseAddrList(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: addresses: %w", i+1, err)
		}
		cands, err := parseByteList(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: candidates: %w", i+1, err)
		}
		out = append(out, catalog.StartingDeckSlot{Addresses: addrs, Candidates: cands})
	}
	return out, nil
}

// ReadLocations parses
// `addr,type,area,level,description,interact,typeAddr`; type and area are
// decimal and typeAddr may be empty.
func ReadLocations(r io.Reader) ([]catalog.Location, error) {
	rows, err := readRows(r, 6)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Location, 0, len(rows))
	for i, row := range rows {
		var loc catalog.Location
		if loc.Address, err = parseAddr(row[0]); err != nil {
			return nil, fmt.Errorf("row %d: address: %w", i+1, err)
		}
		typ, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("row %d: type: %w", i+1, err)
		}
		loc.Type = catalog.LocationType(typ)
		if loc.Area, err = strconv.Atoi(strings.TrimSpace(row[2])); err != nil {
			return nil, fmt.Errorf("row %d: area: %w", i+1, err)
		}
		loc.LevelName, loc.Description = row[3], row[4]
		if loc.OriginalInteractID, err = parseByte(row[5]); err != nil {
			return nil, fmt.Errorf("row %d: interact id: %w", i+1, err)
		}
		if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
			if loc.TypeAddress, err = parseAddr(row[6]); err != nil {
				return nil, fmt.Errorf("row %d: type address: %w", i+1, err)
			}
			loc.HasTypeAddress = true
		}
		if loc.Type == catalog.TypeKeyItem && !loc.HasTypeAddress {
			return nil, fmt.Errorf("row %d: key item %s %s needs a type address", i+1, loc.LevelName, loc.Description)
		}
		out = append(out, loc)
	}
	return out, nil
}

// ReadLevelBonus parses `addr.addr...,cardID` rows.
func ReadLevelBonus(r io.Reader) ([]catalog.LevelBonusSlot, error) {
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.LevelBonusSlot, 0, len(rows))
	for i, row := range rows {
		addrs, err := parseAddrList(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: addresses: %w", i+1, err)
		}
		id, err := parseByte(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: card id: %w", i+1, err)
		}
		out = append(out, catalog.LevelBonusSlot{Addresses: addrs, OriginalCardID: id})
	}
	return out, nil
}

// ReadAddressValues parses `addr,value` rows where value is one hex byte.
func ReadAddressValues(r io.Reader) ([]catalog.AddressValue, error) {
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.AddressValue, 0, len(rows))
	for i, row := range rows {
		addr, err := parseAddr(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: address: %w", i+1, err)
		}
		v, err := parseByte(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: value: %w", i+1, err)
		}
		out = append(out, catalog.AddressValue{Address: addr, Value: []byte{v}})
	}
	return out, nil
}

// ReadDecimalValues parses `addr,value` rows where value is decimal and
// is written big-endian in width bytes.
func ReadDecimalValues(r io.Reader, width int) ([]catalog.AddressValue, error) {
	if width < 1 || width > 8 {
		return nil, fmt.Errorf("value width %d out of range", width)
	}
	rows, err := readRows(r, 2)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.AddressValue, 0, len(rows))
	for i, row := range rows {
		addr, err := parseAddr(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: address: %w", i+1, err)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 8*width)
		if err != nil {
			return nil, fmt.Errorf("row %d: value: %w", i+1, err)
		}
		value := make([]byte, width)
		for j := width - 1; j >= 0; j-- {
			value[j] = byte(v)
			v >>= 8
		}
		out = append(out, catalog.AddressValue{Address: addr, Value: value})
	}
	return out, nil
}

// ReadCodeWords parses one 32-bit hex word per line and lays them out
// big-endian at 4-byte steps from base.
func ReadCodeWords(r io.Reader, base int64) ([]catalog.AddressValue, error) {
	var out []catalog.AddressValue
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		w, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, catalog.AddressValue{
			Address: base,
			Value:   []byte{byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w)},
		})
		base += 4
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
