package dataload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/game"
)

// table is one data file and the parser that fills its part of the
// dataset.
type table struct {
	name string
	read func(io.Reader) error
}

// Load reads every table named in files from dir. Tables with an empty
// name are skipped; the card table is required.
func Load(dir string, files game.Files) (*catalog.Dataset, error) {
	if files.Cards == "" {
		return nil, fmt.Errorf("card table is required")
	}
	var (
		ds    catalog.Dataset
		cards []catalog.Card
		items []catalog.Item
	)
	steps := []table{
		{files.Cards, func(r io.Reader) (err error) { cards, err = ReadCards(r); return }},
		{files.Items, func(r io.Reader) (err error) { items, err = ReadItems(r); return }},
		{files.StartingDeckFullRandom, func(r io.Reader) (err error) {
			ds.StartingDeck.FullRandom, err = ReadDeckPairs(r)
			return
		}},
		{files.StartingDeckBalanced, func(r io.Reader) (err error) {
			ds.StartingDeck.Balanced, err = ReadDeckSlots(r)
			return
		}},
		{files.Chests, func(r io.Reader) (err error) { ds.Locations, err = ReadLocations(r); return }},
		{files.WarriorWyht, func(r io.Reader) (err error) { ds.WarriorCards, err = ReadAddressValues(r); return }},
		{files.LevelBonus, func(r io.Reader) (err error) { ds.LevelBonus, err = ReadLevelBonus(r); return }},
		{files.Shop, func(r io.Reader) (err error) { ds.ShopCards, err = ReadAddressValues(r); return }},
		{files.Fairy, func(r io.Reader) (err error) { ds.FairyCards, err = ReadAddressValues(r); return }},
		{files.LK2Card, func(r io.Reader) error {
			v, err := ReadDecimalValues(r, 1)
			ds.LK2Changes = append(ds.LK2Changes, v...)
			return err
		}},
		{files.LK2Enemy, func(r io.Reader) error {
			v, err := ReadDecimalValues(r, 2)
			ds.LK2Changes = append(ds.LK2Changes, v...)
			return err
		}},
	}
	for _, b := range files.StartingInventory {
		base := b.Address
		steps = append(steps, table{b.Path, func(r io.Reader) error {
			words, err := ReadCodeWords(r, base)
			ds.StartingInventory = append(ds.StartingInventory, words...)
			return err
		}})
	}

	for _, s := range steps {
		if s.name == "" {
			continue
		}
		if err := readFile(filepath.Join(dir, s.name), s.read); err != nil {
			return nil, err
		}
	}
	ds.Catalog = catalog.New(cards, items)
	return &ds, nil
}

// Paths lists the files Load would read, for the hot-reload watcher.
func Paths(dir string, files game.Files) []string {
	names := []string{
		files.Cards, files.Items, files.StartingDeckFullRandom, files.StartingDeckBalanced,
		files.Chests, files.WarriorWyht, files.LevelBonus, files.Shop, files.Fairy,
		files.LK2Card, files.LK2Enemy,
	}
	for _, b := range files.StartingInventory {
		names = append(names, b.Path)
	}
	var out []string
	for _, n := range names {
		if n != "" {
			out = append(out, filepath.Join(dir, n))
		}
	}
	return out
}

func readFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
