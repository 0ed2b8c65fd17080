package randomizer

import (
	"errors"
	"fmt"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/draw"
)

// Categories selects which slot groups a run randomizes.
type Categories struct {
	StartingDeck      bool
	Locations         bool
	WarriorCards      bool
	LevelBonus        bool
	ShopCards         bool
	FairyCards        bool
	StartingInventory bool // copy the starting inventory code into the patch
	LK2Changes        bool // copy the fixed card and enemy table edits
}

// AllCategories enables everything.
func AllCategories() Categories {
	return Categories{
		StartingDeck:      true,
		Locations:         true,
		WarriorCards:      true,
		LevelBonus:        true,
		ShopCards:         true,
		FairyCards:        true,
		StartingInventory: true,
		LK2Changes:        true,
	}
}

// Options for one run.
type Options struct {
	Seed       uint64
	Categories Categories
}

// Run randomizes ds with p. The random source is seeded once from
// opts.Seed, so equal inputs give byte-identical ledgers and logs.
func Run(p Policy, ds *catalog.Dataset, opts Options) (*Output, error) {
	if p == nil {
		return nil, errors.New("policy is required")
	}
	if ds == nil || ds.Catalog == nil {
		return nil, errors.New("dataset with a card catalog is required")
	}
	rng := draw.NewSeededRNG(opts.Seed)
	out := NewOutput()
	out.Log.Optionf("Seed: %d\n", opts.Seed)
	switch p.Style() {
	case StyleChaos:
		out.Log.Option("Full random randomization style\n")
	default:
		out.Log.Option("Balanced randomization style\n")
	}

	c := opts.Categories
	steps := []struct {
		on  bool
		run func() error
	}{
		{c.StartingDeck, func() error { return p.StartingDeck(rng, out, ds.StartingDeck) }},
		{c.Locations, func() error { return p.Locations(rng, out, ds.Locations) }},
		{c.WarriorCards, func() error { return p.WarriorCards(rng, out, ds.WarriorCards) }},
		{c.LevelBonus, func() error { return p.LevelBonus(rng, out, ds.LevelBonus) }},
		{c.ShopCards, func() error { return p.ShopCards(rng, out, ds.ShopCards) }},
		{c.FairyCards, func() error { return p.FairyCards(rng, out, ds.FairyCards) }},
		{c.StartingInventory, func() error { return writeFixed(out, ds.StartingInventory, "Patched starting inventory\n") }},
		{c.LK2Changes, func() error { return writeFixed(out, ds.LK2Changes, "Applied lk2 card and enemy changes\n") }},
	}
	for _, s := range steps {
		if !s.on {
			continue
		}
		if err := s.run(); err != nil {
			return nil, fmt.Errorf("%s run: %w", p.Style(), err)
		}
	}
	return out, nil
}

// writeFixed copies pre-built patches as is and notes them in the option
// log.
func writeFixed(out *Output, words []catalog.AddressValue, line string) error {
	if len(words) == 0 {
		return nil
	}
	for _, w := range words {
		out.Ledger.Set(w.Address, w.Value...)
	}
	out.Log.Option(line)
	return nil
}
