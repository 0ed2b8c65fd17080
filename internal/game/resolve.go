// resolve.go
package game

import (
	"fmt"
	"log"

	"github.com/xtding233/card-randomizer/internal/randomizer"
)

// Overrides carries per-run values from flags or query params; nil means
// keep the profile's value.
type Overrides struct {
	Style             *string
	Seed              *uint64
	StartingDeck      *bool
	Locations         *bool
	WarriorWyht       *bool
	LevelBonus        *bool
	Shop              *bool
	Fairy             *bool
	StartingInventory *bool
	LK2Changes        *bool
	Strict            *bool
}

// CategoryNames lists the randomize keys accepted by SetCategory, in run
// order.
var CategoryNames = []string{
	"starting_deck", "locations", "warrior_wyht", "level_bonus",
	"shop", "fairy", "starting_inventory", "lk2_changes",
}

// SetCategory turns one category on or off by its randomize key.
func (o *Overrides) SetCategory(name string, on bool) error {
	var dst **bool
	switch name {
	case "starting_deck":
		dst = &o.StartingDeck
	case "locations":
		dst = &o.Locations
	case "warrior_wyht":
		dst = &o.WarriorWyht
	case "level_bonus":
		dst = &o.LevelBonus
	case "shop":
		dst = &o.Shop
	case "fairy":
		dst = &o.Fairy
	case "starting_inventory":
		dst = &o.StartingInventory
	case "lk2_changes":
		dst = &o.LK2Changes
	default:
		return fmt.Errorf("unknown category %q", name)
	}
	*dst = &on
	return nil
}

type Resolver interface {
	// Returns merged RawConfig and normalized RunParams
	Resolve(profile string, o Overrides) (RawConfig, RunParams, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → profile → overrides, validates the result and
// normalizes it into RunParams.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, RunParams, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, RunParams{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return raw, RunParams{}, err
	}
	if profile == "" {
		profile = DefaultProfile
	}

	p := RunParams{
		Profile:           profile,
		GameID:            raw.Game.ID,
		CardGetByte:       byte(*raw.Game.CardGetByte),
		Files:             raw.Files,
		Style:             raw.Randomize.Style,
		StartingDeck:      enabled(raw.Randomize.StartingDeck),
		Locations:         enabled(raw.Randomize.Locations),
		WarriorWyht:       enabled(raw.Randomize.WarriorWyht),
		LevelBonus:        enabled(raw.Randomize.LevelBonus),
		Shop:              enabled(raw.Randomize.Shop),
		Fairy:             enabled(raw.Randomize.Fairy),
		StartingInventory: enabled(raw.Randomize.StartingInventory),
		LK2Changes:        raw.Randomize.LK2Changes != nil && *raw.Randomize.LK2Changes,
		Strict:            raw.Randomize.Strict != nil && *raw.Randomize.Strict,
		LegacyLookup:      raw.Randomize.LegacyLookup != nil && *raw.Randomize.LegacyLookup,
		Version:           raw.Version,
	}
	if p.Style == "" {
		p.Style = randomizer.StyleBalanced
	}
	if raw.Game.ISOSize != nil {
		p.ISOSize = *raw.Game.ISOSize
	}
	if o.Seed != nil {
		p.Seed, p.HasSeed = *o.Seed, true
	}
	return raw, p, nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	var style string
	if o.Style != nil {
		style = *o.Style
	}
	return mergeRaw(raw, RawConfig{Randomize: RandomizeConfig{
		Style:             style,
		StartingDeck:      o.StartingDeck,
		Locations:         o.Locations,
		WarriorWyht:       o.WarriorWyht,
		LevelBonus:        o.LevelBonus,
		Shop:              o.Shop,
		Fairy:             o.Fairy,
		StartingInventory: o.StartingInventory,
		LK2Changes:        o.LK2Changes,
		Strict:            o.Strict,
	}})
}

// PolicyOptions builds the policy settings for p.
func (p RunParams) PolicyOptions(logger *log.Logger) randomizer.PolicyOptions {
	return randomizer.PolicyOptions{
		CardGetByte:  p.CardGetByte,
		Strict:       p.Strict,
		LegacyLookup: p.LegacyLookup,
		Logger:       logger,
	}
}

// Options builds the run options for p with the given seed.
func (p RunParams) Options(seed uint64) randomizer.Options {
	return randomizer.Options{
		Seed: seed,
		Categories: randomizer.Categories{
			StartingDeck:      p.StartingDeck,
			Locations:         p.Locations,
			WarriorCards:      p.WarriorWyht,
			LevelBonus:        p.LevelBonus,
			ShopCards:         p.Shop,
			FairyCards:        p.Fairy,
			StartingInventory: p.StartingInventory,
			LK2Changes:        p.LK2Changes,
		},
	}
}
