package game

import (
	"fmt"
	"strings"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// game
	if len(cfg.Game.ID) != 6 {
		errs = append(errs, "game.id must be 6 characters")
	}
	if cfg.Game.ISOSize != nil && *cfg.Game.ISOSize <= 0 {
		errs = append(errs, "game.iso_size must be > 0")
	}
	if cfg.Game.CardGetByte == nil {
		errs = append(errs, "game.card_get_byte is required")
	} else if *cfg.Game.CardGetByte < 0 || *cfg.Game.CardGetByte > 0xFF {
		errs = append(errs, "game.card_get_byte must be in [0,255]")
	}

	// files: the card table is always needed; the rest only when the
	// category that reads them is enabled
	if cfg.Files.Cards == "" {
		errs = append(errs, "files.cards is required")
	}
	r := cfg.Randomize
	need := func(on *bool, file, fileKey, key string) {
		if enabled(on) && file == "" {
			errs = append(errs, fmt.Sprintf("files.%s is required when randomize.%s is on", fileKey, key))
		}
	}
	switch r.Style {
	case "", "balanced":
		need(r.StartingDeck, cfg.Files.StartingDeckBalanced, "starting_deck_balanced", "starting_deck")
	case "chaos":
		need(r.StartingDeck, cfg.Files.StartingDeckFullRandom, "starting_deck_full_random", "starting_deck")
	default:
		errs = append(errs, "randomize.style must be one of: balanced, chaos")
	}
	need(r.Locations, cfg.Files.Chests, "chests", "locations")
	need(r.WarriorWyht, cfg.Files.WarriorWyht, "warrior_wyht", "warrior_wyht")
	need(r.LevelBonus, cfg.Files.LevelBonus, "level_bonus", "level_bonus")
	need(r.Shop, cfg.Files.Shop, "shop", "shop")
	need(r.Fairy, cfg.Files.Fairy, "fairy", "fairy")

	if r.LK2Changes != nil && *r.LK2Changes && cfg.Files.LK2Card == "" && cfg.Files.LK2Enemy == "" {
		errs = append(errs, "files.lk2_card or files.lk2_enemy is required when randomize.lk2_changes is on")
	}

	for i, b := range cfg.Files.StartingInventory {
		if b.Path == "" {
			errs = append(errs, fmt.Sprintf("files.starting_inventory[%d].path is required", i))
		}
		if b.Address < 0 {
			errs = append(errs, fmt.Sprintf("files.starting_inventory[%d].address must be >= 0", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// enabled treats an unset toggle as on.
func enabled(b *bool) bool { return b == nil || *b }
