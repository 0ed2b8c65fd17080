// types.go
package game

// Raw config loaded from YAML; one file per game profile.
type RawConfig struct {
	Version   string          `yaml:"version"`
	Game      GameConfig      `yaml:"game"`
	Files     Files           `yaml:"files"`
	Randomize RandomizeConfig `yaml:"randomize"`
	Notes     string          `yaml:"notes,omitempty"`
}

type GameConfig struct {
	ID          string `yaml:"id"`       // 6-byte disc id, e.g. "GRNE52"
	ISOSize     *int64 `yaml:"iso_size"` // expected image size in bytes
	CardGetByte *int   `yaml:"card_get_byte"`
}

// Files are data tables relative to the data directory.
type Files struct {
	Cards                  string           `yaml:"cards"`
	Items                  string           `yaml:"items"`
	StartingDeckFullRandom string           `yaml:"starting_deck_full_random"`
	StartingDeckBalanced   string           `yaml:"starting_deck_balanced"`
	StartingInventory      []InventoryBlock `yaml:"starting_inventory,omitempty"`
	Chests                 string           `yaml:"chests"`
	WarriorWyht            string           `yaml:"warrior_wyht"`
	LevelBonus             string           `yaml:"level_bonus"`
	Shop                   string           `yaml:"shop"`
	Fairy                  string           `yaml:"fairy"`
	LK2Card                string           `yaml:"lk2_card,omitempty"`  // decimal, 1-byte values
	LK2Enemy               string           `yaml:"lk2_enemy,omitempty"` // decimal, 2-byte values
}

// InventoryBlock is a file of 32-bit code words written from Address on.
type InventoryBlock struct {
	Path    string `yaml:"path"`
	Address int64  `yaml:"address"`
}

type RandomizeConfig struct {
	Style             string `yaml:"style"` // "balanced" | "chaos"
	StartingDeck      *bool  `yaml:"starting_deck,omitempty"`
	Locations         *bool  `yaml:"locations,omitempty"`
	WarriorWyht       *bool  `yaml:"warrior_wyht,omitempty"`
	LevelBonus        *bool  `yaml:"level_bonus,omitempty"`
	Shop              *bool  `yaml:"shop,omitempty"`
	Fairy             *bool  `yaml:"fairy,omitempty"`
	StartingInventory *bool  `yaml:"starting_inventory,omitempty"`
	LK2Changes        *bool  `yaml:"lk2_changes,omitempty"` // off unless set
	Strict            *bool  `yaml:"strict,omitempty"`
	LegacyLookup      *bool  `yaml:"legacy_lookup,omitempty"`
}

// Normalized run params used by internal/randomizer.
type RunParams struct {
	Profile     string
	GameID      string
	ISOSize     int64
	CardGetByte byte
	Files       Files

	Style             string
	Seed              uint64
	HasSeed           bool
	StartingDeck      bool
	Locations         bool
	WarriorWyht       bool
	LevelBonus        bool
	Shop              bool
	Fairy             bool
	StartingInventory bool
	LK2Changes        bool
	Strict            bool
	LegacyLookup      bool

	Version string // effective config version for tracing
}
