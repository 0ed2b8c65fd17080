package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultProfile names the base config every profile is merged over.
const DefaultProfile = "default"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBadProfileName  = errors.New("invalid profile name")
)

var profileName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CheckProfileName rejects names that could leave the games directory.
func CheckProfileName(name string) error {
	if !profileName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadProfileName, name)
	}
	return nil
}

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/randomizer/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "games", DefaultProfile+".yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "games", profile+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files the loader reads for profile, default first.
func (l *Loader) Paths(profile string) []string {
	out := []string{l.paths.DefaultPath()}
	if profile != "" && profile != DefaultProfile {
		out = append(out, l.paths.ProfilePath(profile))
	}
	return out
}

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig (without validation). A missing default
// file yields an empty base; a missing profile file is ErrProfileNotFound.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	if err := CheckProfileName(profile); err != nil {
		return RawConfig{}, err
	}
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != DefaultProfile {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, fmt.Errorf("%w: %s: %w", ErrProfileNotFound, profile, err)
		}
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(defCfg, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: every non-zero/non-nil field of b wins.
// starting_inventory is replaced as a whole when b provides it.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// game
	if b.Game.ID != "" {
		out.Game.ID = b.Game.ID
	}
	if b.Game.ISOSize != nil {
		out.Game.ISOSize = b.Game.ISOSize
	}
	if b.Game.CardGetByte != nil {
		out.Game.CardGetByte = b.Game.CardGetByte
	}

	// files
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&out.Files.Cards, b.Files.Cards)
	overlay(&out.Files.Items, b.Files.Items)
	overlay(&out.Files.StartingDeckFullRandom, b.Files.StartingDeckFullRandom)
	overlay(&out.Files.StartingDeckBalanced, b.Files.StartingDeckBalanced)
	overlay(&out.Files.Chests, b.Files.Chests)
	overlay(&out.Files.WarriorWyht, b.Files.WarriorWyht)
	overlay(&out.Files.LevelBonus, b.Files.LevelBonus)
	overlay(&out.Files.Shop, b.Files.Shop)
	overlay(&out.Files.Fairy, b.Files.Fairy)
	overlay(&out.Files.LK2Card, b.Files.LK2Card)
	overlay(&out.Files.LK2Enemy, b.Files.LK2Enemy)
	if len(b.Files.StartingInventory) > 0 {
		out.Files.StartingInventory = append([]InventoryBlock(nil), b.Files.StartingInventory...)
	}

	// randomize
	overlay(&out.Randomize.Style, b.Randomize.Style)
	flag := func(dst **bool, src *bool) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	flag(&out.Randomize.StartingDeck, b.Randomize.StartingDeck)
	flag(&out.Randomize.Locations, b.Randomize.Locations)
	flag(&out.Randomize.WarriorWyht, b.Randomize.WarriorWyht)
	flag(&out.Randomize.LevelBonus, b.Randomize.LevelBonus)
	flag(&out.Randomize.Shop, b.Randomize.Shop)
	flag(&out.Randomize.Fairy, b.Randomize.Fairy)
	flag(&out.Randomize.StartingInventory, b.Randomize.StartingInventory)
	flag(&out.Randomize.LK2Changes, b.Randomize.LK2Changes)
	flag(&out.Randomize.Strict, b.Randomize.Strict)
	flag(&out.Randomize.LegacyLookup, b.Randomize.LegacyLookup)

	return out
}
