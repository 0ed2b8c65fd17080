package randomizer

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/draw"
)

const (
	StyleBalanced = "balanced"
	StyleChaos    = "chaos"
)

var (
	ErrUnknownStyle       = errors.New("unknown randomization style")
	ErrMissingTypeAddress = errors.New("key item location has no type address")
)

// Policy decides the replacement for every slot of each category.
// Implementations are read-only after construction; all run state lives
// in the Output and the RandomSource passed to each call.
type Policy interface {
	Style() string
	StartingDeck(rng draw.RandomSource, out *Output, deck catalog.StartingDeck) error
	Locations(rng draw.RandomSource, out *Output, locs []catalog.Location) error
	WarriorCards(rng draw.RandomSource, out *Output, slots []catalog.AddressValue) error
	LevelBonus(rng draw.RandomSource, out *Output, slots []catalog.LevelBonusSlot) error
	ShopCards(rng draw.RandomSource, out *Output, slots []catalog.AddressValue) error
	FairyCards(rng draw.RandomSource, out *Output, slots []catalog.AddressValue) error
}

// PolicyOptions tune how a policy treats the data.
type PolicyOptions struct {
	// CardGetByte is the event byte that turns an item pickup into a card
	// pickup.
	CardGetByte byte
	// Strict makes an unknown original card id an error instead of a
	// warning.
	Strict bool
	// LegacyLookup resolves unknown card ids to the first card of the
	// table, as older releases did. Ignored when Strict is set.
	LegacyLookup bool
	Logger       *log.Logger
}

// NewPolicy returns the policy for style.
func NewPolicy(style string, cat *catalog.Catalog, opts PolicyOptions) (Policy, error) {
	switch style {
	case StyleBalanced, "":
		return NewBalanced(cat, opts), nil
	case StyleChaos:
		return NewChaos(cat, opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
}

// picker chooses a replacement given the original card; original is nil
// when the slot held no card.
type picker func(rng draw.RandomSource, original *catalog.Card) (catalog.Card, error)

// engine holds what every style shares: the catalog, its rarity index and
// the generic resolve → select → write routine.
type engine struct {
	cat   *catalog.Catalog
	index *draw.RarityIndex
	opts  PolicyOptions
	pick  picker
}

func newEngine(cat *catalog.Catalog, opts PolicyOptions) engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return engine{
		cat:   cat,
		index: draw.BuildRarityIndex(cat.Cards()),
		opts:  opts,
	}
}

// target is the uniform view of a slot: where to write, how to find the
// original card, and how to encode the replacement.
type target struct {
	addresses []int64

	originalID byte
	byInteract bool // originalID is an interact id, not a card id

	encode func(catalog.Card) []byte
}

func writeCardID(c catalog.Card) []byte { return []byte{c.ID} }

// resolve finds the card a slot originally held, or nil.
func (e *engine) resolve(out *Output, t target) (*catalog.Card, error) {
	if t.byInteract {
		card, ok := e.cat.CardByInteractID(t.originalID)
		if !ok {
			return nil, nil
		}
		return &card, nil
	}
	card, err := e.cat.CardByID(t.originalID)
	if err == nil {
		return &card, nil
	}
	switch {
	case e.opts.Strict:
		return nil, err
	case e.opts.LegacyLookup:
		first, _ := e.cat.CardByIDOrFirst(t.originalID)
		out.warnf(e.opts.Logger, "original card %#04x not in card table, using %s", t.originalID, first.Name)
		return &first, nil
	}
	out.warnf(e.opts.Logger, "original card %#04x not in card table, picking from every rarity", t.originalID)
	return nil, nil
}

// replace runs resolve → select → write for one slot.
func (e *engine) replace(rng draw.RandomSource, out *Output, t target) (catalog.Card, error) {
	original, err := e.resolve(out, t)
	if err != nil {
		return catalog.Card{}, err
	}
	card, err := e.pick(rng, original)
	if err != nil {
		return catalog.Card{}, err
	}
	encode := t.encode
	if encode == nil {
		encode = writeCardID
	}
	value := encode(card)
	for _, a := range t.addresses {
		out.Ledger.Set(a, value...)
	}
	return card, nil
}

// replaceAll runs replace over address/value slots, calling each with the
// 1-based slot number and the chosen card.
func (e *engine) replaceAll(rng draw.RandomSource, out *Output, slots []catalog.AddressValue, each func(n int, c catalog.Card)) error {
	for i, s := range slots {
		card, err := e.replace(rng, out, target{
			addresses:  []int64{s.Address},
			originalID: s.CardID(),
		})
		if err != nil {
			return fmt.Errorf("slot %d at %#x: %w", i, s.Address, err)
		}
		if each != nil {
			each(i+1, card)
		}
	}
	return nil
}

// Locations replaces every chest, card and item pickup.
func (e *engine) Locations(rng draw.RandomSource, out *Output, locs []catalog.Location) error {
	out.Log.Option("Randomized chest cards and items\n")
	out.Log.Spoiler("Chests and items:\n")
	for i, loc := range locs {
		if loc.Type == catalog.TypeKeyItem && !loc.HasTypeAddress {
			return fmt.Errorf("location %d (%s %s): %w", i, loc.LevelName, loc.Description, ErrMissingTypeAddress)
		}
		card, err := e.replace(rng, out, target{
			addresses:  []int64{loc.Address},
			originalID: loc.OriginalInteractID,
			byInteract: true,
			encode: func(c catalog.Card) []byte {
				if loc.Type == catalog.TypeItem {
					return []byte{c.InteractID, e.opts.CardGetByte}
				}
				return []byte{c.InteractID}
			},
		})
		if err != nil {
			return fmt.Errorf("location %d (%s %s): %w", i, loc.LevelName, loc.Description, err)
		}
		if loc.Type == catalog.TypeKeyItem {
			out.Ledger.Set(loc.TypeAddress, e.opts.CardGetByte)
		}
		out.Log.Spoilerf("%s %s has %s\n", loc.LevelName, loc.Description, card.Name)
	}
	out.Log.Spoiler("\n")
	return nil
}

// WarriorCards replaces the cards handed out by the warrior class.
func (e *engine) WarriorCards(rng draw.RandomSource, out *Output, slots []catalog.AddressValue) error {
	out.Log.Spoiler("Warrior of Wyht cards:\n")
	err := e.replaceAll(rng, out, slots, func(_ int, c catalog.Card) {
		out.Log.Spoiler(c.Name + ". ")
	})
	if err != nil {
		return fmt.Errorf("warrior cards: %w", err)
	}
	out.Log.Spoiler("\n\n")
	return nil
}

// LevelBonus replaces level-clear bonus cards. Only the option log notes it.
func (e *engine) LevelBonus(rng draw.RandomSource, out *Output, slots []catalog.LevelBonusSlot) error {
	out.Log.Option("Randomized level bonus cards\n")
	for i, s := range slots {
		_, err := e.replace(rng, out, target{
			addresses:  s.Addresses,
			originalID: s.OriginalCardID,
		})
		if err != nil {
			return fmt.Errorf("level bonus slot %d: %w", i, err)
		}
	}
	return nil
}

// ShopCards replaces the shop inventory, ten names per spoiler line.
func (e *engine) ShopCards(rng draw.RandomSource, out *Output, slots []catalog.AddressValue) error {
	out.Log.Option("Randomized shop cards\n")
	out.Log.Spoiler("Shop cards:\n")
	err := e.replaceAll(rng, out, slots, func(n int, c catalog.Card) {
		out.Log.Spoiler(c.Name + ". ")
		if n%10 == 0 {
			out.Log.Spoiler("\n")
		}
	})
	if err != nil {
		return fmt.Errorf("shop cards: %w", err)
	}
	out.Log.Spoiler("\n")
	return nil
}

// FairyCards replaces the red fairy rewards.
func (e *engine) FairyCards(rng draw.RandomSource, out *Output, slots []catalog.AddressValue) error {
	out.Log.Option("Randomized red fairy rewards\n")
	out.Log.Spoiler("Red fairy rewards:\n")
	err := e.replaceAll(rng, out, slots, func(_ int, c catalog.Card) {
		out.Log.Spoiler(c.Name + ". ")
	})
	if err != nil {
		return fmt.Errorf("fairy cards: %w", err)
	}
	out.Log.Spoiler("\n")
	return nil
}
