package randomizer

import (
	"fmt"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/draw"
)

// Balanced replaces every card with one of the same rarity. Slots whose
// original is not a card get a card of any rarity. The starting deck is
// drawn from per-slot candidate lists instead.
type Balanced struct {
	engine
}

// NewBalanced builds the rarity index for cat once.
func NewBalanced(cat *catalog.Catalog, opts PolicyOptions) *Balanced {
	b := &Balanced{engine: newEngine(cat, opts)}
	b.pick = func(rng draw.RandomSource, original *catalog.Card) (catalog.Card, error) {
		if original == nil {
			return b.index.PickAny(rng)
		}
		return b.index.Pick(original.Rarity, rng)
	}
	return b
}

func (b *Balanced) Style() string { return StyleBalanced }

// StartingDeck fills each deck slot with one card from its candidate list.
// The spoiler multiplicity is one less than the slot's address count.
func (b *Balanced) StartingDeck(rng draw.RandomSource, out *Output, deck catalog.StartingDeck) error {
	out.Log.Option("Randomized starting deck\n")
	out.Log.Spoiler("Starting Deck: ")
	for i, slot := range deck.Balanced {
		id, err := draw.Pick(slot.Candidates, rng)
		if err != nil {
			return fmt.Errorf("starting deck slot %d: %w", i, err)
		}
		card, err := b.cat.CardByID(id)
		if err != nil {
			return fmt.Errorf("starting deck slot %d: candidate: %w", i, err)
		}
		for _, a := range slot.Addresses {
			out.Ledger.Set(a, card.ID)
		}
		out.Log.Spoilerf("%s x%d. ", card.Name, len(slot.Addresses)-1)
	}
	out.Log.Spoiler("\n\n")
	return nil
}
