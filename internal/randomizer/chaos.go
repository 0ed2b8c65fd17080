package randomizer

import (
	"fmt"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/draw"
)

// Chaos ignores rarity: every slot gets any card from the table.
type Chaos struct {
	engine
}

// NewChaos returns a full-random policy over cat.
func NewChaos(cat *catalog.Catalog, opts PolicyOptions) *Chaos {
	c := &Chaos{engine: newEngine(cat, opts)}
	c.pick = func(rng draw.RandomSource, _ *catalog.Card) (catalog.Card, error) {
		return c.index.PickAny(rng)
	}
	return c
}

func (c *Chaos) Style() string { return StyleChaos }

// StartingDeck gives both addresses of every full-random pair one card.
func (c *Chaos) StartingDeck(rng draw.RandomSource, out *Output, deck catalog.StartingDeck) error {
	out.Log.Option("Randomized starting deck\n")
	out.Log.Spoiler("Starting Deck: ")
	for i, pair := range deck.FullRandom {
		card, err := c.index.PickAny(rng)
		if err != nil {
			return fmt.Errorf("starting deck pair %d: %w", i, err)
		}
		out.Ledger.Set(pair.First, card.ID)
		out.Ledger.Set(pair.Second, card.ID)
		out.Log.Spoiler(card.Name + ". ")
	}
	out.Log.Spoiler("\n\n")
	return nil
}
