package catalog

import (
	"errors"
	"fmt"
)

// Rarity groups cards into power tiers, 1 (common) to 4.
type Rarity int

const (
	MinRarity Rarity = 1
	MaxRarity Rarity = 4
)

// Valid reports whether r is one of the four known tiers.
func (r Rarity) Valid() bool { return r >= MinRarity && r <= MaxRarity }

var ErrCardNotFound = errors.New("card not found")

// Card is one collectible card as listed in the card table.
type Card struct {
	ID         byte   // stable card id
	InteractID byte   // in-game pickup trigger byte
	Name       string // display name, used in the spoiler log
	Rarity     Rarity
}

// Item is a non-card pickup.
type Item struct {
	ID   byte
	Name string
}

// Catalog holds the loaded cards and items. It is read-only after New.
type Catalog struct {
	cards []Card
	items []Item
}

// New copies cards and items into an immutable catalog.
func New(cards []Card, items []Item) *Catalog {
	return &Catalog{
		cards: append([]Card(nil), cards...),
		items: append([]Item(nil), items...),
	}
}

// Cards returns the cards in table order.
func (c *Catalog) Cards() []Card { return append([]Card(nil), c.cards...) }

// Items returns the items in table order.
func (c *Catalog) Items() []Item { return append([]Item(nil), c.items...) }

// Len is the number of cards.
func (c *Catalog) Len() int { return len(c.cards) }

// CardAt returns the i-th card in table order.
func (c *Catalog) CardAt(i int) Card { return c.cards[i] }

// CardByID returns the card whose stable id is id. With duplicate ids the
// later table row wins.
func (c *Catalog) CardByID(id byte) (Card, error) {
	for i := len(c.cards) - 1; i >= 0; i-- {
		if c.cards[i].ID == id {
			return c.cards[i], nil
		}
	}
	return Card{}, fmt.Errorf("card id %#04x: %w", id, ErrCardNotFound)
}

// CardByIDOrFirst behaves like the old lookup: an unknown id yields the
// first card of the table. ok is false when the fallback was used.
func (c *Catalog) CardByIDOrFirst(id byte) (card Card, ok bool) {
	found, err := c.CardByID(id)
	if err == nil {
		return found, true
	}
	if len(c.cards) == 0 {
		return Card{}, false
	}
	return c.cards[0], false
}

// CardByInteractID returns the card picked up by interact byte id, if any.
// Chest slots that originally held an item have no matching card. With
// duplicate interact bytes the later table row wins.
func (c *Catalog) CardByInteractID(id byte) (Card, bool) {
	for i := len(c.cards) - 1; i >= 0; i-- {
		if c.cards[i].InteractID == id {
			return c.cards[i], true
		}
	}
	return Card{}, false
}

// ItemByID returns the item with the given id.
func (c *Catalog) ItemByID(id byte) (Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
