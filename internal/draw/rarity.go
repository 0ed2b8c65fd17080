package draw

import (
	"sort"

	"github.com/xtding233/card-randomizer/internal/catalog"
)

// RarityIndex partitions a card list by rarity.
// Every card lands in exactly one bucket; bucket order follows table order.
// The index is read-only after BuildRarityIndex.
type RarityIndex struct {
	all     []catalog.Card
	buckets map[catalog.Rarity][]catalog.Card
}

// BuildRarityIndex builds the buckets in one pass over cards.
func BuildRarityIndex(cards []catalog.Card) *RarityIndex {
	idx := &RarityIndex{
		all:     append([]catalog.Card(nil), cards...),
		buckets: make(map[catalog.Rarity][]catalog.Card),
	}
	for _, c := range idx.all {
		idx.buckets[c.Rarity] = append(idx.buckets[c.Rarity], c)
	}
	return idx
}

// Bucket returns the cards of rarity r; empty when there are none.
func (x *RarityIndex) Bucket(r catalog.Rarity) []catalog.Card {
	return append([]catalog.Card(nil), x.buckets[r]...)
}

// Rarities lists the non-empty buckets in ascending order.
func (x *RarityIndex) Rarities() []catalog.Rarity {
	out := make([]catalog.Rarity, 0, len(x.buckets))
	for r := range x.buckets {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len is the total number of indexed cards.
func (x *RarityIndex) Len() int { return len(x.all) }

// Pick draws uniformly from bucket r. An empty or unknown bucket falls
// back to a uniform draw over every card, so the only failure is an empty
// card list.
func (x *RarityIndex) Pick(r catalog.Rarity, rng RandomSource) (catalog.Card, error) {
	if bucket := x.buckets[r]; len(bucket) > 0 {
		return Pick(bucket, rng)
	}
	return x.PickAny(rng)
}

// PickAny draws uniformly over every card, ignoring rarity.
func (x *RarityIndex) PickAny(rng RandomSource) (catalog.Card, error) {
	return Pick(x.all, rng)
}
