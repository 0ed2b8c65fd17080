package randomizer_test

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/draw"
	"github.com/xtding233/card-randomizer/internal/randomizer"
)

const cardGet = 0x99

// A and C share rarity 1, B is the only rarity 2 card.
func abc() *catalog.Catalog {
	return catalog.New([]catalog.Card{
		{ID: 0x01, InteractID: 0x81, Name: "A", Rarity: 1},
		{ID: 0x02, InteractID: 0x82, Name: "B", Rarity: 2},
		{ID: 0x03, InteractID: 0x83, Name: "C", Rarity: 1},
	}, nil)
}

func balanced(opts randomizer.PolicyOptions) *randomizer.Balanced {
	if opts.CardGetByte == 0 {
		opts.CardGetByte = cardGet
	}
	return randomizer.NewBalanced(abc(), opts)
}

func cardIDs(t *testing.T, out *randomizer.Output, addrs ...int64) []byte {
	t.Helper()
	var ids []byte
	for _, a := range addrs {
		v, ok := out.Ledger.Get(a)
		require.True(t, ok, "address %#x not patched", a)
		require.Len(t, v, 1)
		ids = append(ids, v[0])
	}
	return ids
}

func TestRarityPreservedAcrossCategories(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	slots := []catalog.AddressValue{{Address: 0x10, Value: []byte{0x01}}}

	routines := map[string]func(draw.RandomSource, *randomizer.Output) error{
		"warrior": func(r draw.RandomSource, o *randomizer.Output) error { return p.WarriorCards(r, o, slots) },
		"shop":    func(r draw.RandomSource, o *randomizer.Output) error { return p.ShopCards(r, o, slots) },
		"fairy":   func(r draw.RandomSource, o *randomizer.Output) error { return p.FairyCards(r, o, slots) },
		"bonus": func(r draw.RandomSource, o *randomizer.Output) error {
			return p.LevelBonus(r, o, []catalog.LevelBonusSlot{{Addresses: []int64{0x10}, OriginalCardID: 0x01}})
		},
	}
	for name, run := range routines {
		t.Run(name, func(t *testing.T) {
			seen := map[byte]bool{}
			for seed := uint64(0); seed < 200; seed++ {
				out := randomizer.NewOutput()
				require.NoError(t, run(draw.NewSeededRNG(seed), out))
				id := cardIDs(t, out, 0x10)[0]
				assert.NotEqual(t, byte(0x02), id, "rarity 1 slot got rarity 2 card")
				seen[id] = true
			}
			assert.True(t, seen[0x01] && seen[0x03], "both rarity 1 cards should be drawn: %v", seen)
		})
	}
}

func TestLevelBonusLedgerCompleteness(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	slots := []catalog.LevelBonusSlot{
		{Addresses: []int64{0x100, 0x200}, OriginalCardID: 0x01},
		{Addresses: []int64{0x110, 0x210}, OriginalCardID: 0x02},
		{Addresses: []int64{0x120, 0x220}, OriginalCardID: 0x03},
	}
	out := randomizer.NewOutput()
	require.NoError(t, p.LevelBonus(draw.NewSeededRNG(1), out, slots))

	assert.Equal(t, []int64{0x100, 0x110, 0x120, 0x200, 0x210, 0x220}, out.Ledger.Addresses())
	for _, s := range slots {
		ids := cardIDs(t, out, s.Addresses...)
		assert.Equal(t, ids[0], ids[1], "all addresses of a slot share one card")
		assert.Contains(t, []byte{0x01, 0x02, 0x03}, ids[0])
	}
	// rarity 2 has a single card
	assert.Equal(t, []byte{0x02, 0x02}, cardIDs(t, out, 0x110, 0x210))
	assert.Equal(t, "Randomized level bonus cards\n", out.Log.OptionLog())
	assert.Empty(t, out.Log.SpoilerLog())
}

func TestShopSpoilerBreaksEveryTenth(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	var slots []catalog.AddressValue
	for i := 0; i < 12; i++ {
		slots = append(slots, catalog.AddressValue{Address: int64(0x500 + i), Value: []byte{0x02}})
	}
	out := randomizer.NewOutput()
	require.NoError(t, p.ShopCards(draw.NewSeededRNG(8), out, slots))

	want := "Shop cards:\n" + strings.Repeat("B. ", 10) + "\n" + strings.Repeat("B. ", 2) + "\n"
	assert.Equal(t, want, out.Log.SpoilerLog())
	assert.Equal(t, 12, out.Ledger.Len())

	for i := 0; i < 8; i++ {
		slots = append(slots, catalog.AddressValue{Address: int64(0x600 + i), Value: []byte{0x02}})
	}
	out = randomizer.NewOutput()
	require.NoError(t, p.ShopCards(draw.NewSeededRNG(8), out, slots))
	body := strings.TrimPrefix(out.Log.SpoilerLog(), "Shop cards:\n")
	lines := strings.Split(body, "\n")
	require.Len(t, lines, 4) // two full lines, the closing break, and the empty tail
	assert.Equal(t, strings.Repeat("B. ", 10), lines[0])
	assert.Equal(t, strings.Repeat("B. ", 10), lines[1])
	assert.Equal(t, "", lines[2])
}

func TestWarriorAndFairySpoilers(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	slots := []catalog.AddressValue{
		{Address: 1, Value: []byte{0x02}},
		{Address: 2, Value: []byte{0x02}},
	}
	out := randomizer.NewOutput()
	require.NoError(t, p.WarriorCards(draw.NewSeededRNG(1), out, slots))
	require.NoError(t, p.FairyCards(draw.NewSeededRNG(1), out, slots))

	assert.Equal(t, "Warrior of Wyht cards:\nB. B. \n\nRed fairy rewards:\nB. B. \n", out.Log.SpoilerLog())
	assert.Equal(t, "Randomized red fairy rewards\n", out.Log.OptionLog())
}

func TestLocationWithoutOriginalCardIsUnconstrained(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	locs := []catalog.Location{{
		Address: 0x700, Type: 1, LevelName: "Forest", Description: "north chest",
		OriginalInteractID: 0x55,
	}}
	seen := map[byte]bool{}
	for seed := uint64(0); seed < 300; seed++ {
		out := randomizer.NewOutput()
		require.NoError(t, p.Locations(draw.NewSeededRNG(seed), out, locs))
		v, ok := out.Ledger.Get(0x700)
		require.True(t, ok)
		require.Len(t, v, 1)
		assert.Contains(t, []byte{0x81, 0x82, 0x83}, v[0], "ledger must hold an interact id, not a card id")
		seen[v[0]] = true
	}
	assert.Len(t, seen, 3, "every card should be reachable: %v", seen)
}

func TestLocationSuffixes(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	locs := []catalog.Location{
		{Address: 0x10, Type: 1, LevelName: "Cave", Description: "card", OriginalInteractID: 0x82},
		{Address: 0x20, Type: catalog.TypeItem, LevelName: "Cave", Description: "item", OriginalInteractID: 0x82},
		{Address: 0x30, Type: catalog.TypeKeyItem, LevelName: "Tower", Description: "key", OriginalInteractID: 0x82,
			TypeAddress: 0x31, HasTypeAddress: true},
	}
	out := randomizer.NewOutput()
	require.NoError(t, p.Locations(draw.NewSeededRNG(4), out, locs))

	get := func(a int64) []byte {
		v, ok := out.Ledger.Get(a)
		require.True(t, ok)
		return v
	}
	assert.Equal(t, []byte{0x82}, get(0x10))
	assert.Equal(t, []byte{0x82, cardGet}, get(0x20))
	assert.Equal(t, []byte{0x82}, get(0x30))
	assert.Equal(t, []byte{cardGet}, get(0x31))
	assert.Equal(t, 4, out.Ledger.Len())
	assert.Equal(t,
		"Chests and items:\nCave card has B\nCave item has B\nTower key has B\n\n",
		out.Log.SpoilerLog())
}

func TestKeyItemNeedsTypeAddress(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	err := p.Locations(draw.NewSeededRNG(1), randomizer.NewOutput(), []catalog.Location{
		{Address: 0x30, Type: catalog.TypeKeyItem, OriginalInteractID: 0x81},
	})
	assert.True(t, errors.Is(err, randomizer.ErrMissingTypeAddress), "got %v", err)
}

func TestStartingDeck(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	deck := catalog.StartingDeck{Balanced: []catalog.StartingDeckSlot{
		{Addresses: []int64{0x1, 0x2, 0x3}, Candidates: []byte{0x02}},
		{Addresses: []int64{0x4}, Candidates: []byte{0x01, 0x03}},
	}}
	out := randomizer.NewOutput()
	require.NoError(t, p.StartingDeck(draw.NewSeededRNG(2), out, deck))

	assert.Equal(t, []byte{0x02, 0x02, 0x02}, cardIDs(t, out, 0x1, 0x2, 0x3))
	assert.Contains(t, []byte{0x01, 0x03}, cardIDs(t, out, 0x4)[0])
	assert.True(t, strings.HasPrefix(out.Log.SpoilerLog(), "Starting Deck: B x2. "))
	assert.True(t, strings.HasSuffix(out.Log.SpoilerLog(), " x0. \n\n"))
	assert.Equal(t, "Randomized starting deck\n", out.Log.OptionLog())
}

func TestStartingDeckEmptyCandidates(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	err := p.StartingDeck(draw.NewSeededRNG(2), randomizer.NewOutput(), catalog.StartingDeck{
		Balanced: []catalog.StartingDeckSlot{{Addresses: []int64{0x1}}},
	})
	assert.True(t, errors.Is(err, draw.ErrEmptyCandidates), "got %v", err)
}

func TestUnknownOriginalCard(t *testing.T) {
	slots := []catalog.AddressValue{{Address: 0x10, Value: []byte{0x7F}}}

	t.Run("warns and picks any card", func(t *testing.T) {
		var buf bytes.Buffer
		p := balanced(randomizer.PolicyOptions{Logger: log.New(&buf, "", 0)})
		out := randomizer.NewOutput()
		require.NoError(t, p.ShopCards(draw.NewSeededRNG(1), out, slots))
		assert.Len(t, out.Warnings, 1)
		assert.Contains(t, buf.String(), "0x7f")
		assert.Contains(t, []byte{0x01, 0x02, 0x03}, cardIDs(t, out, 0x10)[0])
	})

	t.Run("strict fails", func(t *testing.T) {
		p := balanced(randomizer.PolicyOptions{Strict: true})
		err := p.ShopCards(draw.NewSeededRNG(1), randomizer.NewOutput(), slots)
		assert.True(t, errors.Is(err, catalog.ErrCardNotFound), "got %v", err)
	})

	t.Run("legacy uses first card's rarity", func(t *testing.T) {
		p := balanced(randomizer.PolicyOptions{LegacyLookup: true})
		for seed := uint64(0); seed < 100; seed++ {
			out := randomizer.NewOutput()
			require.NoError(t, p.ShopCards(draw.NewSeededRNG(seed), out, slots))
			assert.NotEqual(t, byte(0x02), cardIDs(t, out, 0x10)[0])
			assert.Len(t, out.Warnings, 1)
		}
	})
}

func TestNewPolicy(t *testing.T) {
	p, err := randomizer.NewPolicy("", abc(), randomizer.PolicyOptions{})
	require.NoError(t, err)
	assert.Equal(t, randomizer.StyleBalanced, p.Style())

	p, err = randomizer.NewPolicy(randomizer.StyleChaos, abc(), randomizer.PolicyOptions{})
	require.NoError(t, err)
	assert.Equal(t, randomizer.StyleChaos, p.Style())

	_, err = randomizer.NewPolicy("wild", abc(), randomizer.PolicyOptions{})
	assert.True(t, errors.Is(err, randomizer.ErrUnknownStyle))
}
