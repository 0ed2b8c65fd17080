package randomizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/randomizer"
)

func dataset() *catalog.Dataset {
	var shop []catalog.AddressValue
	for i := 0; i < 12; i++ {
		shop = append(shop, catalog.AddressValue{Address: int64(0x3000 + i), Value: []byte{byte(1 + i%3)}})
	}
	return &catalog.Dataset{
		Catalog: abc(),
		StartingDeck: catalog.StartingDeck{
			FullRandom: []catalog.DeckPair{{First: 0x1000, Second: 0x1001}, {First: 0x1002, Second: 0x1003}},
			Balanced: []catalog.StartingDeckSlot{
				{Addresses: []int64{0x1000, 0x1001}, Candidates: []byte{0x01, 0x02, 0x03}},
				{Addresses: []int64{0x1002, 0x1003}, Candidates: []byte{0x01, 0x03}},
			},
		},
		Locations: []catalog.Location{
			{Address: 0x2000, Type: 1, LevelName: "L1", Description: "chest", OriginalInteractID: 0x81},
			{Address: 0x2010, Type: catalog.TypeItem, LevelName: "L2", Description: "item", OriginalInteractID: 0x44},
		},
		WarriorCards: []catalog.AddressValue{{Address: 0x2100, Value: []byte{0x02}}},
		LevelBonus:   []catalog.LevelBonusSlot{{Addresses: []int64{0x2200, 0x2201}, OriginalCardID: 0x03}},
		ShopCards:    shop,
		FairyCards:   []catalog.AddressValue{{Address: 0x4000, Value: []byte{0x01}}},
		StartingInventory: []catalog.AddressValue{
			{Address: 0x78908, Value: []byte{0x38, 0x60, 0x00, 0x01}},
		},
	}
}

func TestRunIsDeterministic(t *testing.T) {
	opts := randomizer.Options{Seed: 1234, Categories: randomizer.AllCategories()}
	p := balanced(randomizer.PolicyOptions{})

	a, err := randomizer.Run(p, dataset(), opts)
	require.NoError(t, err)
	b, err := randomizer.Run(balanced(randomizer.PolicyOptions{}), dataset(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Ledger.Entries(), b.Ledger.Entries())
	assert.Equal(t, a.Log.OptionLog(), b.Log.OptionLog())
	assert.Equal(t, a.Log.SpoilerLog(), b.Log.SpoilerLog())
}

func TestRunSeedsDiffer(t *testing.T) {
	p := balanced(randomizer.PolicyOptions{})
	distinct := map[string]bool{}
	for seed := uint64(0); seed < 20; seed++ {
		out, err := randomizer.Run(p, dataset(), randomizer.Options{Seed: seed, Categories: randomizer.AllCategories()})
		require.NoError(t, err)
		distinct[out.Log.SpoilerLog()] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestRunLogsAndLedger(t *testing.T) {
	out, err := randomizer.Run(balanced(randomizer.PolicyOptions{}), dataset(),
		randomizer.Options{Seed: 7, Categories: randomizer.AllCategories()})
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"Seed: 7",
		"Balanced randomization style",
		"Randomized starting deck",
		"Randomized chest cards and items",
		"Randomized level bonus cards",
		"Randomized shop cards",
		"Randomized red fairy rewards",
		"Patched starting inventory",
		"",
	}, "\n"), out.Log.OptionLog())

	// 4 deck + 2 locations + 1 warrior + 2 bonus + 12 shop + 1 fairy + 1 asm
	assert.Equal(t, 23, out.Ledger.Len())
	v, ok := out.Ledger.Get(0x2010)
	require.True(t, ok)
	assert.Len(t, v, 2)
	assert.Equal(t, byte(cardGet), v[1])

	asm, ok := out.Ledger.Get(0x78908)
	require.True(t, ok)
	assert.Equal(t, []byte{0x38, 0x60, 0x00, 0x01}, asm)
}

func TestRunHonoursCategories(t *testing.T) {
	out, err := randomizer.Run(balanced(randomizer.PolicyOptions{}), dataset(),
		randomizer.Options{Seed: 7, Categories: randomizer.Categories{ShopCards: true}})
	require.NoError(t, err)

	assert.Equal(t, 12, out.Ledger.Len())
	assert.True(t, strings.HasPrefix(out.Log.SpoilerLog(), "Shop cards:\n"))
	assert.NotContains(t, out.Log.OptionLog(), "starting deck")
}

func TestRunCopiesLK2Changes(t *testing.T) {
	ds := dataset()
	ds.LK2Changes = []catalog.AddressValue{
		{Address: 0x5000, Value: []byte{0x0C}},
		{Address: 0x5010, Value: []byte{0x03, 0xE8}},
	}
	out, err := randomizer.Run(balanced(randomizer.PolicyOptions{}), ds,
		randomizer.Options{Seed: 7, Categories: randomizer.Categories{LK2Changes: true}})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Ledger.Len())
	v, ok := out.Ledger.Get(0x5010)
	require.True(t, ok)
	assert.Equal(t, []byte{0x03, 0xE8}, v)
	assert.Contains(t, out.Log.OptionLog(), "Applied lk2 card and enemy changes\n")
	assert.Empty(t, out.Log.SpoilerLog())

	out, err = randomizer.Run(balanced(randomizer.PolicyOptions{}), ds,
		randomizer.Options{Seed: 7, Categories: randomizer.Categories{ShopCards: true}})
	require.NoError(t, err)
	_, ok = out.Ledger.Get(0x5000)
	assert.False(t, ok)
}

func TestRunRequiresInputs(t *testing.T) {
	_, err := randomizer.Run(nil, dataset(), randomizer.Options{})
	assert.Error(t, err)
	_, err = randomizer.Run(balanced(randomizer.PolicyOptions{}), &catalog.Dataset{}, randomizer.Options{})
	assert.Error(t, err)
}

func TestChaosRun(t *testing.T) {
	p := randomizer.NewChaos(abc(), randomizer.PolicyOptions{CardGetByte: cardGet})
	out, err := randomizer.Run(p, dataset(), randomizer.Options{
		Seed:       99,
		Categories: randomizer.Categories{StartingDeck: true, WarriorCards: true},
	})
	require.NoError(t, err)

	assert.Contains(t, out.Log.OptionLog(), "Full random randomization style\n")
	for _, pair := range dataset().StartingDeck.FullRandom {
		ids := cardIDs(t, out, pair.First, pair.Second)
		assert.Equal(t, ids[0], ids[1])
	}
	assert.Equal(t, 5, out.Ledger.Len())
}

func TestChaosIgnoresRarity(t *testing.T) {
	p := randomizer.NewChaos(abc(), randomizer.PolicyOptions{})
	seen := map[byte]bool{}
	for seed := uint64(0); seed < 200; seed++ {
		out, err := randomizer.Run(p, dataset(), randomizer.Options{
			Seed:       seed,
			Categories: randomizer.Categories{WarriorCards: true},
		})
		require.NoError(t, err)
		seen[cardIDs(t, out, 0x2100)[0]] = true
	}
	assert.Len(t, seen, 3)
}
