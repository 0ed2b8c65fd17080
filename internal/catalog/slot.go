package catalog

// LocationType says what a chest/item location held before randomizing.
type LocationType int

const (
	// TypeItem locations need the card-get event byte appended.
	TypeItem LocationType = 3
	// TypeKeyItem locations also need the card-get byte at TypeAddress.
	TypeKeyItem LocationType = 4
)

// StartingDeckSlot is a group of deck addresses that all receive one card
// chosen from Candidates.
type StartingDeckSlot struct {
	Addresses  []int64
	Candidates []byte // card ids
}

// DeckPair is a full-random starting deck entry: both addresses get the
// same card id.
type DeckPair struct {
	First  int64
	Second int64
}

// StartingDeck carries both deck tables; each style uses one of them.
type StartingDeck struct {
	FullRandom []DeckPair
	Balanced   []StartingDeckSlot
}

// Location is a chest, card or item pickup in a level.
type Location struct {
	Address            int64
	Type               LocationType
	Area               int
	LevelName          string
	Description        string
	OriginalInteractID byte

	// secondary address for key items
	TypeAddress    int64
	HasTypeAddress bool
}

// LevelBonusSlot is a level-clear bonus card written to several addresses.
type LevelBonusSlot struct {
	Addresses      []int64
	OriginalCardID byte
}

// AddressValue is a single patch address with its original value. For
// warrior, shop and fairy cards the first value byte is a card id.
type AddressValue struct {
	Address int64
	Value   []byte
}

// CardID returns the original card id held by v.
func (v AddressValue) CardID() byte {
	if len(v.Value) == 0 {
		return 0
	}
	return v.Value[0]
}

// Dataset is everything the data loader produces for one game.
type Dataset struct {
	Catalog           *Catalog
	StartingDeck      StartingDeck
	Locations         []Location
	WarriorCards      []AddressValue
	LevelBonus        []LevelBonusSlot
	ShopCards         []AddressValue
	FairyCards        []AddressValue
	StartingInventory []AddressValue // 4-byte ASM words
	LK2Changes        []AddressValue // fixed card and enemy table edits
}
