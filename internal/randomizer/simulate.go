package randomizer

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/xtding233/card-randomizer/internal/catalog"
)

// Metric selects what Simulate records per trial.
type Metric string

const (
	// Slots whose replacement card has a different rarity than the card
	// they originally held. Slots with no known original are skipped.
	MetricRarityDrift Metric = "rarity_drift"
	// Distinct cards written across every randomized slot.
	MetricDistinctCards Metric = "distinct_cards"
)

// Stats summarizes simulation results.
type Stats struct {
	Trials int
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		if i+1 >= n {
			return float64(cp[n-1])
		}
		f := pos - float64(i)
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Trials:  n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// trackedSlot is one patched address and the card it held before the run.
type trackedSlot struct {
	address    int64
	original   *catalog.Card
	byInteract bool
}

// Simulate repeats Run for trials consecutive seeds starting at opts.Seed
// and summarizes metric over them.
func Simulate(p Policy, ds *catalog.Dataset, opts Options, metric Metric, trials int) (Stats, error) {
	if metric != MetricRarityDrift && metric != MetricDistinctCards {
		return Stats{}, fmt.Errorf("unknown metric %q", metric)
	}
	if trials <= 0 {
		return Stats{}, nil
	}
	if ds == nil || ds.Catalog == nil {
		return Stats{}, errors.New("dataset with a card catalog is required")
	}
	tracked := trackedSlots(ds, opts.Categories)
	samples := make([]int, trials)
	for i := range samples {
		o := opts
		o.Seed = opts.Seed + uint64(i)
		out, err := Run(p, ds, o)
		if err != nil {
			return Stats{}, fmt.Errorf("trial %d: %w", i, err)
		}
		samples[i] = measure(out, ds.Catalog, tracked, metric)
	}
	return calcStats(samples), nil
}

func measure(out *Output, cat *catalog.Catalog, tracked []trackedSlot, metric Metric) int {
	drift := 0
	seen := make(map[byte]bool)
	for _, pr := range tracked {
		v, ok := out.Ledger.Get(pr.address)
		if !ok || len(v) == 0 {
			continue
		}
		var card catalog.Card
		if pr.byInteract {
			card, ok = cat.CardByInteractID(v[0])
		} else {
			var err error
			card, err = cat.CardByID(v[0])
			ok = err == nil
		}
		if !ok {
			continue
		}
		seen[card.ID] = true
		if pr.original != nil && pr.original.Rarity != card.Rarity {
			drift++
		}
	}
	if metric == MetricDistinctCards {
		return len(seen)
	}
	return drift
}

func trackedSlots(ds *catalog.Dataset, c Categories) []trackedSlot {
	cat := ds.Catalog
	byID := func(id byte) *catalog.Card {
		if card, err := cat.CardByID(id); err == nil {
			return &card
		}
		return nil
	}
	var out []trackedSlot
	if c.StartingDeck {
		for _, s := range ds.StartingDeck.Balanced {
			for _, a := range s.Addresses {
				out = append(out, trackedSlot{address: a})
			}
		}
		for _, pair := range ds.StartingDeck.FullRandom {
			out = append(out, trackedSlot{address: pair.First}, trackedSlot{address: pair.Second})
		}
	}
	if c.Locations {
		for _, loc := range ds.Locations {
			pr := trackedSlot{address: loc.Address, byInteract: true}
			if card, ok := cat.CardByInteractID(loc.OriginalInteractID); ok {
				pr.original = &card
			}
			out = append(out, pr)
		}
	}
	if c.LevelBonus {
		for _, s := range ds.LevelBonus {
			for _, a := range s.Addresses {
				out = append(out, trackedSlot{address: a, original: byID(s.OriginalCardID)})
			}
		}
	}
	var slots [][]catalog.AddressValue
	if c.WarriorCards {
		slots = append(slots, ds.WarriorCards)
	}
	if c.ShopCards {
		slots = append(slots, ds.ShopCards)
	}
	if c.FairyCards {
		slots = append(slots, ds.FairyCards)
	}
	for _, group := range slots {
		for _, s := range group {
			out = append(out, trackedSlot{address: s.Address, original: byID(s.CardID())})
		}
	}
	return out
}
