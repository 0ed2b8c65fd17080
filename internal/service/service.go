// Package service ties profile resolution, data loading, the randomizer
// and the run archive together for the command-line and HTTP front ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/xtding233/card-randomizer/internal/archive"
	"github.com/xtding233/card-randomizer/internal/catalog"
	"github.com/xtding233/card-randomizer/internal/dataload"
	"github.com/xtding233/card-randomizer/internal/draw"
	"github.com/xtding233/card-randomizer/internal/game"
	"github.com/xtding233/card-randomizer/internal/randomizer"
)

// ErrNoArchive is returned by history calls when no archive is configured.
var ErrNoArchive = errors.New("run archive is not configured")

// Result is one finished run.
type Result struct {
	ID     int64 // archive id, 0 until recorded
	Params game.RunParams
	Seed   uint64
	Output *randomizer.Output
}

// Service runs randomizations. Datasets are cached per profile until
// Invalidate is called.
type Service struct {
	loader  *game.Loader
	dataDir string
	store   *archive.Store
	logger  *log.Logger

	mu       sync.RWMutex
	datasets map[string]*catalog.Dataset // key: profile name
}

// New creates a Service. store may be nil to disable the archive.
func New(loader *game.Loader, dataDir string, store *archive.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		loader:   loader,
		dataDir:  dataDir,
		store:    store,
		logger:   logger,
		datasets: make(map[string]*catalog.Dataset),
	}
}

// Randomize resolves profile with o, loads its dataset and runs the
// selected policy. A missing seed is drawn from crypto/rand.
func (s *Service) Randomize(ctx context.Context, profile string, o game.Overrides) (Result, error) {
	pr, err := s.prepare(ctx, profile, o)
	if err != nil {
		return Result{}, err
	}
	out, err := randomizer.Run(pr.policy, pr.ds, pr.params.Options(pr.seed))
	if err != nil {
		return Result{}, err
	}
	s.logger.Printf("randomized profile=%s style=%s seed=%d patches=%d warnings=%d",
		pr.params.Profile, pr.params.Style, pr.seed, out.Ledger.Len(), len(out.Warnings))
	return Result{Params: pr.params, Seed: pr.seed, Output: out}, nil
}

// Simulate runs trials consecutive seeds of profile and summarizes metric.
// Nothing is archived.
func (s *Service) Simulate(ctx context.Context, profile string, o game.Overrides, metric randomizer.Metric, trials int) (game.RunParams, randomizer.Stats, error) {
	pr, err := s.prepare(ctx, profile, o)
	if err != nil {
		return game.RunParams{}, randomizer.Stats{}, err
	}
	st, err := randomizer.Simulate(pr.policy, pr.ds, pr.params.Options(pr.seed), metric, trials)
	if err != nil {
		return game.RunParams{}, randomizer.Stats{}, err
	}
	return pr.params, st, nil
}

type prepared struct {
	params game.RunParams
	ds     *catalog.Dataset
	policy randomizer.Policy
	seed   uint64
}

func (s *Service) prepare(ctx context.Context, profile string, o game.Overrides) (prepared, error) {
	if err := ctx.Err(); err != nil {
		return prepared{}, err
	}
	_, params, err := s.loader.Resolve(profile, o)
	if err != nil {
		return prepared{}, err
	}
	ds, err := s.dataset(params)
	if err != nil {
		return prepared{}, err
	}
	seed := params.Seed
	if !params.HasSeed {
		if seed, err = draw.NewSeed(); err != nil {
			return prepared{}, err
		}
	}
	p, err := randomizer.NewPolicy(params.Style, ds.Catalog, params.PolicyOptions(s.logger))
	if err != nil {
		return prepared{}, err
	}
	return prepared{params: params, ds: ds, policy: p, seed: seed}, nil
}

// Record archives res and stores the new id in it. Without an archive it
// is a no-op.
func (s *Service) Record(ctx context.Context, res *Result) error {
	if s.store == nil || res == nil || res.Output == nil {
		return nil
	}
	id, err := s.store.Record(ctx, archive.Run{
		Seed:       res.Seed,
		Style:      res.Params.Style,
		Profile:    res.Params.Profile,
		OptionLog:  res.Output.Log.OptionLog(),
		SpoilerLog: res.Output.Log.SpoilerLog(),
		Patches:    res.Output.Ledger.Hex(),
	})
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// Runs lists archived runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]archive.Run, error) {
	if s.store == nil {
		return nil, ErrNoArchive
	}
	return s.store.List(ctx, limit)
}

// Run returns one archived run.
func (s *Service) Run(ctx context.Context, id int64) (archive.Run, error) {
	if s.store == nil {
		return archive.Run{}, ErrNoArchive
	}
	return s.store.Get(ctx, id)
}

// Reload drops cached configs and datasets and loads profile again,
// reporting whether it is usable.
func (s *Service) Reload(profile string) error {
	s.Invalidate()
	_, params, err := s.loader.Resolve(profile, game.Overrides{})
	if err != nil {
		return err
	}
	_, err = s.dataset(params)
	return err
}

// Invalidate clears the config and dataset caches.
func (s *Service) Invalidate() {
	s.loader.Invalidate()
	s.mu.Lock()
	s.datasets = make(map[string]*catalog.Dataset)
	s.mu.Unlock()
}

// WatchPaths lists the profile YAML files and data tables profile depends
// on. A profile that does not resolve yields only its YAML files.
func (s *Service) WatchPaths(profile string) []string {
	paths := s.loader.Paths(profile)
	if _, params, err := s.loader.Resolve(profile, game.Overrides{}); err == nil {
		paths = append(paths, dataload.Paths(s.dataDir, params.Files)...)
	}
	return paths
}

func (s *Service) dataset(p game.RunParams) (*catalog.Dataset, error) {
	s.mu.RLock()
	ds, ok := s.datasets[p.Profile]
	s.mu.RUnlock()
	if ok {
		return ds, nil
	}

	ds, err := dataload.Load(s.dataDir, p.Files)
	if err != nil {
		return nil, fmt.Errorf("load data for profile %s: %w", p.Profile, err)
	}
	s.mu.Lock()
	s.datasets[p.Profile] = ds
	s.mu.Unlock()
	return ds, nil
}
