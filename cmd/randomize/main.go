package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xtding233/card-randomizer/internal/archive"
	"github.com/xtding233/card-randomizer/internal/config"
	"github.com/xtding233/card-randomizer/internal/game"
	"github.com/xtding233/card-randomizer/internal/iso"
	"github.com/xtding233/card-randomizer/internal/randomizer"
	"github.com/xtding233/card-randomizer/internal/service"
)

// Config holds randomize command configuration.
type Config struct {
	config.Config

	ISO        string
	Seed       string
	Style      string
	Disable    string
	Strict     bool
	DryRun     bool
	SpoilerLog string
	OptionLog  string
	Simulate   int
	Metric     string
}

// ParseConfig loads env defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	env, err := config.Load()
	if err != nil {
		return Config{}, err
	}
	cfg := Config{Config: env}
	cfg.BindCommon(fs)
	fs.StringVar(&cfg.ISO, "iso", "", "disc image to patch in place")
	fs.StringVar(&cfg.Seed, "seed", "", "run seed (default: random)")
	fs.StringVar(&cfg.Style, "style", "", "randomization style: balanced or chaos (default: profile)")
	fs.StringVar(&cfg.Disable, "disable", "", "comma-separated categories to skip: "+strings.Join(game.CategoryNames, ","))
	fs.BoolVar(&cfg.Strict, "strict", false, "fail on cards missing from the card table")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "randomize and write logs without touching the image")
	fs.StringVar(&cfg.SpoilerLog, "spoiler", "spoiler.txt", "spoiler log output path (empty disables)")
	fs.StringVar(&cfg.OptionLog, "option-log", "options.txt", "option log output path (empty disables)")
	fs.IntVar(&cfg.Simulate, "simulate", 0, "run N seeds and print statistics instead of patching")
	fs.StringVar(&cfg.Metric, "metric", string(randomizer.MetricRarityDrift), "simulation metric: rarity_drift or distinct_cards")
	if err := config.ParseFromArgs(&cfg.Config, fs, args); err != nil {
		return Config{}, err
	}
	if cfg.ISO == "" && !cfg.DryRun && cfg.Simulate <= 0 {
		return Config{}, errors.New("-iso is required unless -dry-run or -simulate is set")
	}
	return cfg, nil
}

// Overrides turns the per-run flags into profile overrides.
func (c Config) Overrides() (game.Overrides, error) {
	var o game.Overrides
	if c.Seed != "" {
		seed, err := strconv.ParseUint(c.Seed, 10, 64)
		if err != nil {
			return o, fmt.Errorf("invalid seed %q: %w", c.Seed, err)
		}
		o.Seed = &seed
	}
	if c.Style != "" {
		style := c.Style
		o.Style = &style
	}
	if c.Strict {
		strict := true
		o.Strict = &strict
	}
	for _, name := range strings.Split(c.Disable, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := o.SetCategory(name, false); err != nil {
			return o, err
		}
	}
	return o, nil
}

// Run executes one randomization.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	o, err := cfg.Overrides()
	if err != nil {
		return err
	}

	if cfg.Simulate > 0 {
		return simulate(ctx, cfg, o, out, errOut)
	}

	var store *archive.Store
	if cfg.ArchivePath != "" {
		if store, err = archive.Open(cfg.ArchivePath); err != nil {
			return err
		}
		defer store.Close()
	}
	logger := log.New(errOut, "", 0)
	svc := service.New(game.NewLoader(cfg.ConfigDir), cfg.DataDir, store, logger)

	res, err := svc.Randomize(ctx, cfg.Profile, o)
	if err != nil {
		return err
	}
	img := iso.Image{Size: res.Params.ISOSize, GameID: res.Params.GameID}
	if !cfg.DryRun {
		if err := img.Check(cfg.ISO); err != nil {
			return err
		}
	}
	// logs go first so a failed write leaves the image untouched
	if err := writeLog(cfg.SpoilerLog, res.Output.Log.SpoilerLog()); err != nil {
		return err
	}
	if err := writeLog(cfg.OptionLog, res.Output.Log.OptionLog()); err != nil {
		return err
	}
	if !cfg.DryRun {
		if err := img.Apply(cfg.ISO, res.Output.Ledger); err != nil {
			return err
		}
	}
	if err := svc.Record(ctx, &res); err != nil {
		return err
	}

	fmt.Fprintf(out, "seed %d (%s, profile %s): %d patches", res.Seed, res.Params.Style, res.Params.Profile, res.Output.Ledger.Len())
	if cfg.DryRun {
		fmt.Fprint(out, ", image untouched")
	}
	if res.ID != 0 {
		fmt.Fprintf(out, ", archived as run %d", res.ID)
	}
	fmt.Fprintln(out)
	return nil
}

func simulate(ctx context.Context, cfg Config, o game.Overrides, out, errOut io.Writer) error {
	svc := service.New(game.NewLoader(cfg.ConfigDir), cfg.DataDir, nil, log.New(errOut, "", 0))
	params, st, err := svc.Simulate(ctx, cfg.Profile, o, randomizer.Metric(cfg.Metric), cfg.Simulate)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s over %d runs (%s, profile %s)\n", cfg.Metric, st.Trials, params.Style, params.Profile)
	fmt.Fprintf(out, "mean %.3f  stddev %.3f  p50 %.1f  p90 %.1f  p99 %.1f\n", st.Mean, st.StdDev, st.P50, st.P90, st.P99)
	return nil
}

func writeLog(path, body string) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func main() {
	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	if err := Run(context.Background(), cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
