package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/xtding233/card-randomizer/internal/archive"
	"github.com/xtding233/card-randomizer/internal/game"
	"github.com/xtding233/card-randomizer/internal/patch"
	"github.com/xtding233/card-randomizer/internal/service"
)

const defaultRunsLimit = 20

type randomizeResp struct {
	ID         int64            `json:"id,omitempty"`
	Seed       uint64           `json:"seed"`
	Style      string           `json:"style"`
	Profile    string           `json:"profile"`
	OptionLog  string           `json:"option_log"`
	SpoilerLog string           `json:"spoiler_log"`
	Patches    []patch.HexEntry `json:"patches"`
	Warnings   []string         `json:"warnings,omitempty"`
	Err        string           `json:"err,omitempty"`
}

type runResp struct {
	ID         int64            `json:"id"`
	Seed       uint64           `json:"seed"`
	Style      string           `json:"style"`
	Profile    string           `json:"profile"`
	OptionLog  string           `json:"option_log,omitempty"`
	SpoilerLog string           `json:"spoiler_log,omitempty"`
	Patches    []patch.HexEntry `json:"patches,omitempty"`
	CreatedAt  int64            `json:"created_at"`
}

type runsResp struct {
	Runs []runResp `json:"runs"`
	Err  string    `json:"err,omitempty"`
}

// handler serves the HTTP API. ready holds the last reload error of the
// default profile; nil means serving.
type handler struct {
	svc     *service.Service
	profile string
	logger  *log.Logger

	lock  sync.RWMutex
	ready error
}

func newHandler(svc *service.Service, profile string, logger *log.Logger) *handler {
	return &handler{svc: svc, profile: profile, logger: logger}
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/randomize", h.handleRandomize)
	mux.HandleFunc("/runs", h.handleRuns)
	mux.HandleFunc("/healthz", h.handleHealthz)
	return mux
}

func (h *handler) setReady(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.ready = err
}

func (h *handler) readyErr() error {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.ready
}

func parseUint(r *http.Request, key string) (uint64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseBool(r *http.Request, key string) (bool, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return false, false, ""
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, "invalid " + key
	}
	return v, true, ""
}

func (h *handler) overrides(r *http.Request) (game.Overrides, string) {
	var o game.Overrides
	seed, ok, msg := parseUint(r, "seed")
	if msg != "" {
		return o, msg
	}
	if ok {
		o.Seed = &seed
	}
	if style := r.URL.Query().Get("style"); style != "" {
		o.Style = &style
	}
	strict, ok, msg := parseBool(r, "strict")
	if msg != "" {
		return o, msg
	}
	if ok {
		o.Strict = &strict
	}
	for _, name := range game.CategoryNames {
		on, ok, msg := parseBool(r, name)
		if msg != "" {
			return o, msg
		}
		if ok {
			_ = o.SetCategory(name, on)
		}
	}
	return o, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /randomize?profile=&seed=&style=&strict=&<category>=
func (h *handler) handleRandomize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	o, msg := h.overrides(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	profile := r.URL.Query().Get("profile")
	if profile == "" {
		profile = h.profile
	}

	res, err := h.svc.Randomize(r.Context(), profile, o)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, randomizeResp{Err: err.Error()})
		return
	}
	if err := h.svc.Record(r.Context(), &res); err != nil {
		h.logger.Printf("archive run: %v", err)
	}
	writeJSON(w, http.StatusOK, randomizeResp{
		ID:         res.ID,
		Seed:       res.Seed,
		Style:      res.Params.Style,
		Profile:    res.Params.Profile,
		OptionLog:  res.Output.Log.OptionLog(),
		SpoilerLog: res.Output.Log.SpoilerLog(),
		Patches:    res.Output.Ledger.Hex(),
		Warnings:   res.Output.Warnings,
	})
}

// GET /runs?limit= lists runs; GET /runs?id= returns one with its patches.
func (h *handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, hasID, msg := parseUint(r, "id")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if hasID {
		run, err := h.svc.Run(r.Context(), int64(id))
		if err != nil {
			writeJSON(w, statusFor(err), runsResp{Err: err.Error()})
			return
		}
		resp := toRunResp(run)
		resp.Patches = run.Patches
		writeJSON(w, http.StatusOK, runsResp{Runs: []runResp{resp}})
		return
	}

	limit := uint64(defaultRunsLimit)
	if v, ok, msg := parseUint(r, "limit"); msg != "" || (ok && v == 0) {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	} else if ok {
		limit = v
	}
	runs, err := h.svc.Runs(r.Context(), int(limit))
	if err != nil {
		writeJSON(w, statusFor(err), runsResp{Err: err.Error()})
		return
	}
	out := runsResp{Runs: make([]runResp, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, toRunResp(run))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.readyErr(); err != nil {
		http.Error(w, "unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

func toRunResp(run archive.Run) runResp {
	return runResp{
		ID:         run.ID,
		Seed:       run.Seed,
		Style:      run.Style,
		Profile:    run.Profile,
		OptionLog:  run.OptionLog,
		SpoilerLog: run.SpoilerLog,
		CreatedAt:  run.CreatedAt.UnixMilli(),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, archive.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoArchive):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
