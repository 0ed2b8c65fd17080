package randomizer

import (
	"fmt"
	"log"
	"strings"

	"github.com/xtding233/card-randomizer/internal/patch"
)

// Log is the pair of text streams a run produces: the option log lists
// what was randomized, the spoiler log lists what was placed where.
// Both are append-only.
type Log struct {
	option  strings.Builder
	spoiler strings.Builder
}

func (l *Log) Option(s string)                  { l.option.WriteString(s) }
func (l *Log) Optionf(format string, a ...any)  { fmt.Fprintf(&l.option, format, a...) }
func (l *Log) Spoiler(s string)                 { l.spoiler.WriteString(s) }
func (l *Log) Spoilerf(format string, a ...any) { fmt.Fprintf(&l.spoiler, format, a...) }

// OptionLog returns everything written to the option stream so far.
func (l *Log) OptionLog() string { return l.option.String() }

// SpoilerLog returns everything written to the spoiler stream so far.
func (l *Log) SpoilerLog() string { return l.spoiler.String() }

// Output collects the result of one run. It is owned by a single run and
// handed to the caller once the run returns.
type Output struct {
	Ledger   *patch.Ledger
	Log      Log
	Warnings []string
}

// NewOutput returns an empty Output.
func NewOutput() *Output {
	return &Output{Ledger: patch.NewLedger()}
}

// warnf records a data-integrity warning and mirrors it to logger.
func (o *Output) warnf(logger *log.Logger, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	o.Warnings = append(o.Warnings, msg)
	if logger != nil {
		logger.Printf("warning: %s", msg)
	}
}
