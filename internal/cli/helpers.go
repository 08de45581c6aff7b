// Package cli holds the wiring shared by the fsmtrail commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/fsmtrail/internal/config"
	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/history"
)

// CreateLogger configures the application logger. Logs go to stderr so the
// command output on stdout stays parseable.
func CreateLogger(cfg config.Config) *slog.Logger {
	return logging.NewWithWriter(os.Stderr, cfg.Level(), logging.Format(cfg.LogFormat))
}

// Printer renders command results as text or JSON.
type Printer struct {
	w    io.Writer
	json bool
}

// NewPrinter creates a Printer. format is "text" or "json".
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	switch format {
	case "", "text":
		return &Printer{w: w}, nil
	case "json":
		return &Printer{w: w, json: true}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
}

func (p *Printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// History prints the records in occurrence order.
func (p *Printer) History(records []domain.TransitionRecord) error {
	if p.json {
		if records == nil {
			records = []domain.TransitionRecord{}
		}
		return p.encode(records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(p.w, "no transitions recorded")
		return err
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OCCURRED AT\tTRANSITION\tFROM\tTO")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			r.OccurredAt.Format("2006-01-02T15:04:05.000Z07:00"),
			orDash(r.Transition),
			domain.DescribeState(r.From),
			r.To,
		)
	}
	return tw.Flush()
}

// Replay prints a replay result.
func (p *Printer) Replay(res history.Result) error {
	if p.json {
		return p.encode(res)
	}
	_, err := fmt.Fprintf(p.w, "initial state: %s\nfinal state:   %s\ntransitions:   %d\n",
		domain.DescribeState(res.InitialState),
		domain.DescribeState(res.FinalState),
		res.TransitionCount,
	)
	return err
}

// Validation prints a consistency check result.
func (p *Printer) Validation(v history.Validation) error {
	if p.json {
		return p.encode(v)
	}
	if v.Valid {
		_, err := fmt.Fprintln(p.w, "History is consistent! ✅")
		return err
	}
	fmt.Fprintf(p.w, "found %d inconsistencies:\n", len(v.Errors))
	for _, e := range v.Errors {
		fmt.Fprintf(p.w, "- %s\n", e)
	}
	return nil
}

// Stats prints aggregated statistics with frequencies sorted by key.
func (p *Printer) Stats(s history.Stats) error {
	if p.json {
		return p.encode(s)
	}
	fmt.Fprintf(p.w, "total transitions: %d\nunique states:     %d\n", s.TotalTransitions, s.UniqueStates)
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nSTATE\tCOUNT")
	for _, k := range sortedKeys(s.StateFrequency) {
		fmt.Fprintf(tw, "%s\t%d\n", k, s.StateFrequency[k])
	}
	fmt.Fprintln(tw, "\nTRANSITION\tCOUNT")
	for _, k := range sortedKeys(s.TransitionFrequency) {
		fmt.Fprintf(tw, "%s\t%d\n", k, s.TransitionFrequency[k])
	}
	return tw.Flush()
}

// Streams prints the entity streams known to a backend.
func (p *Printer) Streams(streams [][3]string) error {
	if p.json {
		out := make([]map[string]string, len(streams))
		for i, s := range streams {
			out[i] = map[string]string{"entity_type": s[0], "entity_id": s[1], "attribute": s[2]}
		}
		return p.encode(out)
	}
	for _, s := range streams {
		fmt.Fprintln(p.w, strings.Join(s[:], "/"))
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
