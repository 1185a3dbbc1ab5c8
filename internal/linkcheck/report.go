package linkcheck

import (
	"fmt"
	"io"
	"time"
)

// Status classifies the outcome of checking one URL.
type Status string

const (
	StatusOK       Status = "ok"
	StatusRedirect Status = "redirect"
	StatusBroken   Status = "broken"
	StatusSkipped  Status = "skipped"
)

// LinkResult is the outcome for a single URL.
type LinkResult struct {
	URL      string   `json:"url"`
	Status   Status   `json:"status"`
	Code     int      `json:"code,omitempty"`
	Location string   `json:"location,omitempty"`
	Error    string   `json:"error,omitempty"`
	Files    []string `json:"files,omitempty"`
}

// Report is the outcome of one checking pass over a module's sources
// and docs.
type Report struct {
	Module    string              `json:"module,omitempty"`
	Ref       string              `json:"ref,omitempty"`
	CheckedAt time.Time           `json:"checked_at"`
	Total     int                 `json:"total"`
	Results   []LinkResult        `json:"results"`
	ByFile    map[string][]string `json:"by_file,omitempty"`
}

// Count returns how many results carry the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// HasBroken reports whether any URL failed the check.
func (r *Report) HasBroken() bool {
	return r.Count(StatusBroken) > 0
}

// Write renders the human-readable summary: one line of totals, then
// every broken link with its referencing files, then every redirect with
// its target.
func (r *Report) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "checked %d links: %d ok, %d redirect, %d broken, %d skipped\n",
		r.Total, r.Count(StatusOK), r.Count(StatusRedirect), r.Count(StatusBroken), r.Count(StatusSkipped))
	if err != nil {
		return err
	}

	for _, res := range r.Results {
		if res.Status != StatusBroken {
			continue
		}
		if _, err := fmt.Fprintf(w, "broken: %s (%s)\n", res.URL, res.Error); err != nil {
			return err
		}
		for _, f := range res.Files {
			if _, err := fmt.Fprintf(w, "  referenced by %s\n", f); err != nil {
				return err
			}
		}
	}

	for _, res := range r.Results {
		if res.Status != StatusRedirect {
			continue
		}
		if _, err := fmt.Fprintf(w, "redirect: %s -> %s\n", res.URL, res.Location); err != nil {
			return err
		}
	}
	return nil
}
