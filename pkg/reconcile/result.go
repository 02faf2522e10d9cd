package reconcile

import (
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/matchcase"
)

// Match is one classified pairing. NSC is nil for database-only matches
// and DB is nil for clearinghouse-only matches.
type Match struct {
	Case *matchcase.Case
	NSC  *enrollment.Record
	DB   *enrollment.DBRecord
}

// Pair returns the derivation input of the match.
func (m Match) Pair() matchcase.Pair {
	return matchcase.Pair{NSC: m.NSC, DB: m.DB}
}

// Result represents the outcome of a matching pass
type Result struct {
	// Matches in discovery order
	Matches []Match

	// UnmatchedClearinghouse holds clearinghouse rows no case accepted
	UnmatchedClearinghouse []*enrollment.Record

	// UnmatchedDatabase holds CRM rows no case accepted
	UnmatchedDatabase []*enrollment.DBRecord

	// Warnings contains non-critical issues
	Warnings []string

	// Metadata about the pass
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the matching pass
type ResultMetadata struct {
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration
	Stats     Statistics
}

// Statistics counts what a matching pass saw and produced
type Statistics struct {
	Students      int `json:"students" yaml:"students"`
	Clearinghouse int `json:"clearinghouse" yaml:"clearinghouse"`
	Database      int `json:"database" yaml:"database"`

	Paired            int `json:"paired" yaml:"paired"`
	ClearinghouseOnly int `json:"clearinghouse_only" yaml:"clearinghouse_only"`
	DatabaseOnly      int `json:"database_only" yaml:"database_only"`

	UnmatchedClearinghouse int `json:"unmatched_clearinghouse" yaml:"unmatched_clearinghouse"`
	UnmatchedDatabase      int `json:"unmatched_database" yaml:"unmatched_database"`

	TotalTimeMs int64 `json:"total_time_ms" yaml:"total_time_ms"`
}

// CaseCount is how often a case fired.
type CaseCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// CaseCounts returns case frequencies, most frequent first; ties keep the
// order in which the cases first fired.
func (r *Result) CaseCounts() []CaseCount {
	var counts []CaseCount
	pos := make(map[string]int)
	for _, m := range r.Matches {
		i, ok := pos[m.Case.Name]
		if !ok {
			i = len(counts)
			pos[m.Case.Name] = i
			counts = append(counts, CaseCount{Name: m.Case.Name})
		}
		counts[i].Count++
	}
	slices.SortStableFunc(counts, func(a, b CaseCount) int {
		return b.Count - a.Count
	})
	return counts
}

// HasWarnings returns true if there were warnings
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Summary returns a human-readable summary of the result
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	return fmt.Sprintf("%d students: %d paired, %d new from clearinghouse, %d database only; still unmatched %d clearinghouse, %d database",
		s.Students, s.Paired, s.ClearinghouseOnly, s.DatabaseOnly, s.UnmatchedClearinghouse, s.UnmatchedDatabase)
}

// ResultBuilder helps construct Result objects
type ResultBuilder struct {
	result *Result
}

// NewResultBuilder creates a new ResultBuilder
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{
		result: &Result{
			Metadata: ResultMetadata{
				StartTime: utc.Now(),
			},
		},
	}
}

// WithMatch adds a match
func (b *ResultBuilder) WithMatch(m Match) *ResultBuilder {
	b.result.Matches = append(b.result.Matches, m)
	return b
}

// WithUnmatchedClearinghouse adds an unmatched clearinghouse row
func (b *ResultBuilder) WithUnmatchedClearinghouse(r *enrollment.Record) *ResultBuilder {
	b.result.UnmatchedClearinghouse = append(b.result.UnmatchedClearinghouse, r)
	return b
}

// WithUnmatchedDatabase adds an unmatched CRM row
func (b *ResultBuilder) WithUnmatchedDatabase(r *enrollment.DBRecord) *ResultBuilder {
	b.result.UnmatchedDatabase = append(b.result.UnmatchedDatabase, r)
	return b
}

// WithWarning adds a warning
func (b *ResultBuilder) WithWarning(warning string) *ResultBuilder {
	b.result.Warnings = append(b.result.Warnings, warning)
	return b
}

// WithStatistics sets the input counts; Build fills in the rest
func (b *ResultBuilder) WithStatistics(stats Statistics) *ResultBuilder {
	b.result.Metadata.Stats = stats
	return b
}

// Build finalizes and returns the Result
func (b *ResultBuilder) Build() *Result {
	r := b.result
	stats := &r.Metadata.Stats
	stats.Paired, stats.ClearinghouseOnly, stats.DatabaseOnly = 0, 0, 0
	for _, m := range r.Matches {
		switch m.Case.Family {
		case matchcase.Paired:
			stats.Paired++
		case matchcase.ClearinghouseOnly:
			stats.ClearinghouseOnly++
		case matchcase.DatabaseOnly:
			stats.DatabaseOnly++
		}
	}
	stats.UnmatchedClearinghouse = len(r.UnmatchedClearinghouse)
	stats.UnmatchedDatabase = len(r.UnmatchedDatabase)

	r.Metadata.EndTime = utc.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Time.Sub(r.Metadata.StartTime.Time)
	stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
	return r
}
