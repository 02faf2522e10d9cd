package clearinghouse

import (
	"slices"

	"github.com/agentstation/enrollsync/pkg/enrollment"
)

// Term is one row of the detail export: a student's reported enrollment
// at one institution for one term, or a graduation record.
type Term struct {
	StudentID   string
	FirstName   string
	LastName    string
	HSClass     string
	CollegeCode string
	NCESID      string
	CollegeName string
	TwoYearFour string

	Start     enrollment.Date
	End       enrollment.Date
	GradDate  enrollment.Date
	Graduated string // "Y" or "N"

	EnrollmentStatus string // F, H, L, Q, A, W, D
	DegreeTitle      string
	Major            string

	Row int // position in the detail export
}

// Combine merges the terms of one student at one college into continuous
// spans. Terms closer than daysGap days are absorbed into the current span,
// unless the span already graduated and the next term did not.
func Combine(terms []Term, daysGap int) []Term {
	rows := slices.Clone(terms)
	for i := range rows {
		if !rows[i].Start.Valid() {
			rows[i].Start = rows[i].GradDate
			rows[i].End = rows[i].GradDate
		}
	}
	if len(rows) < 2 {
		return rows
	}
	slices.SortStableFunc(rows, func(a, b Term) int {
		switch {
		case a.Start.Before(b.Start):
			return -1
		case b.Start.Before(a.Start):
			return 1
		}
		return 0
	})

	var spans []Term
	current := rows[0]
	for _, next := range rows[1:] {
		if splits(current, next, daysGap) {
			spans = append(spans, current)
			current = next
			continue
		}
		absorb(&current, next)
	}
	return append(spans, current)
}

// splits reports whether next starts a new span after span. The gap is
// measured from the latest end date absorbed so far, so a short term nested
// inside a longer one never shortens the span.
func splits(span, next Term, daysGap int) bool {
	if span.GradDate.Valid() && !next.GradDate.Valid() {
		return true
	}
	if !next.Start.Valid() || !span.End.Valid() {
		return false
	}
	return next.Start.DaysSince(span.End) > daysGap
}

func absorb(span *Term, next Term) {
	span.End = span.End.Max(next.End)
	span.GradDate = span.GradDate.Max(next.GradDate)
	span.Graduated = max(span.Graduated, next.Graduated)
	span.DegreeTitle = max(span.DegreeTitle, next.DegreeTitle)
	span.Major = max(span.Major, next.Major)
	span.EnrollmentStatus = next.EnrollmentStatus
}
