package clearinghouse

import (
	"slices"
	"strings"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
)

// Span is a combined enrollment with its derived fields.
type Span struct {
	Term
	Status       enrollment.Status
	Degree       enrollment.Degree
	LastVerified enrollment.Date
	DataSource   string
}

// DeriveStatus classifies a span as Graduated, Attending or the transient
// T/W. A span is T/W when the feed reports a withdrawal or when its last
// term ended more than daysGap days before the report date.
func DeriveStatus(t Term, reported enrollment.Date, daysGap int) enrollment.Status {
	if t.Graduated == "Y" {
		return enrollment.Graduated
	}
	if t.EnrollmentStatus == "W" {
		return enrollment.TransferredOrWithdrew
	}
	if t.End.Valid() && reported.Valid() && reported.DaysSince(t.End) > daysGap {
		return enrollment.TransferredOrWithdrew
	}
	return enrollment.Attending
}

// DeriveDegree returns the degree type of a span: the reference type of its
// degree title when present, otherwise a guess from the institution level.
func DeriveDegree(t Term, refs *References) (enrollment.Degree, error) {
	if t.DegreeTitle != "" {
		d, ok := refs.Degree(t.DegreeTitle)
		if !ok {
			return enrollment.DegreeNone, errors.NewInvariantError("clearinghouse",
				"degree title %q passed pre-flight but is not in the degree list", t.DegreeTitle)
		}
		return d, nil
	}
	if strings.Contains(t.TwoYearFour, "4") {
		return enrollment.Bachelors, nil
	}
	return enrollment.AssociatesOrCertificate, nil
}

// bigEnd is the end of the initial "big" enrollment, earlier than any real span.
var bigEnd = enrollment.NewDate(1901, 1, 1)

// ResolveTransfers replaces the T/W status of one student's spans with
// Withdrew or Transferred out. Spans are visited in start order while
// tracking the "big" enrollment that encloses shorter ones; a T/W span that
// ends before the big enrollment is a summer or catch-up class and counts
// as a transfer.
func ResolveTransfers(spans []Span, daysGap int) {
	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := spans[a].Start, spans[b].Start
		switch {
		case sa.Before(sb):
			return -1
		case sb.Before(sa):
			return 1
		}
		return 0
	})

	bigE := bigEnd
	for k, i := range order {
		s := &spans[i]
		if s.Start.After(bigE) {
			bigE = s.End
		}
		if s.Status != enrollment.TransferredOrWithdrew {
			continue
		}
		leftForGood := k+1 == len(order)
		if !leftForGood {
			next := spans[order[k+1]].Start
			leftForGood = next.Valid() && s.End.Valid() && next.DaysSince(s.End) > daysGap
		}
		if leftForGood && !s.End.Before(bigE) {
			s.Status = enrollment.Withdrew
		} else {
			s.Status = enrollment.TransferredOut
		}
	}
}
