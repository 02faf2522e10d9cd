package matchcase

import (
	"strings"

	"github.com/agentstation/enrollsync/pkg/enrollment"
)

const (
	monthYear = "Jan 2006"
	shortDate = "01/02/06"
	longDate  = "01/02/2006"
)

func statusText(s enrollment.Status) string {
	if s.IsNull() {
		return "<unknown>"
	}
	return string(s)
}

func degreeText(d enrollment.Degree) string {
	if d.IsNull() {
		return "<blank>"
	}
	return string(d)
}

func startNote(d enrollment.Date) string {
	return " (" + d.Format(monthYear) + " start)"
}

// span renders a date range as "MM/DD/YY-MM/DD/YY", with "present" for an
// open end.
func span(start, end enrollment.Date) string {
	s := "<unknown>"
	if start.Valid() {
		s = start.Format(shortDate)
	}
	e := "present"
	if end.Valid() {
		e = end.Format(shortDate)
	}
	return s + "-" + e
}

// dateDiscrepancy describes both sides of a pair whose start dates disagree.
func dateDiscrepancy(p Pair, showStatus bool) string {
	var b strings.Builder
	b.WriteString("Database has ")
	if showStatus {
		b.WriteString(statusText(p.DB.Status) + " ")
	}
	b.WriteString(span(p.DB.Start, p.DB.End))
	b.WriteString(" and NSC has ")
	if showStatus {
		b.WriteString(statusText(p.NSC.Status) + " ")
	}
	b.WriteString(span(p.NSC.Start, p.NSC.End))
	return b.String()
}

// flagWith builds a paired flag from a text function of the pair and the
// college name.
func flagWith(text func(p Pair, college string) string) func(*Env, Pair) (*Flag, error) {
	return func(env *Env, p Pair) (*Flag, error) {
		inst, err := env.college(p.NSC.CollegeID)
		if err != nil {
			return nil, err
		}
		return &Flag{StudentID: p.NSC.StudentID, Reason: text(p, inst.Name)}, nil
	}
}

// degreeChangeFlag flags a pair whose only change is a corrected degree type.
func degreeChangeFlag(env *Env, p Pair) (*Flag, error) {
	inst, err := env.college(p.NSC.CollegeID)
	if err != nil {
		return nil, err
	}
	degree := DegreeCheck(p.DB.Degree, p.NSC.Degree, inst.Type)
	if degree == p.DB.Degree || p.DB.Degree.IsNull() {
		return nil, nil
	}
	return &Flag{
		StudentID: p.NSC.StudentID,
		Reason: "Changed enrollment type from " + string(p.DB.Degree) +
			" to " + degreeText(degree) + ": " + inst.Name + startNote(p.NSC.Start),
	}, nil
}

// extraCorrections lists the problems of a badly formed CRM-only enrollment.
func extraCorrections(db *enrollment.DBRecord, collegeType string, today enrollment.Date) []string {
	var out []string
	if degree := DatabaseOnlyDegreeCheck(db.Degree, collegeType); degree != db.Degree {
		out = append(out, "Changed Degree Type from "+degreeText(db.Degree)+" to "+degreeText(degree))
	}
	if !db.LastVerified.Valid() {
		out = append(out, "Missing Date Last Verified")
	}
	switch {
	case db.Status.IsNull():
		out = append(out, "Missing Status")
	case db.Status == enrollment.Matriculating && !db.Start.Valid():
		out = append(out, "Missing Start Date")
	case db.Status == enrollment.Matriculating && today.Valid() && today.DaysSince(db.Start) > 0:
		out = append(out, "Matriculating enrollment set to start in the past ("+db.Start.Format(monthYear)+")")
	}
	if db.DataSource == "" {
		out = append(out, "Missing Data Source")
	}
	return out
}
