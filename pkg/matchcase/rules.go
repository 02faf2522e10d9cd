package matchcase

import (
	"strings"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
)

// FuzzyStart reports whether two start dates are close enough to accept the
// clearinghouse date quietly: the clearinghouse start may be up to 59 days
// before or 131 days after the CRM start.
func FuzzyStart(db, nsc enrollment.Date) bool {
	if !db.Valid() || !nsc.Valid() {
		return false
	}
	offset := nsc.DaysSince(db)
	return -constants.FuzzyStartBefore < offset && offset <= constants.FuzzyStartAfter
}

// collegeDegree is the degree a college type implies, or "" when the type
// is unknown.
func collegeDegree(collegeType string) enrollment.Degree {
	if collegeType == "" {
		return enrollment.DegreeNone
	}
	if strings.Contains(collegeType, "4") {
		return enrollment.Bachelors
	}
	return enrollment.AssociatesOrCertificate
}

// DegreeCheck picks the degree type of a paired enrollment. The CRM value is
// kept when it is plausible for the college, otherwise the clearinghouse
// value wins. A CRM Bachelor's at a two-year college is not plausible, a
// certificate is.
func DegreeCheck(db, nsc enrollment.Degree, collegeType string) enrollment.Degree {
	if collegeType == "Military Enlistment" {
		return enrollment.Employment
	}
	implied := collegeDegree(collegeType)
	if collegeType == "" {
		implied = nsc
	}
	switch {
	case db == implied:
		return db
	case db.IsNull():
		return nsc
	case implied.HasPrefix("A") && !db.HasPrefix("A"):
		if db.HasPrefix("C") {
			return db
		}
		return nsc
	}
	return db
}

// DatabaseOnlyDegreeCheck is DegreeCheck for CRM enrollments with no
// clearinghouse counterpart: the college type fills a blank degree and
// replaces an implausible one, keeping certificate, trade and employment
// degrees.
func DatabaseOnlyDegreeCheck(db enrollment.Degree, collegeType string) enrollment.Degree {
	if collegeType == "Military Enlistment" {
		return enrollment.Employment
	}
	if collegeType == "" {
		return db
	}
	implied := collegeDegree(collegeType)
	switch {
	case db == implied:
		return db
	case db.IsNull():
		return implied
	case implied.HasPrefix("A") && !db.HasPrefix("A"):
		if db.HasPrefix("C") || db.HasPrefix("T") || db.HasPrefix("E") {
			return db
		}
		return implied
	}
	return db
}

// startDate is the start date of a paired update. The tricky variant keeps
// the CRM start when the clearinghouse reports the enrollment more than a
// year later, which usually means under-reporting.
func startDate(p Pair, tricky bool) enrollment.Date {
	if !tricky || !p.DB.Start.Valid() {
		return p.NSC.Start
	}
	if p.NSC.Start.Valid() && p.NSC.Start.DaysSince(p.DB.Start) > constants.UnderReportedStartDays {
		return p.DB.Start
	}
	return p.NSC.Start
}

func orElse(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

// mostlyClearinghouse takes dates, status and source from the clearinghouse.
func mostlyClearinghouse(tricky bool) func(*Env, Pair) (*Update, error) {
	return func(env *Env, p Pair) (*Update, error) {
		inst, err := env.college(p.NSC.CollegeID)
		if err != nil {
			return nil, err
		}
		return &Update{
			ID:           p.DB.ID,
			Start:        startDate(p, tricky),
			End:          p.NSC.End,
			LastVerified: p.NSC.LastVerified,
			Status:       p.NSC.Status,
			Degree:       DegreeCheck(p.DB.Degree, p.NSC.Degree, inst.Type),
			DataSource:   p.NSC.DataSource,
			DegreeText:   orElse(p.NSC.DegreeText, p.DB.DegreeText),
			MajorText:    orElse(p.NSC.MajorText, p.DB.MajorText),
		}, nil
	}
}

// mostlyDatabase keeps the CRM status and verification; the end date comes
// from the clearinghouse when endFromNSC is set.
func mostlyDatabase(endFromNSC, tricky bool) func(*Env, Pair) (*Update, error) {
	return func(env *Env, p Pair) (*Update, error) {
		inst, err := env.college(p.NSC.CollegeID)
		if err != nil {
			return nil, err
		}
		end := p.DB.End
		if endFromNSC {
			end = p.NSC.End
		}
		source := enrollment.SourceCoordinatorVerified
		if p.DB.DataSource == enrollment.SourceTranscript {
			source = enrollment.SourceTranscript
		}
		return &Update{
			ID:           p.DB.ID,
			Start:        startDate(p, tricky),
			End:          end,
			LastVerified: p.DB.LastVerified,
			Status:       p.DB.Status,
			Degree:       DegreeCheck(p.DB.Degree, p.NSC.Degree, inst.Type),
			DataSource:   source,
			DegreeText:   orElse(p.NSC.DegreeText, p.DB.DegreeText),
			MajorText:    orElse(p.NSC.MajorText, p.DB.MajorText),
		}, nil
	}
}
