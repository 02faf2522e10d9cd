package matchcase

import "github.com/agentstation/enrollsync/pkg/enrollment"

// Names of the paired and clearinghouse-only cases, in evaluation order.
const (
	PerfectMatch                = "Perfect Match"
	PerfectMatchFuzzyStart      = "Perfect Match w Start +/- 60 days off"
	GraduationMatch             = "Graduation match chg end dates"
	UnexpectedGraduation        = "Unexpected graduation (had different status)"
	AttendingMatch              = "Attending match chg end dates"
	LeftMatch                   = "T/W match chg end dates"
	AttendingWasMatriculating   = "Attending but DB had DNM/Matriculating"
	GraduationNotConfirmed      = "Graduation not confirmed (Attending)"
	AttendingWasLeft            = "Attending but DB had T/W"
	GraduationNotConfirmedLeft  = "Graduation not confirmed (T/W)"
	UnreportedLeft              = "Unreported left college (was Attending)"
	LeftWasMatriculating        = "Trans/Withd but DB had DNM/Matriculating"
	StartMatchUnspecified       = "(Error) Student-College-Start Match (unspecified)"
	StatusMatchDifferentStart   = "Status matches, but different start dates"
	GraduationNotConfirmedStart = "Graduation not confirmed and diff start ds"
	UnexpectedGraduationStart   = "Unexpected graduation w diff start ds"
	StudentCollegeMatch         = "Non-grad Student-College Match w diff start & status"
	NewAttending                = "(NSC only) New attending enrollment"
	NewGraduated                = "(NSC only) New graduated enrollment"
	NewTransferredOut           = "(NSC only) New transferred out enrollment"
	NewWithdrew                 = "(NSC only) New withdrew enrollment"
)

// sameCollege reports whether both records are the same student at the same college.
func sameCollege(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
	return db != nil && db.StudentID == nsc.StudentID && db.CollegeID == nsc.CollegeID
}

// fuzzy matches same-college pairs whose CRM start is set and close to the
// clearinghouse start, then applies the status test.
func fuzzy(status func(db enrollment.Status, nsc enrollment.Status) bool) func(*enrollment.DBRecord, *enrollment.Record) bool {
	return func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
		return sameCollege(db, nsc) &&
			db.Start.Valid() &&
			status(db.Status, nsc.Status) &&
			FuzzyStart(db.Start, nsc.Start)
	}
}

func is(s enrollment.Status) func(enrollment.Status) bool {
	return func(x enrollment.Status) bool { return x == s }
}

func both(db, nsc func(enrollment.Status) bool) func(enrollment.Status, enrollment.Status) bool {
	return func(d, n enrollment.Status) bool { return db(d) && nsc(n) }
}

func anyStatus(enrollment.Status) bool { return true }

func left(s enrollment.Status) bool { return s.Left() }

func preEnrollment(s enrollment.Status) bool { return s.PreEnrollment() }

func notGraduated(s enrollment.Status) bool { return s != enrollment.Graduated }

// Default returns the paired cases followed by the clearinghouse-only cases.
func Default() []Case {
	return []Case{
		{
			Name:   PerfectMatch,
			Family: Paired,
			Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
				return sameCollege(db, nsc) &&
					db.Start == nsc.Start &&
					db.End == nsc.End &&
					db.Status == nsc.Status
			},
			Update: mostlyClearinghouse(false),
			Flag:   degreeChangeFlag,
		},
		{
			Name:   PerfectMatchFuzzyStart,
			Family: Paired,
			Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
				return sameCollege(db, nsc) &&
					db.Start.Valid() &&
					db.End == nsc.End &&
					db.Status == nsc.Status &&
					FuzzyStart(db.Start, nsc.Start)
			},
			Update: mostlyClearinghouse(false),
			Flag:   degreeChangeFlag,
		},
		{
			Name:   GraduationMatch,
			Family: Paired,
			Match:  fuzzy(both(is(enrollment.Graduated), is(enrollment.Graduated))),
			Update: mostlyClearinghouse(false),
			Flag:   degreeChangeFlag,
		},
		{
			Name:   UnexpectedGraduation,
			Family: Paired,
			Match:  fuzzy(both(notGraduated, is(enrollment.Graduated))),
			Update: mostlyClearinghouse(false),
			Flag: flagWith(func(p Pair, college string) string {
				return "New unreported graduation (was " + statusText(p.DB.Status) + "): " +
					college + " (" + p.NSC.End.Format(monthYear) + ")"
			}),
		},
		{
			Name:   AttendingMatch,
			Family: Paired,
			Match:  fuzzy(both(is(enrollment.Attending), is(enrollment.Attending))),
			Update: mostlyClearinghouse(false),
			Flag:   degreeChangeFlag,
		},
		{
			Name:   LeftMatch,
			Family: Paired,
			Match:  fuzzy(both(left, left)),
			Update: mostlyClearinghouse(false),
			Flag:   degreeChangeFlag,
		},
		{
			Name:   AttendingWasMatriculating,
			Family: Paired,
			Match:  fuzzy(both(preEnrollment, is(enrollment.Attending))),
			Update: mostlyClearinghouse(false),
			Flag: flagWith(func(p Pair, college string) string {
				return "NSC indicates actually enrolled (was " + statusText(p.DB.Status) + "): " +
					college + startNote(p.NSC.Start)
			}),
		},
		{
			Name:   GraduationNotConfirmed,
			Family: Paired,
			Match:  fuzzy(both(is(enrollment.Graduated), is(enrollment.Attending))),
			Update: mostlyDatabase(false, false),
			Flag: flagWith(func(p Pair, college string) string {
				return "Graduation not confirmed (" + statusText(p.NSC.Status) + " in NSC): " +
					college + startNote(p.NSC.Start)
			}),
		},
		{
			Name:   AttendingWasLeft,
			Family: Paired,
			Match:  fuzzy(both(left, is(enrollment.Attending))),
			Update: mostlyClearinghouse(false),
			Flag: flagWith(func(p Pair, college string) string {
				text := "NSC indicates still attending (was " + statusText(p.DB.Status) + "): " +
					college + " (" + p.NSC.Start.Format(monthYear) + " start"
				if p.DB.End.Valid() {
					return text + " was " + p.DB.End.Format(longDate) + " end)"
				}
				return text + ")"
			}),
		},
		{
			Name:   GraduationNotConfirmedLeft,
			Family: Paired,
			Match:  fuzzy(both(is(enrollment.Graduated), left)),
			Update: mostlyDatabase(true, false),
			Flag: flagWith(func(p Pair, college string) string {
				return "Graduation not confirmed (" + statusText(p.NSC.Status) + " in NSC): " +
					college + startNote(p.NSC.Start)
			}),
		},
		{
			Name:   UnreportedLeft,
			Family: Paired,
			Match:  fuzzy(both(is(enrollment.Attending), left)),
			Update: mostlyClearinghouse(false),
			Flag: flagWith(func(p Pair, college string) string {
				return "New unreported left college: " + college + startNote(p.NSC.Start)
			}),
		},
		{
			Name:   LeftWasMatriculating,
			Family: Paired,
			Match:  fuzzy(both(preEnrollment, left)),
			Update: mostlyClearinghouse(false),
			Flag: flagWith(func(p Pair, college string) string {
				return "NSC indicates actually enrolled then withdrew (was " + statusText(p.DB.Status) + "): " +
					college + startNote(p.NSC.Start)
			}),
		},
		{
			// Catches fuzzy-start pairs no status rule above explains; it
			// derives nothing so they surface in the case counts.
			Name:   StartMatchUnspecified,
			Family: Paired,
			Match:  fuzzy(both(anyStatus, anyStatus)),
		},
		{
			Name:   StatusMatchDifferentStart,
			Family: Paired,
			Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
				return sameCollege(db, nsc) && db.Status == nsc.Status
			},
			Update: mostlyClearinghouse(true),
			Flag: func(env *Env, p Pair) (*Flag, error) {
				if !p.DB.Start.Valid() {
					return nil, nil
				}
				return flagWith(func(p Pair, college string) string {
					return "Date discrepancy (" + dateDiscrepancy(p, false) + "): " + college
				})(env, p)
			},
		},
		{
			Name:   GraduationNotConfirmedStart,
			Family: Paired,
			Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
				return sameCollege(db, nsc) && db.Status == enrollment.Graduated
			},
			Update: mostlyDatabase(false, true),
			Flag: flagWith(func(p Pair, college string) string {
				return "Graduation not confirmed (NSC has " + statusText(p.NSC.Status) + ")" +
					" and date discrepancy (" + dateDiscrepancy(p, false) + "): " + college
			}),
		},
		{
			Name:   UnexpectedGraduationStart,
			Family: Paired,
			Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
				return sameCollege(db, nsc) && nsc.Status == enrollment.Graduated
			},
			Update: mostlyClearinghouse(true),
			Flag: flagWith(func(p Pair, college string) string {
				return "New unreported graduation (was " + statusText(p.DB.Status) + ")" +
					" and date discrepancy (" + dateDiscrepancy(p, false) + "): " + college
			}),
		},
		{
			Name:   StudentCollegeMatch,
			Family: Paired,
			Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
				return sameCollege(db, nsc)
			},
			Update: mostlyClearinghouse(true),
			Flag: flagWith(func(p Pair, college string) string {
				return "Discrepancies (" + dateDiscrepancy(p, true) + "): " + college
			}),
		},
		newEnrollment(NewAttending, enrollment.Attending),
		newEnrollment(NewGraduated, enrollment.Graduated),
		newEnrollment(NewTransferredOut, enrollment.TransferredOut),
		newEnrollment(NewWithdrew, enrollment.Withdrew),
	}
}

// newEnrollment is a clearinghouse-only case: the enrollment is inserted
// as reported and the student flagged.
func newEnrollment(name string, status enrollment.Status) Case {
	return Case{
		Name:   name,
		Family: ClearinghouseOnly,
		Match: func(db *enrollment.DBRecord, nsc *enrollment.Record) bool {
			return db == nil && nsc.Status == status
		},
		Insert: func(p Pair) *enrollment.Record {
			r := *p.NSC
			return &r
		},
		Flag: flagWith(func(p Pair, college string) string {
			return "NSC indicates previously unreported enrollment (" + string(status) + "): " +
				college + startNote(p.NSC.Start)
		}),
	}
}
