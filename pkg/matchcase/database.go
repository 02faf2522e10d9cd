package matchcase

import (
	"strings"

	"github.com/agentstation/enrollsync/pkg/enrollment"
)

// DatabaseOnlyCases returns the cases for CRM enrollments left without a
// clearinghouse counterpart. Degree types the clearinghouse does not track
// are set aside first, then each status is confirmed or flagged.
func DatabaseOnlyCases() []Case {
	return []Case{
		ignoreDegree(enrollment.Employment),
		ignoreDegree(enrollment.TradeVocational),
		ignoreDegree(enrollment.Certificate),
		unconfirmed(enrollment.Attending),
		unconfirmed(enrollment.Withdrew),
		unconfirmed(enrollment.TransferredOut),
		unconfirmed(enrollment.Graduated),
		unconfirmed(enrollment.Matriculating),
		unconfirmed(enrollment.StatusNone),
		{
			Name:   "(DB Only) " + string(enrollment.DidNotMatriculate),
			Family: DatabaseOnly,
			Match: func(db *enrollment.DBRecord, _ *enrollment.Record) bool {
				return db.Status == enrollment.DidNotMatriculate
			},
		},
	}
}

func ignoreDegree(degree enrollment.Degree) Case {
	return Case{
		Name:   "(DB Only) " + string(degree),
		Family: DatabaseOnly,
		Match: func(db *enrollment.DBRecord, _ *enrollment.Record) bool {
			return db.Degree == degree
		},
	}
}

func unconfirmed(status enrollment.Status) Case {
	name := "(DB Only) " + string(status)
	if status.IsNull() {
		name = "(DB Only) <empty status>"
	}
	return Case{
		Name:   name,
		Family: DatabaseOnly,
		Match: func(db *enrollment.DBRecord, _ *enrollment.Record) bool {
			return db.Status == status
		},
		Update: func(env *Env, p Pair) (*Update, error) {
			inst, err := env.college(p.DB.CollegeID)
			if err != nil {
				return nil, err
			}
			degree := DatabaseOnlyDegreeCheck(p.DB.Degree, inst.Type)
			if degree == p.DB.Degree {
				return nil, nil
			}
			return &Update{
				ID:           p.DB.ID,
				Start:        p.DB.Start,
				End:          p.DB.End,
				LastVerified: p.DB.LastVerified,
				Status:       p.DB.Status,
				Degree:       degree,
				DataSource:   p.DB.DataSource,
				DegreeText:   p.DB.DegreeText,
				MajorText:    p.DB.MajorText,
			}, nil
		},
		Flag: func(env *Env, p Pair) (*Flag, error) {
			inst, err := env.college(p.DB.CollegeID)
			if err != nil {
				return nil, err
			}
			var parts []string
			switch p.DB.Status {
			case enrollment.Attending, enrollment.Graduated, enrollment.Withdrew, enrollment.TransferredOut:
				parts = append(parts, string(p.DB.Status)+" enrollment not confirmed by NSC")
			}
			if extra := extraCorrections(p.DB, inst.Type, env.Today); len(extra) > 0 {
				parts = append(parts, strings.Join(extra, ", "))
			}
			if len(parts) == 0 {
				return nil, nil
			}
			reason := strings.Join(parts, " and ") + ": " + inst.Name
			if p.DB.Start.Valid() {
				reason += startNote(p.DB.Start)
			}
			return &Flag{StudentID: p.DB.StudentID, Reason: reason}, nil
		},
	}
}
