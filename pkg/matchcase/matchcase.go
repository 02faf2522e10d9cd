// Package matchcase defines the ordered rules that classify a pairing of a
// clearinghouse enrollment with a CRM enrollment, and the update, insert and
// flag actions each rule derives.
//
// Rules are evaluated in list order; earlier rules are more specific and
// must win over the catch-alls that follow them.
package matchcase

import (
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
)

// Family groups cases by which sides of a pairing are present.
type Family int

// Case families.
const (
	Paired Family = iota
	ClearinghouseOnly
	DatabaseOnly
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case Paired:
		return "paired"
	case ClearinghouseOnly:
		return "clearinghouse-only"
	case DatabaseOnly:
		return "database-only"
	}
	return "unknown"
}

// Pair is the input of a derivation. NSC is nil for database-only cases and
// DB is nil for clearinghouse-only cases.
type Pair struct {
	NSC *enrollment.Record
	DB  *enrollment.DBRecord
}

// Update is one row of the enrollment update table.
type Update struct {
	ID           string
	Start        enrollment.Date
	End          enrollment.Date
	LastVerified enrollment.Date
	Status       enrollment.Status
	Degree       enrollment.Degree
	DataSource   string
	DegreeText   string
	MajorText    string
}

// Flag asks a coordinator to review a student.
type Flag struct {
	StudentID string
	Reason    string
}

// Env carries what derivations look up beyond the pair itself.
type Env struct {
	Directory *enrollment.Directory
	Today     enrollment.Date
}

func (e *Env) college(id string) (enrollment.Institution, error) {
	inst, ok := e.Directory.College(id)
	if !ok {
		return enrollment.Institution{}, errors.NewInvariantError("matchcase", "college %q is not in the account table", id)
	}
	return inst, nil
}

// Case is one named rule. A nil derivation means the case has nothing to
// say for that output.
type Case struct {
	Name   string
	Family Family

	// Match reports whether the rule fires. db is nil when the rule is
	// tried against an absent CRM record; nsc is nil for database-only rules.
	Match func(db *enrollment.DBRecord, nsc *enrollment.Record) bool

	Update func(env *Env, p Pair) (*Update, error)
	Insert func(p Pair) *enrollment.Record
	Flag   func(env *Env, p Pair) (*Flag, error)
}

// Actions are the outputs a case derives for one pair.
type Actions struct {
	Update *Update
	Insert *enrollment.Record
	Flag   *Flag
}

// Derive runs the case's derivations for a pair.
func (c *Case) Derive(env *Env, p Pair) (Actions, error) {
	var (
		a   Actions
		err error
	)
	if c.Update != nil {
		if a.Update, err = c.Update(env, p); err != nil {
			return Actions{}, err
		}
	}
	if c.Insert != nil {
		a.Insert = c.Insert(p)
	}
	if c.Flag != nil {
		if a.Flag, err = c.Flag(env, p); err != nil {
			return Actions{}, err
		}
	}
	return a, nil
}

// Info describes a case for listings.
type Info struct {
	Position int    `json:"position" yaml:"position"`
	Name     string `json:"name" yaml:"name"`
	Family   string `json:"family" yaml:"family"`
	Updates  bool   `json:"updates" yaml:"updates"`
	Inserts  bool   `json:"inserts" yaml:"inserts"`
	Flags    bool   `json:"flags" yaml:"flags"`
}

// Describe lists cases in evaluation order.
func Describe(cases []Case) []Info {
	out := make([]Info, len(cases))
	for i, c := range cases {
		out[i] = Info{
			Position: i + 1,
			Name:     c.Name,
			Family:   c.Family.String(),
			Updates:  c.Update != nil,
			Inserts:  c.Insert != nil,
			Flags:    c.Flag != nil,
		}
	}
	return out
}
