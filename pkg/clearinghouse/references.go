package clearinghouse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Reference table columns.
const (
	CollegeOPEIDColumn  = "OPEID"
	CollegeNCESIDColumn = "NCESID"
	CollegeNameColumn   = "Name"
	DegreeTitleColumn   = "UpdateDegree"
	DegreeTypeColumn    = "DegreeType"
)

// College is one row of the institution reference table.
type College struct {
	OPEID  string
	NCESID string
	Name   string
}

// References holds the institution and degree reference tables.
type References struct {
	Colleges map[string]College
	Degrees  map[string]enrollment.Degree
}

// LoadReferences builds References from the institution table
// (OPEID, NCESID, Name) and the degree table (UpdateDegree, DegreeType).
func LoadReferences(colleges, degrees *table.Table) (*References, error) {
	byOPEID, err := colleges.IndexList(CollegeOPEIDColumn, CollegeNCESIDColumn, CollegeNameColumn)
	if err != nil {
		return nil, fmt.Errorf("college list: %w", err)
	}
	titles, err := degrees.Index(DegreeTitleColumn, DegreeTypeColumn)
	if err != nil {
		return nil, fmt.Errorf("degree list: %w", err)
	}

	refs := &References{
		Colleges: make(map[string]College, len(byOPEID)),
		Degrees:  make(map[string]enrollment.Degree, len(titles)),
	}
	for opeid, vals := range byOPEID {
		refs.Colleges[opeid] = College{OPEID: opeid, NCESID: vals[0], Name: vals[1]}
	}
	for title, degree := range titles {
		refs.Degrees[title] = enrollment.Degree(degree)
	}
	return refs, nil
}

// OPEIDKeys returns the two lookup keys of a clearinghouse institution code
// of the form NNNNNN-BB: the branch key (base+branch) and the main campus
// key (base+"00"), both without leading zeros.
func OPEIDKeys(code string) (branch, main string, err error) {
	base, suffix, ok := strings.Cut(code, "-")
	if !ok {
		return "", "", errors.NewValidationError("college_code", code, "expected NNNNNN-BB")
	}
	b, err := strconv.Atoi(base + suffix)
	if err != nil {
		return "", "", errors.NewValidationError("college_code", code, "non-numeric institution code")
	}
	m, err := strconv.Atoi(base + "00")
	if err != nil {
		return "", "", errors.NewValidationError("college_code", code, "non-numeric institution code")
	}
	return strconv.Itoa(b), strconv.Itoa(m), nil
}

// College resolves an institution code, preferring the branch over the
// main campus.
func (r *References) College(code string) (College, bool) {
	branch, main, err := OPEIDKeys(code)
	if err != nil {
		return College{}, false
	}
	if c, ok := r.Colleges[branch]; ok {
		return c, true
	}
	c, ok := r.Colleges[main]
	return c, ok
}

// Degree looks up the degree type of a clearinghouse degree title.
func (r *References) Degree(title string) (enrollment.Degree, bool) {
	d, ok := r.Degrees[title]
	return d, ok
}
