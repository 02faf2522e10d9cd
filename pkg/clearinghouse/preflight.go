package clearinghouse

import (
	"path/filepath"
	"slices"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/table"
)

var degreeGuesses = map[byte]string{
	'A': "Associate's",
	'B': "Bachelor's",
	'C': "Certificate",
	'M': "Master's",
}

// Preflight checks that every degree title and institution code in the
// detail export is covered by the reference tables. On any miss it writes
// the correction files into dir and returns a *errors.MissingReferenceError.
func Preflight(detail *table.Table, cols Columns, refs *References, dir string) error {
	missing := &errors.MissingReferenceError{}

	seenDegree := make(map[string]bool)
	for _, title := range detail.Values(cols.DegreeTitle) {
		if title == "" || seenDegree[title] {
			continue
		}
		seenDegree[title] = true
		if _, ok := refs.Degree(title); !ok {
			missing.Degrees = append(missing.Degrees, title)
		}
	}

	seenCode := make(map[string]bool)
	for _, code := range detail.Values(cols.CollegeCode) {
		if code == "" || seenCode[code] {
			continue
		}
		seenCode[code] = true
		if _, ok := refs.College(code); !ok {
			missing.Institutions = append(missing.Institutions, code)
		}
	}

	if missing.Empty() {
		return nil
	}
	slices.Sort(missing.Degrees)
	slices.Sort(missing.Institutions)

	if len(missing.Degrees) > 0 {
		path := filepath.Join(dir, constants.MissingDegreesFile)
		if err := missingDegrees(missing.Degrees).WriteFile(path); err != nil {
			return err
		}
		missing.Reports = append(missing.Reports, path)
	}
	if len(missing.Institutions) > 0 {
		out, err := missingColleges(detail, cols, missing.Institutions)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, constants.MissingCollegesFile)
		if err := out.WriteFile(path); err != nil {
			return err
		}
		missing.Reports = append(missing.Reports, path)
	}
	return missing
}

func missingDegrees(titles []string) *table.Table {
	out := table.New("DegreeTitle", "DegreeGuess")
	for _, title := range titles {
		guess, ok := degreeGuesses[title[0]]
		if !ok {
			guess = "?"
		}
		out.Append(title, guess)
	}
	return out
}

func missingColleges(detail *table.Table, cols Columns, codes []string) (*table.Table, error) {
	info, err := detail.IndexList(cols.CollegeCode, cols.CollegeName, cols.CollegeState, cols.PublicPrivate)
	if err != nil {
		return nil, err
	}
	out := table.New("OPEID", "NCESID", "Name", "State", "Control")
	for _, code := range codes {
		opeid, _, err := OPEIDKeys(code)
		if err != nil {
			opeid = code
		}
		data := info[code]
		out.Append(opeid, "?", data[0], data[1], data[2])
	}
	return out, nil
}
