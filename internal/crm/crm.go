// Package crm reads the enrollment, contact and account tables of the
// alumni CRM and applies enrollment updates back to it.
package crm

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/table"
)

// CRM objects.
const (
	ObjectEnrollment = "Enrollment__c"
	ObjectContact    = "Contact"
	ObjectAccount    = "Account"
)

// Source loads CRM objects as tables.
type Source interface {
	Table(ctx context.Context, object string) (*table.Table, error)
}

// Updater applies an enrollment update table to the CRM.
type Updater interface {
	UpdateEnrollments(ctx context.Context, updates *table.Table) (int, error)
}

// FileSource reads CSV extracts named <object>.csv from a directory.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource over dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Table implements Source.
func (s *FileSource) Table(ctx context.Context, object string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, object+".csv")
	t, err := table.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("extract", path)
		}
		return nil, err
	}
	return t, nil
}

// columns returns the CRM columns read for an object.
func columns(f enrollment.Fields, object string) ([]string, error) {
	switch object {
	case ObjectEnrollment:
		return f.Enrollment.Columns(true), nil
	case ObjectContact:
		c := f.Contact
		return []string{c.ID, c.LastName, c.FirstName, c.HSClass, c.HighSchool, c.StudentID}, nil
	case ObjectAccount:
		a := f.Account
		return []string{a.ID, a.Name, a.CollegeType, a.NCESID}, nil
	}
	return nil, errors.NewValidationError("object", object, "unknown CRM object")
}
