package enrollsync

import (
	"context"

	"github.com/agentstation/enrollsync/internal/crm"
	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/table"
)

// ImportInput holds the tables of one clearinghouse import.
type ImportInput struct {
	// Detail is the clearinghouse detail report
	Detail *table.Table
	// Colleges maps OPEID codes to NCES ids
	Colleges *table.Table
	// Degrees maps degree titles to degree types
	Degrees *table.Table
}

// Import runs the clearinghouse import pipeline. When a CRM source is
// configured, student and college ids are translated to CRM ids; otherwise
// every id is reported as unknown.
func (c *client) Import(ctx context.Context, in ImportInput) (*clearinghouse.Output, error) {
	refs, err := clearinghouse.LoadReferences(in.Colleges, in.Degrees)
	if err != nil {
		return nil, err
	}

	opts := []clearinghouse.Option{
		clearinghouse.WithColumns(c.options.columns),
		clearinghouse.WithFields(c.options.fields.Enrollment),
		clearinghouse.WithDaysGap(c.options.daysGap),
		clearinghouse.WithReportDate(c.options.today),
		clearinghouse.WithReportDir(c.options.outputDir),
		clearinghouse.WithLogger(c.options.logger),
	}
	if c.options.source != nil {
		students, colleges, err := c.translations(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			clearinghouse.WithStudentIDs(students),
			clearinghouse.WithCollegeIDs(colleges))
	}

	im, err := clearinghouse.NewImporter(refs, opts...)
	if err != nil {
		return nil, err
	}
	return im.Run(ctx, in.Detail)
}

// translations builds the clearinghouse-to-CRM id maps from the contact
// and account tables.
func (c *client) translations(ctx context.Context) (students, colleges map[string]string, err error) {
	f := c.options.fields
	contacts, err := c.options.source.Table(ctx, crm.ObjectContact)
	if err != nil {
		return nil, nil, err
	}
	if students, err = contacts.Index(f.Contact.StudentID, f.Contact.ID); err != nil {
		return nil, nil, err
	}
	accounts, err := c.options.source.Table(ctx, crm.ObjectAccount)
	if err != nil {
		return nil, nil, err
	}
	if colleges, err = accounts.Index(f.Account.NCESID, f.Account.ID); err != nil {
		return nil, nil, err
	}
	return students, colleges, nil
}
