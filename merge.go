package enrollsync

import (
	"context"
	"time"

	"github.com/agentstation/enrollsync/internal/crm"
	"github.com/agentstation/enrollsync/pkg/assemble"
	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/normalize"
	"github.com/agentstation/enrollsync/pkg/reconcile"
	"github.com/agentstation/enrollsync/pkg/save"
	"github.com/agentstation/enrollsync/pkg/table"
)

// MergeResult is the outcome of a merge run.
type MergeResult struct {
	Bundle   *assemble.Bundle
	Manifest *save.Manifest

	// Normalization reports of the imported and CRM enrollment tables
	Clearinghouse *normalize.Report
	Database      *normalize.Report

	// Skipped counts imported rows without a CRM student or college id.
	// They are listed in Bundle.Skipped.
	Skipped int
}

// Merge matches an imported clearinghouse table against the CRM
// enrollments and writes the output bundle.
func (c *client) Merge(ctx context.Context, imported *table.Table) (*MergeResult, error) {
	src, err := c.source("merge")
	if err != nil {
		return nil, err
	}
	log := c.options.logger
	f := c.options.fields
	out := &MergeResult{}

	enrollments, err := src.Table(ctx, crm.ObjectEnrollment)
	if err != nil {
		return nil, err
	}
	contacts, err := src.Table(ctx, crm.ObjectContact)
	if err != nil {
		return nil, err
	}
	accounts, err := src.Table(ctx, crm.ObjectAccount)
	if err != nil {
		return nil, err
	}
	dir, err := normalize.Directory(contacts, accounts, f)
	if err != nil {
		return nil, err
	}

	nsc, report, err := normalize.Clearinghouse(imported, f.Enrollment, normalize.WithLogger(log))
	if err != nil {
		return nil, err
	}
	out.Clearinghouse = report
	nsc, skipped := known(nsc)
	out.Skipped = len(skipped)
	if out.Skipped > 0 {
		log.Warn().Int("rows", out.Skipped).Msg("Holding back imported rows without a CRM id")
	}

	db, report, err := normalize.Database(enrollments, f.Enrollment, normalize.WithLogger(log))
	if err != nil {
		return nil, err
	}
	out.Database = report
	if c.options.classes {
		db = c.inClasses(imported, db, dir)
	}

	opts := []reconcile.Option{
		reconcile.WithDirectory(dir),
		reconcile.WithLogger(log),
		reconcile.WithObserver(c.hooks),
	}
	if c.options.metrics != nil {
		opts = append(opts, reconcile.WithObserver(c.options.metrics))
	}
	m, err := reconcile.New(opts...)
	if err != nil {
		return nil, err
	}
	result, err := m.Match(ctx, nsc, db)
	if err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		log.Warn().Msg(w)
	}

	a, err := assemble.New(dir,
		assemble.WithFields(f),
		assemble.WithToday(c.options.today),
		assemble.WithSkipped(skipped),
		assemble.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if out.Bundle, err = a.Assemble(ctx, result); err != nil {
		return nil, err
	}

	saveOpts := []save.Option{
		save.WithDir(c.options.outputDir),
		save.WithDate(c.options.today.Civil().In(time.UTC)),
		save.WithReport(c.options.report),
		save.WithDebug(c.options.debug),
		save.WithLogger(log),
	}
	if r := c.options.metrics; r != nil {
		r.ObserveResult(result)
		r.ObserveRows("new_enr", out.Bundle.Inserts.Len())
		r.ObserveRows("enr_update", out.Bundle.Updates.Len())
		r.ObserveRows("con_update", out.Bundle.Flags.Len())
		saveOpts = append(saveOpts, save.WithMetrics(r.Gatherer()))
	}
	if out.Manifest, err = save.Write(out.Bundle, saveOpts...); err != nil {
		return nil, err
	}

	log.Info().Msg(result.Summary())
	return out, nil
}

// known splits off the records the import could not tie to a CRM student
// or college.
func known(records []enrollment.Record) (kept, skipped []enrollment.Record) {
	for _, r := range records {
		if r.StudentID == constants.NotAvailable || r.CollegeID == constants.NotAvailable ||
			r.StudentID == "" || r.CollegeID == "" {
			skipped = append(skipped, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, skipped
}

// inClasses keeps the CRM enrollments of students whose high school class
// appears in the imported report.
func (c *client) inClasses(imported *table.Table, db []enrollment.DBRecord, dir *enrollment.Directory) []enrollment.DBRecord {
	if _, ok := imported.Column(clearinghouse.HSClassColumn); !ok {
		return db
	}
	classes := make(map[string]bool)
	for _, class := range imported.Values(clearinghouse.HSClassColumn) {
		classes[class] = true
	}
	kept := db[:0:0]
	for _, r := range db {
		if classes[dir.Students[r.StudentID].HSClass] {
			kept = append(kept, r)
		}
	}
	c.options.logger.Debug().
		Int("kept", len(kept)).
		Int("dropped", len(db)-len(kept)).
		Msg("Restricted CRM enrollments to imported classes")
	return kept
}

// Apply pushes an enrollment update table to the CRM.
func (c *client) Apply(ctx context.Context, updates *table.Table) (int, error) {
	if c.options.updater == nil {
		return 0, errors.NewConfigError("client", "apply needs a CRM updater", nil)
	}
	return c.options.updater.UpdateEnrollments(ctx, updates)
}
