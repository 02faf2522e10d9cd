package save

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/enrollsync/pkg/assemble"
	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/errors"
)

// writeReport writes a markdown summary of the merge run.
func writeReport(path string, b *assemble.Bundle, m *Manifest, date time.Time) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", path, cerr)
		}
	}()

	doc := md.NewMarkdown(f)
	doc.H1("Enrollment merge " + date.Format(constants.DateFormatISO)).LF()

	if b.Result != nil {
		s := b.Result.Metadata.Stats
		doc.H2("Matching").LF()
		doc.Table(md.TableSet{
			Header: []string{"Measure", "Count"},
			Rows: [][]string{
				{"Students", strconv.Itoa(s.Students)},
				{"Clearinghouse records", strconv.Itoa(s.Clearinghouse)},
				{"Database records", strconv.Itoa(s.Database)},
				{"Paired", strconv.Itoa(s.Paired)},
				{"New from clearinghouse", strconv.Itoa(s.ClearinghouseOnly)},
				{"Database only", strconv.Itoa(s.DatabaseOnly)},
				{"Unmatched clearinghouse", strconv.Itoa(s.UnmatchedClearinghouse)},
				{"Unmatched database", strconv.Itoa(s.UnmatchedDatabase)},
				{"Skipped without CRM id", strconv.Itoa(skipped(b))},
			},
		}).LF()
		if b.Result.HasWarnings() {
			doc.H2("Warnings").LF()
			doc.BulletList(b.Result.Warnings...).LF()
		}
	}

	doc.H2("Output").LF()
	doc.Table(md.TableSet{
		Header: []string{"File", "Rows"},
		Rows: [][]string{
			{filepath.Base(m.Inserts), strconv.Itoa(b.Inserts.Len())},
			{filepath.Base(m.Updates), strconv.Itoa(b.Updates.Len())},
			{filepath.Base(m.Flags), strconv.Itoa(b.Flags.Len())},
		},
	}).LF()

	if b.CaseFrequency != nil && b.CaseFrequency.Len() > 0 {
		doc.H2("Cases").LF()
		doc.Table(md.TableSet{
			Header: b.CaseFrequency.Header(),
			Rows:   b.CaseFrequency.Rows(),
		}).LF()
	}

	if err := doc.Build(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func skipped(b *assemble.Bundle) int {
	if b.Skipped == nil {
		return 0
	}
	return b.Skipped.Len()
}
