// Package enrollsync reconciles clearinghouse enrollment reports with the
// enrollment records of an alumni CRM.
//
// A run has two steps. Import turns a clearinghouse detail report into one
// row per enrollment span, keyed by CRM contact and account ids. Merge
// matches those spans against the CRM enrollments and writes the update,
// insert and review-flag tables. Apply pushes an update table back to the
// CRM.
//
// Example usage:
//
//	client, err := enrollsync.New(
//	    enrollsync.WithSource(crm.NewFileSource("./extracts")),
//	    enrollsync.WithOutputDir("./out"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	imported, err := client.Import(ctx, enrollsync.ImportInput{
//	    Detail:   detail,
//	    Colleges: colleges,
//	    Degrees:  degrees,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	merged, err := client.Merge(ctx, imported.Table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(merged.Bundle.Result.Summary())
package enrollsync

import (
	"context"

	"github.com/agentstation/enrollsync/internal/crm"
	"github.com/agentstation/enrollsync/pkg/clearinghouse"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Importer turns clearinghouse reports into enrollment spans.
type Importer interface {
	Import(ctx context.Context, in ImportInput) (*clearinghouse.Output, error)
}

// Merger matches imported spans against the CRM.
type Merger interface {
	Merge(ctx context.Context, imported *table.Table) (*MergeResult, error)
}

// Applier writes enrollment updates to the CRM.
type Applier interface {
	Apply(ctx context.Context, updates *table.Table) (int, error)
}

// Client runs the reconciliation steps.
type Client interface {
	Importer
	Merger
	Applier

	// Hooks provides access to progress callbacks
	Hooks

	// Fields returns the CRM column names in use
	Fields() enrollment.Fields
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	hooks   *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		options: o,
		hooks:   newHooks(),
	}, nil
}

func (c *client) Fields() enrollment.Fields {
	return c.options.fields
}

// source returns the configured CRM source or an error naming the step
// that needed it.
func (c *client) source(step string) (crm.Source, error) {
	if c.options.source == nil {
		return nil, errors.NewConfigError("client", step+" needs a CRM source", nil)
	}
	return c.options.source, nil
}
