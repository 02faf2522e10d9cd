package crm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
	"github.com/agentstation/enrollsync/pkg/logging"
	"github.com/agentstation/enrollsync/pkg/table"
)

// Open connects to the PostgreSQL mirror of the CRM.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.WrapResource("open", "database", "", err)
	}
	db.SetConnMaxLifetime(1 * time.Hour)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapResource("connect", "database", "", err)
	}
	return db, nil
}

// SQLOption configures SQLSource and SQLUpdater.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	fields    enrollment.Fields
	tables    map[string]string
	hsClasses []string
	logger    *zerolog.Logger
}

func newSQLConfig(opts []SQLOption) sqlConfig {
	c := sqlConfig{
		fields: enrollment.DefaultFields(),
		tables: map[string]string{
			ObjectEnrollment: ObjectEnrollment,
			ObjectContact:    ObjectContact,
			ObjectAccount:    ObjectAccount,
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithFields sets the CRM column names.
func WithFields(f enrollment.Fields) SQLOption {
	return func(c *sqlConfig) {
		c.fields = f
	}
}

// WithTable maps a CRM object to a table name.
func WithTable(object, name string) SQLOption {
	return func(c *sqlConfig) {
		c.tables[object] = name
	}
}

// WithHSClasses restricts contacts, and the enrollments of contacts, to
// the given high school classes.
func WithHSClasses(classes ...string) SQLOption {
	return func(c *sqlConfig) {
		c.hsClasses = classes
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) SQLOption {
	return func(c *sqlConfig) {
		c.logger = logger
	}
}

// SQLSource reads CRM objects from PostgreSQL.
type SQLSource struct {
	db  *sqlx.DB
	cfg sqlConfig
}

// NewSQLSource creates a SQLSource.
func NewSQLSource(db *sqlx.DB, opts ...SQLOption) *SQLSource {
	return &SQLSource{db: db, cfg: newSQLConfig(opts)}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pq.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// query builds the SELECT for an object.
func (s *SQLSource) query(object string) (string, []any, error) {
	cols, err := columns(s.cfg.fields, object)
	if err != nil {
		return "", nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s", quoteAll(cols), pq.QuoteIdentifier(s.cfg.tables[object]))
	if len(s.cfg.hsClasses) == 0 {
		return q, nil, nil
	}
	cf := s.cfg.fields.Contact
	switch object {
	case ObjectContact:
		q += fmt.Sprintf(" WHERE %s = ANY($1)", pq.QuoteIdentifier(cf.HSClass))
		return q, []any{pq.Array(s.cfg.hsClasses)}, nil
	case ObjectEnrollment:
		q += fmt.Sprintf(" WHERE %s IN (SELECT %s FROM %s WHERE %s = ANY($1))",
			pq.QuoteIdentifier(s.cfg.fields.Enrollment.Student),
			pq.QuoteIdentifier(cf.ID),
			pq.QuoteIdentifier(s.cfg.tables[ObjectContact]),
			pq.QuoteIdentifier(cf.HSClass))
		return q, []any{pq.Array(s.cfg.hsClasses)}, nil
	}
	return q, nil, nil
}

// Table implements Source.
func (s *SQLSource) Table(ctx context.Context, object string) (*table.Table, error) {
	q, args, err := s.query(object)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, errors.WrapResource("query", object, "", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, errors.WrapResource("query", object, "", err)
	}
	t := table.New(header...)
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, errors.WrapResource("scan", object, "", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cell(v)
		}
		t.Append(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("query", object, "", err)
	}
	s.cfg.logger.Debug().Str("object", object).Int("rows", t.Len()).Msg("Loaded CRM table")
	return t, nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(constants.DateFormatISO)
	}
	return fmt.Sprint(v)
}

// SQLUpdater applies enrollment updates in one transaction.
type SQLUpdater struct {
	db  *sqlx.DB
	cfg sqlConfig
}

// NewSQLUpdater creates a SQLUpdater.
func NewSQLUpdater(db *sqlx.DB, opts ...SQLOption) *SQLUpdater {
	return &SQLUpdater{db: db, cfg: newSQLConfig(opts)}
}

// UpdateEnrollments implements Updater. Every column but the id is set;
// blank date cells are written as NULL.
func (u *SQLUpdater) UpdateEnrollments(ctx context.Context, updates *table.Table) (n int, err error) {
	ef := u.cfg.fields.Enrollment
	idCol, ok := updates.Column(ef.ID)
	if !ok {
		return 0, errors.NewValidationError(ef.ID, nil, "update table has no id column")
	}
	header := updates.Header()
	dates := map[string]bool{ef.StartDate: true, ef.EndDate: true, ef.LastVerified: true}

	var sets []string
	var setCols []int
	for i, name := range header {
		if i == idCol {
			continue
		}
		setCols = append(setCols, i)
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(name), len(sets)+1))
	}
	if len(sets) == 0 {
		return 0, errors.NewValidationError("columns", header, "nothing to update")
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		pq.QuoteIdentifier(u.cfg.tables[ObjectEnrollment]),
		strings.Join(sets, ", "),
		pq.QuoteIdentifier(ef.ID),
		len(sets)+1)

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin enrollment update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, row := range updates.Rows() {
		args := make([]any, 0, len(setCols)+1)
		for _, i := range setCols {
			if row[i] == "" && dates[header[i]] {
				args = append(args, nil)
				continue
			}
			args = append(args, row[i])
		}
		args = append(args, row[idCol])
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, errors.WrapResource("update", "enrollment", row[idCol], err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, errors.WrapResource("update", "enrollment", row[idCol], err)
		}
		if affected == 0 {
			u.cfg.logger.Warn().Str("id", row[idCol]).Msg("Enrollment not found")
		}
		n += int(affected)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit enrollment update: %w", err)
	}
	u.cfg.logger.Info().Int("rows", n).Msg("Applied enrollment updates")
	return n, nil
}
