package rowtmpl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/nao1215/rowtmpl/domain/model"
)

// sqliteDriverName is the database/sql driver registered by modernc.org/sqlite
const sqliteDriverName = "sqlite"

var errNoUserTable = errors.New("database has no user table")

// SQLiteSource reads one table of a SQLite database file.
type SQLiteSource struct {
	ctx    context.Context
	path   string
	db     *sql.DB
	table  string
	header model.Header
	pass   singlePass
}

var _ Source = (*SQLiteSource)(nil)

// OpenSQLite opens the table opts.Table of the SQLite file at path. Without
// a table name the database must hold exactly one user table. The file is
// opened read-only and is never created.
func OpenSQLite(ctx context.Context, path string, opts OpenOptions) (*SQLiteSource, error) {
	if newFile(path).isCompressed() {
		return nil, fmt.Errorf("%w: compressed SQLite database %s", ErrUnsupportedFormat, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, openError(path, err)
	}

	db, err := sql.Open(sqliteDriverName, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, openError(path, err)
	}

	table := opts.Table
	if table == "" {
		table, err = soleTable(ctx, db)
		if err != nil {
			_ = db.Close() // Ignore close error during error handling
			return nil, openError(path, err)
		}
	}

	header, err := tableColumns(ctx, db, table)
	if err != nil {
		_ = db.Close() // Ignore close error during error handling
		return nil, openError(path, NewErrorContext("read columns", "").WithSheet(table).Error(err))
	}
	if err := header.Validate(); err != nil {
		_ = db.Close() // Ignore close error during error handling
		return nil, openError(path, err)
	}

	return &SQLiteSource{
		ctx:    ctx,
		path:   path,
		db:     db,
		table:  table,
		header: header,
	}, nil
}

func soleTable(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(names) {
	case 0:
		return "", errNoUserTable
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("database has %d tables, choose one of: %s", len(names), strings.Join(names, ", "))
	}
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (model.Header, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" LIMIT 0") //nolint:gosec // identifier is quoted
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	return model.NewHeader(cols), nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TableName returns the name of the table being read.
func (s *SQLiteSource) TableName() string {
	return s.table
}

// FieldNames returns the column names of the table.
func (s *SQLiteSource) FieldNames() []string {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out
}

// Records yields the rows of the table in storage order.
func (s *SQLiteSource) Records() iter.Seq2[model.Record, error] {
	return func(yield func(model.Record, error) bool) {
		if !s.pass.begin(yield) {
			return
		}

		rows, err := s.db.QueryContext(s.ctx, "SELECT * FROM "+quoteIdent(s.table)) //nolint:gosec // identifier is quoted
		if err != nil {
			yield(nil, NewErrorContext("query table", s.path).WithSheet(s.table).Error(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			values := make([]any, len(s.header))
			ptrs := make([]any, len(values))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, NewErrorContext("scan row", s.path).WithSheet(s.table).Error(err))
				return
			}
			if !yield(model.NewRecord(s.header, values), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, NewErrorContext("read rows", s.path).WithSheet(s.table).Error(err))
		}
	}
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	if !s.pass.close() {
		return nil
	}
	return s.db.Close()
}
