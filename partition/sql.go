package partition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/model"
)

// DefaultTable is the table used when SQL.Table is empty.
const DefaultTable = "points"

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("partition: invalid table name")

// Querier is the subset of *sql.DB and *sql.Tx used to read partitions.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Execer is the subset of *sql.DB and *sql.Tx used to write partitions.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQL is a partition stored as rows of a table with the columns
//
//	part TEXT, seq INTEGER, x REAL, y REAL
//
// Rows are read in seq order.
type SQL struct {
	DB    Querier
	Table string
	Key   string
}

var _ engine.Partition = (*SQL)(nil)

// NewSQL returns a partition reading the rows of table whose part column
// equals key.
func NewSQL(db Querier, table, key string) (*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validIdent(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return &SQL{DB: db, Table: table, Key: key}, nil
}

// Name returns "<table>/<key>".
func (s *SQL) Name() string { return s.Table + "/" + s.Key }

// Points streams the partition's rows.
func (s *SQL) Points(ctx context.Context) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		err := s.scan(ctx, yield)
		if err != nil && !errors.Is(err, errStop) {
			yield(model.Point{}, fmt.Errorf("partition %s: %w", s.Name(), err))
		}
	}
}

func (s *SQL) scan(ctx context.Context, yield func(model.Point, error) bool) error {
	if !validIdent(s.Table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, s.Table)
	}
	q := fmt.Sprintf(`SELECT x, y FROM %s WHERE part = ? ORDER BY seq`, s.Table)
	rows, err := s.DB.QueryContext(ctx, q, s.Key)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var x, y float64
		if err := rows.Scan(&x, &y); err != nil {
			return err
		}
		if !yield(model.Point{x, y}, nil) {
			return errStop
		}
	}
	return rows.Err()
}

// CreateTable creates table if it does not exist.
func CreateTable(ctx context.Context, db Execer, table string) error {
	if !validIdent(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (part TEXT NOT NULL, seq INTEGER NOT NULL, x REAL NOT NULL, y REAL NOT NULL, PRIMARY KEY (part, seq))`, table))
	return err
}

// InsertPoints appends pts to the partition key of table in one transaction.
func InsertPoints(ctx context.Context, db *sql.DB, table, key string, pts []model.Point) error {
	if !validIdent(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	row := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(seq) + 1, 0) FROM %s WHERE part = ?`, table), key)
	if err := row.Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s(part, seq, x, y) VALUES(?, ?, ?, ?)`, table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range pts {
		if _, err := stmt.ExecContext(ctx, key, next+int64(i), p.X(), p.Y()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SQLPartitions returns one partition per distinct key of table, ordered by key.
func SQLPartitions(ctx context.Context, db Querier, table string) ([]*SQL, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validIdent(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT part FROM %s ORDER BY part`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SQL
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, &SQL{DB: db, Table: table, Key: key})
	}
	return out, rows.Err()
}

// validIdent reports whether s is a plain SQL identifier.
func validIdent(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
