// Package store keeps the body catalog in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"orrery/simulator/model"
)

var (
	ErrNotFound = errors.New("body not found")
	ErrExists   = errors.New("body already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS bodies (
	name   TEXT PRIMARY KEY,
	radius REAL NOT NULL CHECK (radius > 0),
	phase  REAL NOT NULL,
	scale  REAL NOT NULL CHECK (scale > 0),
	tag    TEXT NOT NULL,
	color  TEXT NOT NULL DEFAULT ''
);`

type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at dsn and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) List(ctx context.Context) ([]model.BodySpec, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, radius, phase, scale, tag, color FROM bodies ORDER BY radius, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bodies := []model.BodySpec{}
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, rows.Err()
}

func (s *Store) Get(ctx context.Context, name string) (model.BodySpec, error) {
	row := s.db.QueryRowContext(ctx, "SELECT name, radius, phase, scale, tag, color FROM bodies WHERE name = ?", name)
	b, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return b, err
}

// Create inserts a validated body.
func (s *Store) Create(ctx context.Context, b model.BodySpec) (model.BodySpec, error) {
	if err := b.Validate(); err != nil {
		return b, err
	}
	if !(b.OrbitRadius > 0) {
		return b, fmt.Errorf("body %q: radius must be positive, got %v", b.Name, b.OrbitRadius)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bodies (name, radius, phase, scale, tag, color) VALUES (?, ?, ?, ?, ?, ?)",
		b.Name, b.OrbitRadius, b.Phase, b.Scale, string(b.Tag), b.Color)
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return b, fmt.Errorf("%s: %w", b.Name, ErrExists)
	}
	if err != nil {
		return b, err
	}
	return model.NewBody(b.Name, b.OrbitRadius, b.Phase, b.Scale, b.Tag, b.Color), nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bodies WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (model.BodySpec, error) {
	var (
		b   model.BodySpec
		tag string
	)
	if err := r.Scan(&b.Name, &b.OrbitRadius, &b.Phase, &b.Scale, &tag, &b.Color); err != nil {
		return b, err
	}
	return model.NewBody(b.Name, b.OrbitRadius, b.Phase, b.Scale, model.Tag(tag), b.Color), nil
}
