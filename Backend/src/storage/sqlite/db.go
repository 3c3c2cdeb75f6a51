// Package sqlite stores products and carts as JSON documents in an embedded
// SQLite database. The columns next to each document exist only for
// filtering and ordering.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	modernc "modernc.org/sqlite"

	"github.com/ahinestrog/smartkart/Backend/src/catalog"
)

//go:embed schema.sql
var schema string

// casefold(x) applies the catalog's Unicode case folding, so name search
// agrees with the in-process stores. SQLite's lower() only folds ASCII.
func init() {
	modernc.MustRegisterDeterministicScalarFunction("casefold", 1,
		func(_ *modernc.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return catalog.Fold(v), nil
			case []byte:
				return catalog.Fold(string(v)), nil
			default:
				return v, nil
			}
		})
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		dsn = path + "?_pragma=busy_timeout=5000&_pragma=journal_mode=WAL"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection serializes writers, which makes every cart
	// read-modify-write atomic, and keeps :memory: a single database
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("path", path).Msg("sqlite store ready")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Products() *Products { return &Products{db: s.db} }

func (s *Store) Carts() *Carts { return &Carts{db: s.db} }
