package sqlcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Checker prepares serialized statements against a SQLite schema to check
// that they parse and that their placeholders match the extracted
// constants.
type Checker struct {
	db *sql.DB
}

// Report describes a prepared statement.
type Report struct {
	Text         string
	Placeholders int
	Constants    int
}

// MismatchError is returned when the statement's placeholder count
// differs from the number of constants.
type MismatchError struct {
	Text         string
	Placeholders int
	Constants    int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("statement has %d placeholder(s) but %d constant(s): %s", e.Placeholders, e.Constants, e.Text)
}

// IsMismatch reports whether err is a MismatchError.
func IsMismatch(err error) bool {
	var target *MismatchError
	return errors.As(err, &target)
}

// Open opens the SQLite database at path. ":memory:" gives a private
// in-memory database that lives as long as the checker.
func Open(path string) (*Checker, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection, so an in-memory schema is visible to every call.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return &Checker{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database.
func (c *Checker) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Exec runs schema statements.
func (c *Checker) Exec(ctx context.Context, ddl string) error {
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Verify prepares text without executing it and compares the number of
// parameters SQLite sees with len(constants).
func (c *Checker) Verify(ctx context.Context, text string, constants []any) (*Report, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var placeholders int
	err = conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		stmt, err := sc.Prepare(text)
		if err != nil {
			return err
		}
		defer stmt.Close()
		placeholders = stmt.NumInput()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	report := &Report{Text: text, Placeholders: placeholders, Constants: len(constants)}
	if placeholders != len(constants) {
		return report, &MismatchError{Text: text, Placeholders: placeholders, Constants: len(constants)}
	}
	return report, nil
}
