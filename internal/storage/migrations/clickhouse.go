package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chstore "solana-token-scanner/internal/storage/clickhouse"
)

// ErrUnterminatedString is returned when a migration has an unclosed quote.
var ErrUnterminatedString = errors.New("unterminated string literal")

// RunClickhouseMigrations creates the snapshot database named in dsn, applies
// the embedded schema and returns a connection to that database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := chstore.DatabaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, err
	}
	// Split everything up front so a bad file fails before any DDL runs.
	plan := make([][]string, len(files))
	for i, m := range files {
		if plan[i], err = SplitStatements(m.sql); err != nil {
			return nil, fmt.Errorf("clickhouse migration %s: %w", m.name, err)
		}
	}

	if err := createDatabase(ctx, dsn, dbName); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, err
	}
	for i, m := range files {
		// The native protocol takes one statement per Exec.
		for _, stmt := range plan[i] {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply clickhouse migration %s: %w", m.name, err)
			}
		}
	}
	return conn, nil
}

func createDatabase(ctx context.Context, dsn, dbName string) error {
	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return err
	}
	defer admin.Close()

	if err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(dbName)); err != nil {
		return fmt.Errorf("create clickhouse database %s: %w", dbName, err)
	}
	return nil
}

// SplitStatements splits sql on semicolons outside single-quoted strings,
// dropping "--" line comments and empty statements.
func SplitStatements(sql string) ([]string, error) {
	var (
		stmts    []string
		cur      strings.Builder
		inString bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case inString:
			cur.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
					continue
				}
				inString = false
			}
		case ch == '\'':
			inString = true
			cur.WriteByte(ch)
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case ch == ';':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if inString {
		return nil, ErrUnterminatedString
	}
	flush()
	return stmts, nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
