package migrations

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x String) ENGINE = Memory;

-- second
INSERT INTO a VALUES ('semi;colon'), ('it''s; fine');
SELECT 1 -- trailing comment; not a split
;
`
	stmts, err := SplitStatements(sql)
	if err != nil {
		t.Fatalf("SplitStatements: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x String) ENGINE = Memory" {
		t.Errorf("stmt 0 = %q", stmts[0])
	}
	if !strings.Contains(stmts[1], "'semi;colon'") || !strings.Contains(stmts[1], "'it''s; fine'") {
		t.Errorf("string literals mangled: %q", stmts[1])
	}
	if stmts[2] != "SELECT 1" {
		t.Errorf("stmt 2 = %q", stmts[2])
	}
}

func TestSplitStatements_Unterminated(t *testing.T) {
	_, err := SplitStatements("SELECT 'oops;")
	if !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("expected ErrUnterminatedString, got %v", err)
	}
}

func TestLoad_OrdersAndSkipsEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.sql":  {Data: []byte("SELECT 2;")},
		"m/001_a.sql":  {Data: []byte("SELECT 1;")},
		"m/003_c.sql":  {Data: []byte("  \n")},
		"m/README.txt": {Data: []byte("ignored")},
	}
	files, err := load(fsys, "m")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 2 || files[0].name != "001_a.sql" || files[1].name != "002_b.sql" {
		t.Fatalf("unexpected files: %+v", files)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	if err != nil || len(pg) == 0 {
		t.Fatalf("postgres migrations: %v (%d files)", err, len(pg))
	}

	ch, err := load(ClickhouseFS, "clickhouse")
	if err != nil || len(ch) == 0 {
		t.Fatalf("clickhouse migrations: %v (%d files)", err, len(ch))
	}
	for _, m := range ch {
		stmts, err := SplitStatements(m.sql)
		if err != nil {
			t.Fatalf("%s: %v", m.name, err)
		}
		for _, s := range stmts {
			if !strings.Contains(s, "IF NOT EXISTS") {
				t.Errorf("%s: statement is not idempotent: %q", m.name, s)
			}
		}
	}
}
