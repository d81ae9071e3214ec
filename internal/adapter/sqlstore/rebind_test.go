package sqlstore

import "testing"

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	got := pg.rebind("SELECT * FROM leads WHERE id = ? AND version = ?")
	want := "SELECT * FROM leads WHERE id = $1 AND version = $2"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	lite := &Store{dialect: DialectSQLite}
	if q := "SELECT ?"; lite.rebind(q) != q {
		t.Error("sqlite queries must be left alone")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?, ?, ?" {
		t.Errorf("placeholders(3) = %q", got)
	}
}
