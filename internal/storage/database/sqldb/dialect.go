// Package sqldb stores key/value pairs in a SQL table, one table per database name.
package sqldb

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name     string
	Driver   string
	BlobType string
	// numbered placeholders ($1) instead of ?
	Numbered bool
}

var (
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", BlobType: "BLOB"}
	Postgres = Dialect{Name: "postgres", Driver: "postgres", BlobType: "BYTEA", Numbered: true}
)

// DialectByName resolves a storage backend name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case SQLite.Name:
		return SQLite, nil
	case Postgres.Name:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
	}
}

func (d Dialect) arg(i int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func (d Dialect) createTable(table string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (k %s PRIMARY KEY, v %s NOT NULL)", table, d.BlobType, d.BlobType)
}

func (d Dialect) selectOne(table string) string {
	return fmt.Sprintf("SELECT v FROM %s WHERE k = %s", table, d.arg(1))
}

func (d Dialect) upsert(table string) string {
	return fmt.Sprintf("INSERT INTO %s (k, v) VALUES (%s, %s) ON CONFLICT (k) DO UPDATE SET v = excluded.v",
		table, d.arg(1), d.arg(2))
}

func (d Dialect) deleteOne(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE k = %s", table, d.arg(1))
}

func (d Dialect) selectRange(table string, start, end []byte) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if start != nil {
		args = append(args, start)
		conds = append(conds, "k >= "+d.arg(len(args)))
	}
	if end != nil {
		args = append(args, end)
		conds = append(conds, "k < "+d.arg(len(args)))
	}
	query := "SELECT k, v FROM " + table
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query + " ORDER BY k", args
}

// tableName maps a database name onto a safe identifier.
func tableName(name string) string {
	var b strings.Builder
	b.WriteString("kv_")
	for _, c := range strings.ToLower(name) {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
