package storage

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/uoft-courses/internal/course"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect struct {
	// Name is the configuration name, "sqlite" or "mysql".
	Name string
	// Driver is the database/sql driver name.
	Driver string

	insertIgnore string
	quote        func(string) string
	keyType      string
	textType     string
	termType     string
}

var (
	// SQLite stores everything as TEXT.
	SQLite = Dialect{
		Name:         "sqlite",
		Driver:       "sqlite",
		insertIgnore: "INSERT OR IGNORE",
		quote:        func(s string) string { return `"` + s + `"` },
		keyType:      "TEXT",
		textType:     "TEXT",
		termType:     "CHAR(1)",
	}

	// MySQL needs a bounded key column.
	MySQL = Dialect{
		Name:         "mysql",
		Driver:       "mysql",
		insertIgnore: "INSERT IGNORE",
		quote:        func(s string) string { return "`" + s + "`" },
		keyType:      "VARCHAR(16)",
		textType:     "TEXT",
		termType:     "CHAR(1)",
	}
)

// DialectFor looks a dialect up by configuration name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", name)
	}
}

// MySQLDSN builds a MySQL data source name.
func MySQLDSN(host string, port int, user, password, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", host, port)
	cfg.DBName = name
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func (d Dialect) createTable(table string, columns []string) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		typ := d.textType
		switch col {
		case course.FieldCode:
			typ = d.keyType + " PRIMARY KEY"
		case course.FieldTerm:
			if table == course.TimetableTable {
				typ = d.termType
			}
		}
		defs = append(defs, d.quote(col)+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.quote(table), strings.Join(defs, ", "))
}

func (d Dialect) insertKey(table string) string {
	return fmt.Sprintf("%s INTO %s (%s) VALUES (?)", d.insertIgnore, d.quote(table), d.quote(course.FieldCode))
}

func (d Dialect) update(table string, fields []course.Field) string {
	sets := make([]string, len(fields))
	for i, f := range fields {
		sets[i] = d.quote(f.Name) + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", d.quote(table), strings.Join(sets, ", "), d.quote(course.FieldCode))
}

func (d Dialect) selectAll(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = d.quote(col)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), d.quote(table))
}
