package sqlstore

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// Statement is a ready-to-execute SQL statement with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Dialect isolates the SQL differences between the supported databases.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(cfg Config) (string, error)
	// Rebind rewrites ? placeholders into the dialect's form.
	Rebind(query string) string
	Quote(ident string) string
	// Upsert builds an insert that updates every non-key column on a key
	// conflict. A column list made only of key columns becomes an
	// insert-or-ignore.
	Upsert(table string, cols []domain.Column, key []string) Statement
	Schema() []string
	// TimestampText renders a stored timestamp column as YYYY-MM-DD HH:MM:SS.
	TimestampText(col string) string
}

// DialectFor returns the dialect registered for driver.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
}

func splitColumns(cols []domain.Column, key []string) (names, updates []string, args []any) {
	for _, c := range cols {
		names = append(names, c.Name)
		args = append(args, c.Value)
		if !slices.Contains(key, c.Name) {
			updates = append(updates, c.Name)
		}
	}
	return names, updates, args
}

func insertPrefix(d Dialect, table string, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Quote(table), strings.Join(quoted, ", "), placeholders)
}

// onConflict builds the ON CONFLICT form shared by SQLite and PostgreSQL.
func onConflict(d Dialect, table string, cols []domain.Column, key []string) Statement {
	names, updates, args := splitColumns(cols, key)
	quotedKey := make([]string, len(key))
	for i, k := range key {
		quotedKey[i] = d.Quote(k)
	}

	var b strings.Builder
	b.WriteString(insertPrefix(d, table, names))
	fmt.Fprintf(&b, " ON CONFLICT (%s) ", strings.Join(quotedKey, ", "))
	if len(updates) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		sets := make([]string, len(updates))
		for i, u := range updates {
			sets[i] = fmt.Sprintf("%s = excluded.%s", d.Quote(u), d.Quote(u))
		}
		b.WriteString("DO UPDATE SET " + strings.Join(sets, ", "))
	}
	return Statement{SQL: d.Rebind(b.String()), Args: args}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite3" }

func (sqliteDialect) DSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Path == "" {
		return "", errors.New("sqlite database path is empty")
	}
	return "file:" + cfg.Path + "?_busy_timeout=5000", nil
}

func (sqliteDialect) Rebind(query string) string { return query }
func (sqliteDialect) Quote(ident string) string  { return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"` }

func (d sqliteDialect) Upsert(table string, cols []domain.Column, key []string) Statement {
	return onConflict(d, table, cols, key)
}

func (sqliteDialect) TimestampText(col string) string { return col }

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
			return "", errors.Wrap(err, "invalid mysql dsn")
		}
		return cfg.DSN, nil
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	return mc.FormatDSN(), nil
}

func (mysqlDialect) Rebind(query string) string { return query }
func (mysqlDialect) Quote(ident string) string  { return "`" + strings.ReplaceAll(ident, "`", "``") + "`" }

func (d mysqlDialect) Upsert(table string, cols []domain.Column, key []string) Statement {
	names, updates, args := splitColumns(cols, key)
	var sets []string
	for _, u := range updates {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", d.Quote(u), d.Quote(u)))
	}
	if len(sets) == 0 && len(key) > 0 {
		sets = []string{fmt.Sprintf("%s = %s", d.Quote(key[0]), d.Quote(key[0]))}
	}
	return Statement{
		SQL:  insertPrefix(d, table, names) + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "),
		Args: args,
	}
}

func (mysqlDialect) TimestampText(col string) string {
	return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d %%H:%%i:%%s')", col)
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) DSN(cfg Config) (string, error) {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		dsn, err := pq.ParseURL(cfg.DSN)
		if err != nil {
			return "", errors.Wrap(err, "invalid postgres url")
		}
		return dsn, nil
	}
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	parts := []string{
		pqPair("host", cfg.Host),
		pqPair("port", strconv.Itoa(cfg.Port)),
		pqPair("dbname", cfg.Name),
		pqPair("sslmode", valueOr(cfg.SSLMode, "disable")),
	}
	if cfg.User != "" {
		parts = append(parts, pqPair("user", cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, pqPair("password", cfg.Password))
	}
	return strings.Join(parts, " "), nil
}

var pqEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// pqPair renders key='value' with the quoting lib/pq expects.
func pqPair(key, value string) string {
	return key + "='" + pqEscaper.Replace(value) + "'"
}

// Rebind numbers placeholders as $1, $2, ... Question marks inside quoted
// literals are left alone.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString("$" + strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (postgresDialect) Quote(ident string) string { return pq.QuoteIdentifier(ident) }

func (d postgresDialect) Upsert(table string, cols []domain.Column, key []string) Statement {
	return onConflict(d, table, cols, key)
}

func (postgresDialect) TimestampText(col string) string {
	return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD HH24:MI:SS')", col)
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
