package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration adds a column to an existing table. Columns added after the
// baseline schema in history.go shipped go here, so databases created by
// any earlier version come up to date on open.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations lists all column migrations to apply, oldest first.
var pendingMigrations = []Migration{
	// File count per run (added with the stats command)
	{"runs", "files", "INTEGER NOT NULL DEFAULT 0"},
}

func (s *HistoryStore) runMigrations() error {
	for _, m := range pendingMigrations {
		if columnExists(s.db, m.Table, m.Column) {
			continue
		}
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		s.logger.Debug("applied migration",
			zap.String("table", m.Table),
			zap.String("column", m.Column))
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &primaryKey); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}
