// JSONL loading for Attach and Reload.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column lists.
// The order matters: tables with foreign keys must load after their referenced tables.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{enumsJSONL, "enums", []string{"enum_id", "name", "created_at"}},
	{enumMembersJSONL, "enum_members", []string{"member_id", "enum_id", "name", "ordinal"}},
	{definitionsJSONL, "definitions", []string{
		"definition_id", "section", "name", "value_type", "value", "default_value",
		"constraint_kind", "constraint_values", "description", "ordinal", "created_at", "updated_at",
	}},
}

// loadAllJSONL replaces the contents of every table with the records read
// from DataDir. Loading is transactional: all tables load or none change.
// Malformed lines and records that violate the schema are skipped and
// counted in a warning. Unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string, log zerolog.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disabling foreign keys for load: %w", err)
	}

	for i := len(jsonlTableMapping) - 1; i >= 0; i-- {
		table := jsonlTableMapping[i].table
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, mapping := range jsonlTableMapping {
		path := filepath.Join(dataDir, mapping.file)
		records, err := readJSONL(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}

		skipped, err := insertRecords(tx, mapping.table, mapping.columns, records)
		if err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		if skipped > 0 {
			log.Warn().
				Str("file", mapping.file).
				Int("skipped", skipped).
				Int("records", len(records)).
				Msg("skipped invalid records")
		}
	}

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("re-enabling foreign keys: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into a SQLite table and returns
// how many were skipped. Only columns listed in the mapping are extracted.
// Arrays and objects are re-serialized as JSON text.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	skipped := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			skipped++
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok {
				args[i] = nil
				continue
			}
			switch v := val.(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(b)
			default:
				args[i] = val
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			skipped++
			continue
		}
	}
	return skipped, nil
}
