// Table dumps written back to the JSONL files.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
)

// persistLocked rewrites every JSONL file from the current tables. The caller
// must hold b.mu.
func (b *Backend) persistLocked() error {
	enums, err := b.dumpEnums()
	if err != nil {
		return err
	}
	members, err := b.dumpEnumMembers()
	if err != nil {
		return err
	}
	defs, err := b.dumpDefinitions()
	if err != nil {
		return err
	}

	if err := writeRecords(filepath.Join(b.dataDir, enumsJSONL), enums); err != nil {
		return err
	}
	if err := writeRecords(filepath.Join(b.dataDir, enumMembersJSONL), members); err != nil {
		return err
	}
	if err := writeRecords(filepath.Join(b.dataDir, definitionsJSONL), defs); err != nil {
		return err
	}
	b.log.Debug().Int("definitions", len(defs)).Int("enums", len(enums)).Msg("persisted")
	return nil
}

func writeRecords[T any](path string, records []T) error {
	lines, err := marshalRecords(records)
	if err != nil {
		return err
	}
	if err := writeJSONL(path, lines); err != nil {
		return fmt.Errorf("persisting %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (b *Backend) dumpEnums() ([]enumJSON, error) {
	rows, err := b.db.Query(`SELECT enum_id, name, created_at FROM enums ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("dumping enums: %w", err)
	}
	defer rows.Close()

	var out []enumJSON
	for rows.Next() {
		var e enumJSON
		if err := rows.Scan(&e.EnumID, &e.Name, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning enum: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (b *Backend) dumpEnumMembers() ([]enumMemberJSON, error) {
	rows, err := b.db.Query(`SELECT member_id, enum_id, name, ordinal FROM enum_members ORDER BY enum_id, ordinal`)
	if err != nil {
		return nil, fmt.Errorf("dumping enum members: %w", err)
	}
	defer rows.Close()

	var out []enumMemberJSON
	for rows.Next() {
		var m enumMemberJSON
		if err := rows.Scan(&m.MemberID, &m.EnumID, &m.Name, &m.Ordinal); err != nil {
			return nil, fmt.Errorf("scanning enum member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (b *Backend) dumpDefinitions() ([]definitionJSON, error) {
	rows, err := b.db.Query(`SELECT definition_id, section, name, value_type, value, default_value,
       constraint_kind, constraint_values, description, ordinal, created_at, updated_at
FROM definitions ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("dumping definitions: %w", err)
	}
	defer rows.Close()

	var out []definitionJSON
	for rows.Next() {
		var (
			d                     definitionJSON
			def, kind, vals, desc sql.NullString
		)
		if err := rows.Scan(
			&d.DefinitionID, &d.Section, &d.Name, &d.ValueType, &d.Value, &def,
			&kind, &vals, &desc, &d.Ordinal, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning definition: %w", err)
		}
		if def.Valid {
			d.DefaultValue = &def.String
		}
		d.ConstraintKind = kind.String
		if d.ConstraintKind == "" {
			d.ConstraintKind = constraintNone
		}
		if vals.Valid {
			if err := json.Unmarshal([]byte(vals.String), &d.ConstraintValues); err != nil {
				return nil, fmt.Errorf("decoding constraint of %s.%s: %w", d.Section, d.Name, err)
			}
		}
		d.Description = desc.String
		out = append(out, d)
	}
	return out, rows.Err()
}
