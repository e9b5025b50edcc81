// Package sqlite implements the SQLite store for knobs.
// JSONL files in DataDir are the source of truth; SQLite is the query engine
// rebuilt from them on every Attach.
package sqlite

// Schema DDL for all tables.
const (
	createEnums = `CREATE TABLE enums (
    enum_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL
);`

	createEnumMembers = `CREATE TABLE enum_members (
    member_id TEXT PRIMARY KEY,
    enum_id TEXT NOT NULL,
    name TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    FOREIGN KEY (enum_id) REFERENCES enums(enum_id)
);`

	createDefinitions = `CREATE TABLE definitions (
    definition_id TEXT PRIMARY KEY,
    section TEXT NOT NULL,
    name TEXT NOT NULL,
    value_type TEXT NOT NULL,
    value TEXT NOT NULL,
    default_value TEXT,
    constraint_kind TEXT,
    constraint_values TEXT,
    description TEXT,
    ordinal INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxEnumMembersEnum    = `CREATE UNIQUE INDEX idx_enum_members_enum ON enum_members(enum_id, name);`
	idxDefinitionsKey     = `CREATE UNIQUE INDEX idx_definitions_key ON definitions(section, name);`
	idxDefinitionsOrdinal = `CREATE INDEX idx_definitions_ordinal ON definitions(ordinal);`
	idxDefinitionsType    = `CREATE INDEX idx_definitions_type ON definitions(value_type);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createEnums,
	createEnumMembers,
	createDefinitions,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEnumMembersEnum,
	idxDefinitionsKey,
	idxDefinitionsOrdinal,
	idxDefinitionsType,
}
