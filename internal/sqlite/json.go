// JSON record structures that mirror the data file format.
package sqlite

// Data file names in DataDir.
const (
	enumsJSONL       = "enums.jsonl"
	enumMembersJSONL = "enum_members.jsonl"
	definitionsJSONL = "definitions.jsonl"
)

// enumJSON represents an enum type in enums.jsonl.
type enumJSON struct {
	EnumID    string `json:"enum_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// enumMemberJSON represents one enumerator in enum_members.jsonl.
type enumMemberJSON struct {
	MemberID string `json:"member_id"`
	EnumID   string `json:"enum_id"`
	Name     string `json:"name"`
	Ordinal  int    `json:"ordinal"`
}

// definitionJSON represents a configuration key in definitions.jsonl.
// Values are stored in their text form; value_type names the descriptor
// that parses them.
type definitionJSON struct {
	DefinitionID     string   `json:"definition_id"`
	Section          string   `json:"section"`
	Name             string   `json:"name"`
	ValueType        string   `json:"value_type"`
	Value            string   `json:"value"`
	DefaultValue     *string  `json:"default_value"`
	ConstraintKind   string   `json:"constraint_kind"`
	ConstraintValues []string `json:"constraint_values,omitempty"`
	Description      string   `json:"description,omitempty"`
	Ordinal          int      `json:"ordinal"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}
