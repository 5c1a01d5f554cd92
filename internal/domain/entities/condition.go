package entities

// ConditionKind selects one of the health-condition lookup tables.
type ConditionKind string

const (
	ConditionKindDisease    ConditionKind = "disease"
	ConditionKindDeficiency ConditionKind = "deficiency"
	ConditionKindSurgery    ConditionKind = "surgery"
)

// Condition is a named entry in a health-condition lookup table
// (diseases, deficiencies, surgeries). Entries are created on first
// reference and shared across clients.
type Condition struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
