package domain

import (
	"encoding/json"
	"time"
)

// ToolDescriptor is what a tool source hands out for a tool identifier.
// Kind names the statically linked factory that builds the tool; Config is passed to it verbatim.
type ToolDescriptor struct {
	ID        string          `db:"id" json:"id"`
	Kind      string          `db:"kind" json:"kind"`
	Version   string          `db:"version" json:"version,omitempty"`
	Config    json.RawMessage `db:"config" json:"config,omitempty"`
	Signature string          `db:"signature" json:"signature,omitempty"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

type ToolTable struct {
	ID        string
	Kind      string
	Version   string
	Config    string
	Signature string
	UpdatedAt string
}

func (ToolTable) TableName() string {
	return "tools"
}

func GetToolTable() ToolTable {
	return ToolTable{
		ID:        "id",
		Kind:      "kind",
		Version:   "version",
		Config:    "config",
		Signature: "signature",
		UpdatedAt: "updated_at",
	}
}
