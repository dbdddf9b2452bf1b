package models

import (
	"time"
)

// StartNodeID is the node every game begins at. Traversing to it resets the inventory.
const StartNodeID = "start"

// StoryNode is one compiled node of the story graph
type StoryNode struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Text            string   `json:"text"`
	BackgroundImage string   `json:"backgroundImage,omitempty"`
	Choices         []Choice `json:"-"`
}

// Choice is an edge out of a node
type Choice struct {
	Text            string
	NextNode        string
	StatCheck       *StatCheck
	InventoryCheck  *InventoryCheck
	AppearanceCheck map[string]string
	Effects         []Effect
	InventoryEffect *InventoryEffect
}

// StatCheck requires a stat to be at least Value
type StatCheck struct {
	Stat  string
	Value int
}

// InventoryCheck requires Quantity (at least 1) of item ID
type InventoryCheck struct {
	ID       string
	Quantity int
}

// InventoryAction is add or remove
type InventoryAction string

const (
	InventoryAdd    InventoryAction = "add"
	InventoryRemove InventoryAction = "remove"
)

// InventoryEffect changes the ledger when a choice is taken
type InventoryEffect struct {
	Action InventoryAction
	Item   InventoryEntry
}

// Graph maps node id to node
type Graph map[string]*StoryNode

// Node looks up a node by id
func (g Graph) Node(id string) (*StoryNode, bool) {
	n, ok := g[id]
	return n, ok
}

// SaveRecord is the row layout used by SQL-backed save stores
type SaveRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Slot      string    `gorm:"uniqueIndex;size:128" json:"slot"`
	Payload   string    `gorm:"type:text" json:"-"` // Serialized GameState
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name across backends
func (SaveRecord) TableName() string {
	return "save_records"
}
