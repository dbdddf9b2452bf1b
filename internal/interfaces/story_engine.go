package interfaces

import "textrpg/server/internal/models"

// ChoiceStatus is a choice as the player sees it
type ChoiceStatus struct {
	Text    string // display text, with failed check annotations appended
	Enabled bool
}

// ItemUse is the outcome of using an inventory item
type ItemUse struct {
	ItemID   string
	Consumed bool   // false when the item had no effect
	Restored int    // amount actually restored after clamping
	Message  string // notice shown to the player
}

// Interpreter defines the story interpreter used by the session
type Interpreter interface {
	// ResolveNode looks up a node, failing with a NodeNotFoundError for dangling ids
	ResolveNode(id string) (*models.StoryNode, error)

	// RenderText substitutes appearance slots and the character name into node text
	RenderText(node *models.StoryNode, character *models.Character) string

	// EvaluateChoice reports whether a choice is enabled and its annotated text
	EvaluateChoice(choice models.Choice, state *models.GameState) ChoiceStatus

	// ApplyChoice mutates state for an enabled choice and resolves the next node
	ApplyChoice(choice models.Choice, state *models.GameState) (*models.StoryNode, error)

	// UseItem consumes a usable inventory item
	UseItem(state *models.GameState, itemID string) (*ItemUse, error)

	// IsUsable reports whether an item id has a use action
	IsUsable(itemID string) bool
}
