package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"textrpg/server/internal/interfaces"
	"textrpg/server/internal/models"
)

var (
	// ErrNodeNotFound matches every NodeNotFoundError
	ErrNodeNotFound = errors.New("node not found")
	// ErrItemNotHeld is returned when using an item the player does not carry
	ErrItemNotHeld = errors.New("item not held")
	// ErrItemNotUsable is returned for items without a use action
	ErrItemNotUsable = errors.New("item not usable")
)

// NodeNotFoundError reports a dangling node reference
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("Node %q not found.", e.ID)
}

func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}

// StoryEngine interprets a compiled story graph against a game state
type StoryEngine struct {
	graph       models.Graph
	consumables map[string]Consumable
	logger      *zap.Logger
}

var _ interfaces.Interpreter = (*StoryEngine)(nil)

// NewStoryEngine creates a new story engine
func NewStoryEngine(graph models.Graph, logger *zap.Logger) *StoryEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoryEngine{
		graph:       graph,
		consumables: DefaultConsumables(),
		logger:      logger,
	}
}

// ResolveNode returns the node for id or a *NodeNotFoundError
func (e *StoryEngine) ResolveNode(id string) (*models.StoryNode, error) {
	node, ok := e.graph.Node(id)
	if !ok {
		return nil, &NodeNotFoundError{ID: id}
	}
	return node, nil
}

// RecoveryNode is shown in place of a dangling node. Its only choice leads
// back to the start node through the usual reset path.
func RecoveryNode(id string) *models.StoryNode {
	return &models.StoryNode{
		ID:    id,
		Title: "Error",
		Text:  (&NodeNotFoundError{ID: id}).Error(),
		Choices: []models.Choice{
			{Text: "Go to Start", NextNode: models.StartNodeID},
		},
	}
}

// RenderText replaces {slot} placeholders with appearance values, then {name}.
func (e *StoryEngine) RenderText(node *models.StoryNode, character *models.Character) string {
	if node == nil {
		return ""
	}
	text := node.Text
	for _, slot := range character.AppearanceSlots() {
		text = strings.ReplaceAll(text, "{"+slot+"}", character.Appearance[slot])
	}
	return strings.ReplaceAll(text, "{name}", character.Name)
}

// EvaluateChoice runs every check on the choice. Failed checks disable it and
// append their annotation to the text.
func (e *StoryEngine) EvaluateChoice(choice models.Choice, state *models.GameState) interfaces.ChoiceStatus {
	status := interfaces.ChoiceStatus{Text: choice.Text, Enabled: true}
	c := state.Character

	if check := choice.StatCheck; check != nil {
		if cur := c.Stat(check.Stat); cur < check.Value {
			status.Enabled = false
			status.Text += fmt.Sprintf(" (Failed: %d/%d %s)", cur, check.Value, check.Stat)
		}
	}

	if check := choice.InventoryCheck; check != nil {
		if !state.Inventory.Has(check.ID, check.Quantity) {
			status.Enabled = false
			status.Text += fmt.Sprintf(" (Requires: %s)", strings.ReplaceAll(check.ID, "_", " "))
		}
	}

	if len(choice.AppearanceCheck) > 0 {
		slots := make([]string, 0, len(choice.AppearanceCheck))
		for slot := range choice.AppearanceCheck {
			slots = append(slots, slot)
		}
		sort.Strings(slots)
		for _, slot := range slots {
			want := choice.AppearanceCheck[slot]
			if c.Appearance[slot] != want {
				status.Enabled = false
				status.Text += fmt.Sprintf(" (Requires: %s)", want)
			}
		}
	}

	return status
}

// ApplyChoice mutates state for a taken choice: inventory reset when heading
// to start, then effects, then the inventory effect, then the node advance.
// State is mutated even when the target node is dangling; the returned error
// is then a *NodeNotFoundError.
func (e *StoryEngine) ApplyChoice(choice models.Choice, state *models.GameState) (*models.StoryNode, error) {
	if choice.NextNode == models.StartNodeID {
		state.Inventory = models.StartingInventory()
	}

	for _, effect := range choice.Effects {
		if !state.Character.ApplyEffect(effect) {
			e.logger.Debug("Effect skipped", zap.String("key", effect.Key))
		}
	}

	if choice.InventoryEffect != nil {
		state.Inventory.Apply(*choice.InventoryEffect)
	}

	from := state.CurrentStoryNode
	state.CurrentStoryNode = choice.NextNode

	node, err := e.ResolveNode(choice.NextNode)
	if err != nil {
		e.logger.Warn("Dangling node reference",
			zap.String("from", from),
			zap.String("to", choice.NextNode))
		return nil, err
	}

	e.logger.Info("Choice applied",
		zap.String("from", from),
		zap.String("to", choice.NextNode))
	return node, nil
}
