package engine

import (
	"fmt"

	"go.uber.org/zap"

	"textrpg/server/internal/interfaces"
	"textrpg/server/internal/models"
)

// Consumable is the use action of an item
type Consumable struct {
	Heal int
}

// DefaultConsumables is the table of usable items
func DefaultConsumables() map[string]Consumable {
	return map[string]Consumable{
		models.PotionHealthID: {Heal: 20},
	}
}

// IsUsable reports whether the item has a use action
func (e *StoryEngine) IsUsable(itemID string) bool {
	_, ok := e.consumables[itemID]
	return ok
}

// UseItem applies a consumable. At full health nothing is consumed and the
// result only carries a notice.
func (e *StoryEngine) UseItem(state *models.GameState, itemID string) (*interfaces.ItemUse, error) {
	if !state.Inventory.Has(itemID, 1) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotHeld, itemID)
	}
	item, ok := e.consumables[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotUsable, itemID)
	}

	c := state.Character
	if c.Health >= c.MaxHealth {
		return &interfaces.ItemUse{
			ItemID:  itemID,
			Message: "Your health is already full!",
		}, nil
	}

	before := c.Health
	c.Health += item.Heal
	c.Clamp()
	restored := c.Health - before

	state.Inventory.Remove(itemID, 1)

	e.logger.Info("Item used",
		zap.String("item", itemID),
		zap.Int("restored", restored))

	return &interfaces.ItemUse{
		ItemID:   itemID,
		Consumed: true,
		Restored: restored,
		Message:  fmt.Sprintf("You drank the potion. Recovered %d HP.", restored),
	}, nil
}
