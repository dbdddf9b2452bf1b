package session

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"textrpg/server/internal/models"
)

// ChoiceView is a choice as rendered for the player
type ChoiceView struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// NodeView is the rendered current node
type NodeView struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Text            string       `json:"text"`
	BackgroundImage string       `json:"backgroundImage,omitempty"`
	Choices         []ChoiceView `json:"choices"`
	Missing         bool         `json:"missing,omitempty"`
}

// CharacterSummary is the sidebar readout
type CharacterSummary struct {
	Name           string `json:"name"`
	Health         int    `json:"health"`
	MaxHealth      int    `json:"maxHealth"`
	Energy         int    `json:"energy"`
	MaxEnergy      int    `json:"maxEnergy"`
	Condition      string `json:"condition"`
	InventoryCount int    `json:"inventoryCount"`
}

// Snapshot is what observers receive after every mutation
type Snapshot struct {
	Revision  uint64           `json:"revision"`
	Node      NodeView         `json:"node"`
	Character CharacterSummary `json:"character"`
	Notice    string           `json:"notice,omitempty"`
}

// InventoryItemView is one entry on the inventory screen
type InventoryItemView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Usable      bool   `json:"usable"`
}

// InventoryView is the inventory screen
type InventoryView struct {
	Items   []InventoryItemView `json:"items"`
	Message string              `json:"message,omitempty"`
}

// LabeledValue is one line of the stats or appearance screen
type LabeledValue struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Value interface{} `json:"value"`
}

// StatsView is the character stats screen
type StatsView struct {
	Name       string         `json:"name"`
	Condition  string         `json:"condition"`
	Health     int            `json:"health"`
	MaxHealth  int            `json:"maxHealth"`
	Energy     int            `json:"energy"`
	MaxEnergy  int            `json:"maxEnergy"`
	Attributes []LabeledValue `json:"attributes"`
}

// AppearanceView is the appearance screen
type AppearanceView struct {
	Name        string         `json:"name"`
	Description []string       `json:"description"`
	Slots       []LabeledValue `json:"slots"`
}

var (
	statOrder       = []string{models.StatStrength, models.StatWit, models.StatCharm}
	appearanceOrder = []string{models.SlotClothing, models.SlotHair, models.SlotEyes, models.SlotFace}
)

const placeholderImage = "https://placehold.co/100x100/444444/e0e0e0?text=%s"

func summarize(state *models.GameState) CharacterSummary {
	c := state.Character
	return CharacterSummary{
		Name:           c.Name,
		Health:         c.Health,
		MaxHealth:      c.MaxHealth,
		Energy:         c.Energy,
		MaxEnergy:      c.MaxEnergy,
		Condition:      c.Condition,
		InventoryCount: len(state.Inventory),
	}
}

func inventoryView(state *models.GameState, usable func(string) bool) InventoryView {
	view := InventoryView{Items: make([]InventoryItemView, 0, len(state.Inventory))}
	for _, item := range state.Inventory {
		image := item.Image
		if image == "" {
			image = fmt.Sprintf(placeholderImage, strings.Join(strings.Fields(item.Name), "+"))
		}
		view.Items = append(view.Items, InventoryItemView{
			ID:          item.ID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Description: item.Description,
			Image:       image,
			Usable:      usable(item.ID),
		})
	}
	if len(view.Items) == 0 {
		view.Message = "Your inventory is empty."
	}
	return view
}

func statsView(c *models.Character) StatsView {
	title := cases.Title(language.English)
	view := StatsView{
		Name:      c.Name,
		Condition: c.Condition,
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
		Energy:    c.Energy,
		MaxEnergy: c.MaxEnergy,
	}
	for _, stat := range orderedKeys(statOrder, c.StatNames()) {
		view.Attributes = append(view.Attributes, LabeledValue{
			Key:   stat,
			Label: title.String(stat),
			Value: c.Stats[stat],
		})
	}
	return view
}

func appearanceView(c *models.Character) AppearanceView {
	title := cases.Title(language.English)
	app := c.Appearance
	view := AppearanceView{
		Name: c.Name,
		Description: []string{
			fmt.Sprintf("You are %s.", c.Name),
			fmt.Sprintf("You are wearing %s.", app[models.SlotClothing]),
			fmt.Sprintf("You have %s.", app[models.SlotHair]),
		},
	}
	for _, slot := range orderedKeys(appearanceOrder, c.AppearanceSlots()) {
		view.Slots = append(view.Slots, LabeledValue{
			Key:   slot,
			Label: title.String(slot),
			Value: app[slot],
		})
	}
	return view
}

// orderedKeys returns the known keys present in have, in their fixed order,
// followed by the remaining keys sorted.
func orderedKeys(known []string, have []string) []string {
	present := make(map[string]bool, len(have))
	for _, k := range have {
		present[k] = true
	}

	out := make([]string, 0, len(have))
	for _, k := range known {
		if present[k] {
			out = append(out, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
