package models

import (
	"math"
	"sort"
)

// Stat names
const (
	StatStrength = "strength"
	StatWit      = "wit"
	StatCharm    = "charm"
)

// Appearance slots
const (
	SlotClothing = "clothing"
	SlotHair     = "hair"
	SlotEyes     = "eyes"
	SlotFace     = "face"
)

// Starting vitals. RestoreMax effects are written against these values.
const (
	StartingHealth = 100
	StartingEnergy = 50
)

// Character is the player's mutable record
type Character struct {
	Name       string            `json:"name"`
	Health     int               `json:"health"`
	MaxHealth  int               `json:"maxHealth"`
	Energy     int               `json:"energy"`
	MaxEnergy  int               `json:"maxEnergy"`
	Condition  string            `json:"condition"`
	Stats      map[string]int    `json:"stats"`
	Appearance map[string]string `json:"appearance"`
}

// NewStartingCharacter returns the character every new game begins with.
func NewStartingCharacter() *Character {
	return &Character{
		Name:      "Galen",
		Health:    StartingHealth,
		MaxHealth: StartingHealth,
		Energy:    StartingEnergy,
		MaxEnergy: StartingEnergy,
		Condition: "Normal",
		Stats: map[string]int{
			StatStrength: 10,
			StatWit:      10,
			StatCharm:    10,
		},
		Appearance: map[string]string{
			SlotClothing: "Tattered Rags",
			SlotHair:     "Messy Black Hair",
			SlotEyes:     "Tired Brown Eyes",
			SlotFace:     "Smudged with Dirt",
		},
	}
}

// Clone returns a deep copy
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Stats = make(map[string]int, len(c.Stats))
	for k, v := range c.Stats {
		cp.Stats[k] = v
	}
	cp.Appearance = make(map[string]string, len(c.Appearance))
	for k, v := range c.Appearance {
		cp.Appearance[k] = v
	}
	return &cp
}

// Stat returns the named stat; a stat the character lacks reads as 0.
func (c *Character) Stat(name string) int {
	return c.Stats[name]
}

// StatNames returns the character's stat names in sorted order.
func (c *Character) StatNames() []string {
	names := make([]string, 0, len(c.Stats))
	for name := range c.Stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppearanceSlots returns the character's appearance slots in sorted order.
func (c *Character) AppearanceSlots() []string {
	slots := make([]string, 0, len(c.Appearance))
	for slot := range c.Appearance {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// ResolveTarget routes an effect key the way the interpreter does: top-level
// scalar field first, then appearance slot, then stat.
func (c *Character) ResolveTarget(key string) EffectTarget {
	switch key {
	case "health":
		return TargetHealth
	case "maxHealth":
		return TargetMaxHealth
	case "energy":
		return TargetEnergy
	case "maxEnergy":
		return TargetMaxEnergy
	case "name":
		return TargetName
	case "condition":
		return TargetCondition
	}
	if _, ok := c.Appearance[key]; ok {
		return TargetAppearance
	}
	if _, ok := c.Stats[key]; ok {
		return TargetStat
	}
	return TargetUnknown
}

// ApplyEffect applies a compiled effect and reports whether anything was
// touched. Health and energy are clamped afterwards.
func (c *Character) ApplyEffect(e Effect) bool {
	if e.Ignored() {
		return false
	}

	var applied bool
	switch e.Target {
	case TargetAppearance:
		applied = c.ApplyAppearanceEffect(e.Key, e)
	case TargetStat:
		applied = c.ApplyStatEffect(e.Key, e)
	default:
		applied = c.ApplyFieldEffect(e)
	}
	c.Clamp()
	return applied
}

// ApplyFieldEffect applies an effect to a top-level scalar field.
func (c *Character) ApplyFieldEffect(e Effect) bool {
	switch e.Target {
	case TargetHealth:
		c.Health = applyNumeric(c.Health, c.MaxHealth, e)
	case TargetMaxHealth:
		c.MaxHealth = applyNumeric(c.MaxHealth, c.MaxHealth, e)
	case TargetEnergy:
		c.Energy = applyNumeric(c.Energy, c.MaxEnergy, e)
	case TargetMaxEnergy:
		c.MaxEnergy = applyNumeric(c.MaxEnergy, c.MaxEnergy, e)
	case TargetName:
		c.Name = applyText(c.Name, e)
	case TargetCondition:
		c.Condition = applyText(c.Condition, e)
	default:
		return false
	}
	return true
}

// ApplyStatEffect applies an effect to an existing stat.
func (c *Character) ApplyStatEffect(stat string, e Effect) bool {
	cur, ok := c.Stats[stat]
	if !ok {
		return false
	}
	c.Stats[stat] = applyNumeric(cur, cur, e)
	return true
}

// ApplyAppearanceEffect replaces an existing appearance slot.
func (c *Character) ApplyAppearanceEffect(slot string, e Effect) bool {
	cur, ok := c.Appearance[slot]
	if !ok {
		return false
	}
	c.Appearance[slot] = applyText(cur, e)
	return true
}

// Clamp keeps health and energy within [0, max].
func (c *Character) Clamp() {
	if c.MaxHealth < 0 {
		c.MaxHealth = 0
	}
	if c.MaxEnergy < 0 {
		c.MaxEnergy = 0
	}
	c.Health = clamp(c.Health, 0, c.MaxHealth)
	c.Energy = clamp(c.Energy, 0, c.MaxEnergy)
}

func applyNumeric(cur, max int, e Effect) int {
	switch e.Op {
	case OpDelta:
		return addSaturating(cur, e.Delta)
	case OpAbsolute:
		return e.Number
	case OpRestoreMax:
		return max
	}
	return cur
}

func addSaturating(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	if b < 0 && a < math.MinInt-b {
		return math.MinInt
	}
	return a + b
}

func applyText(cur string, e Effect) string {
	if e.Op != OpAbsolute {
		return cur
	}
	return e.Text
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
