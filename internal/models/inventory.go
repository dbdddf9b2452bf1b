package models

// PotionHealthID is the id of the starting health potion.
const PotionHealthID = "potion_health_1"

// InventoryEntry is one stack of items in the ledger
type InventoryEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// Ledger is the ordered inventory. Lookup is by id; order is only kept for display.
type Ledger []InventoryEntry

// StartingInventory is what a new game (and every return to start) holds.
func StartingInventory() Ledger {
	return Ledger{
		{
			ID:          PotionHealthID,
			Name:        "Small Potion",
			Quantity:    1,
			Description: "Restores 20 health.",
			Image:       "images/potion.jpg",
		},
	}
}

func (l Ledger) index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Has reports whether the ledger holds at least quantity of id.
// A quantity below 1 is treated as 1.
func (l Ledger) Has(id string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	i := l.index(id)
	return i >= 0 && l[i].Quantity >= quantity
}

// Get returns the entry for id.
func (l Ledger) Get(id string) (InventoryEntry, bool) {
	i := l.index(id)
	if i < 0 {
		return InventoryEntry{}, false
	}
	return l[i], true
}

// Add stacks item onto an existing entry with the same id or appends it.
// A quantity below 1 adds one.
func (l *Ledger) Add(item InventoryEntry) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if i := l.index(item.ID); i >= 0 {
		(*l)[i].Quantity += item.Quantity
		return
	}
	*l = append(*l, item)
}

// Remove takes quantity of id out of the ledger and drops the entry once it
// reaches zero. Removing an id that is not held is a no-op.
func (l *Ledger) Remove(id string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	i := l.index(id)
	if i < 0 {
		return
	}
	(*l)[i].Quantity -= quantity
	if (*l)[i].Quantity <= 0 {
		*l = append((*l)[:i], (*l)[i+1:]...)
	}
}

// Apply runs an inventory effect against the ledger.
func (l *Ledger) Apply(effect InventoryEffect) {
	switch effect.Action {
	case InventoryAdd:
		l.Add(effect.Item)
	case InventoryRemove:
		l.Remove(effect.Item.ID, effect.Item.Quantity)
	}
}

// Clone returns an independent copy
func (l Ledger) Clone() Ledger {
	if l == nil {
		return Ledger{}
	}
	cp := make(Ledger, len(l))
	copy(cp, l)
	return cp
}
