package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerAddStacksByID(t *testing.T) {
	l := StartingInventory()

	l.Add(InventoryEntry{ID: PotionHealthID, Name: "Small Potion", Quantity: 2})
	l.Add(InventoryEntry{ID: "rusty_key", Name: "Rusty Key"})

	assert.Len(t, l, 2)
	assert.Equal(t, 3, l[0].Quantity)
	assert.Equal(t, "rusty_key", l[1].ID)
	assert.Equal(t, 1, l[1].Quantity)
}

func TestLedgerAddRemoveRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		item InventoryEntry
	}{
		{"new entry", InventoryEntry{ID: "rope", Name: "Rope", Quantity: 3}},
		{"existing entry", InventoryEntry{ID: PotionHealthID, Name: "Small Potion", Quantity: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := StartingInventory()
			want := l.Clone()

			l.Add(tt.item)
			l.Remove(tt.item.ID, tt.item.Quantity)

			assert.Equal(t, want, l)
		})
	}
}

func TestLedgerRemoveMoreThanHeldDeletesEntry(t *testing.T) {
	l := Ledger{
		{ID: "coin", Name: "Coin", Quantity: 2},
		{ID: "rope", Name: "Rope", Quantity: 1},
	}

	l.Remove("coin", 5)

	assert.False(t, l.Has("coin", 1))
	_, ok := l.Get("coin")
	assert.False(t, ok)
	assert.Equal(t, Ledger{{ID: "rope", Name: "Rope", Quantity: 1}}, l)
}

func TestLedgerRemoveMissingIsNoop(t *testing.T) {
	l := StartingInventory()
	l.Remove("ghost", 1)
	assert.Equal(t, StartingInventory(), l)
}

func TestLedgerHas(t *testing.T) {
	l := Ledger{{ID: "coin", Quantity: 3}}

	assert.True(t, l.Has("coin", 0))
	assert.True(t, l.Has("coin", 3))
	assert.False(t, l.Has("coin", 4))
	assert.False(t, l.Has("gem", 1))
}

func TestLedgerApply(t *testing.T) {
	l := Ledger{}

	l.Apply(InventoryEffect{Action: InventoryAdd, Item: InventoryEntry{ID: "torch", Name: "Torch"}})
	assert.True(t, l.Has("torch", 1))

	l.Apply(InventoryEffect{Action: InventoryRemove, Item: InventoryEntry{ID: "torch"}})
	assert.Empty(t, l)
}

func TestStartingInventory(t *testing.T) {
	l := StartingInventory()

	assert.Equal(t, Ledger{{
		ID:          "potion_health_1",
		Name:        "Small Potion",
		Quantity:    1,
		Description: "Restores 20 health.",
		Image:       "images/potion.jpg",
	}}, l)
}
