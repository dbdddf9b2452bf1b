package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGameStateIsValid(t *testing.T) {
	s := NewGameState()

	assert.Equal(t, StartNodeID, s.CurrentStoryNode)
	assert.NoError(t, s.Validate())
}

func TestGameStateValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *GameState)
	}{
		{"missing character", func(s *GameState) { s.Character = nil }},
		{"missing node", func(s *GameState) { s.CurrentStoryNode = "" }},
		{"health over max", func(s *GameState) { s.Character.Health = 101 }},
		{"negative energy", func(s *GameState) { s.Character.Energy = -1 }},
		{"nil stats", func(s *GameState) { s.Character.Stats = nil }},
		{"nil appearance", func(s *GameState) { s.Character.Appearance = nil }},
		{"zero quantity", func(s *GameState) { s.Inventory[0].Quantity = 0 }},
		{"blank id", func(s *GameState) { s.Inventory[0].ID = "" }},
		{"duplicate id", func(s *GameState) { s.Inventory = append(s.Inventory, s.Inventory[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGameState()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestGameStateClone(t *testing.T) {
	s := NewGameState()
	cp := s.Clone()

	cp.Character.Health = 1
	cp.Inventory[0].Quantity = 9
	cp.CurrentStoryNode = "cave"

	assert.Equal(t, 100, s.Character.Health)
	assert.Equal(t, 1, s.Inventory[0].Quantity)
	assert.Equal(t, StartNodeID, s.CurrentStoryNode)
}
