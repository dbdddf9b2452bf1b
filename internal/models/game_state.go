package models

import (
	"errors"
	"fmt"
)

// GameState is everything a save file holds
type GameState struct {
	Character        *Character `json:"character"`
	Inventory        Ledger     `json:"inventory"`
	CurrentStoryNode string     `json:"currentStoryNode"`
}

// NewGameState returns the state of a fresh game at the start node
func NewGameState() *GameState {
	return &GameState{
		Character:        NewStartingCharacter(),
		Inventory:        StartingInventory(),
		CurrentStoryNode: StartNodeID,
	}
}

// Clone returns a deep copy
func (s *GameState) Clone() *GameState {
	return &GameState{
		Character:        s.Character.Clone(),
		Inventory:        s.Inventory.Clone(),
		CurrentStoryNode: s.CurrentStoryNode,
	}
}

// Validate checks the invariants a loaded state must satisfy.
func (s *GameState) Validate() error {
	if s.Character == nil {
		return errors.New("character is missing")
	}
	if s.CurrentStoryNode == "" {
		return errors.New("currentStoryNode is missing")
	}

	c := s.Character
	if c.MaxHealth < 0 || c.Health < 0 || c.Health > c.MaxHealth {
		return fmt.Errorf("health %d/%d out of range", c.Health, c.MaxHealth)
	}
	if c.MaxEnergy < 0 || c.Energy < 0 || c.Energy > c.MaxEnergy {
		return fmt.Errorf("energy %d/%d out of range", c.Energy, c.MaxEnergy)
	}
	if c.Stats == nil {
		return errors.New("stats are missing")
	}
	if c.Appearance == nil {
		return errors.New("appearance is missing")
	}

	seen := make(map[string]bool, len(s.Inventory))
	for _, item := range s.Inventory {
		if item.ID == "" {
			return errors.New("inventory entry without id")
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("inventory entry %q has quantity %d", item.ID, item.Quantity)
		}
		if seen[item.ID] {
			return fmt.Errorf("inventory entry %q appears twice", item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}
