package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"textrpg/server/internal/models"
)

// savePayload mirrors models.GameState with pointers so absent keys are detectable
type savePayload struct {
	Character        *models.Character `json:"character"`
	Inventory        *models.Ledger    `json:"inventory"`
	CurrentStoryNode string            `json:"currentStoryNode"`
}

// EncodeState serializes the full game state for a save slot
func EncodeState(state *models.GameState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return data, nil
}

// DecodeState parses a save payload. Anything that does not match the game
// state shape fails with ErrInvalidSave.
func DecodeState(data []byte) (*models.GameState, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p savePayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after save", ErrInvalidSave)
	}
	if p.Inventory == nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, errors.New("inventory is missing"))
	}

	state := &models.GameState{
		Character:        p.Character,
		Inventory:        *p.Inventory,
		CurrentStoryNode: p.CurrentStoryNode,
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	return state, nil
}
