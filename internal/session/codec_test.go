package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textrpg/server/internal/models"
)

func TestEncodeDecodeState(t *testing.T) {
	state := models.NewGameState()
	state.CurrentStoryNode = "cave"
	state.Character.Stats["strength"] = 14

	data, err := EncodeState(state)
	require.NoError(t, err)

	got, err := DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestDecodeStateRejectsBadShapes(t *testing.T) {
	valid := `"character":{"name":"Galen","health":10,"maxHealth":100,"energy":5,"maxEnergy":50,"condition":"Normal","stats":{},"appearance":{}}`

	tests := []struct {
		name string
		data string
	}{
		{"not json", `textRPG`},
		{"array", `[]`},
		{"unknown field", `{` + valid + `,"inventory":[],"currentStoryNode":"start","gold":5}`},
		{"missing inventory", `{` + valid + `,"currentStoryNode":"start"}`},
		{"missing node", `{` + valid + `,"inventory":[]}`},
		{"missing character", `{"inventory":[],"currentStoryNode":"start"}`},
		{"health over max", `{"character":{"name":"G","health":120,"maxHealth":100,"energy":5,"maxEnergy":50,"stats":{},"appearance":{}},"inventory":[],"currentStoryNode":"start"}`},
		{"zero quantity", `{` + valid + `,"inventory":[{"id":"x","name":"X","quantity":0,"description":""}],"currentStoryNode":"start"}`},
		{"trailing data", `{` + valid + `,"inventory":[],"currentStoryNode":"start"} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidSave)
		})
	}
}

func TestDecodeStateAcceptsEmptyInventory(t *testing.T) {
	data := `{"character":{"name":"Galen","health":10,"maxHealth":100,"energy":5,"maxEnergy":50,"condition":"Normal","stats":{"strength":3},"appearance":{"hair":"Bald"}},"inventory":[],"currentStoryNode":"somewhere"}`

	state, err := DecodeState([]byte(data))
	require.NoError(t, err)
	assert.Empty(t, state.Inventory)
	assert.Equal(t, "somewhere", state.CurrentStoryNode)
}
