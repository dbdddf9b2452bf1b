package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartingCharacter(t *testing.T) {
	c := NewStartingCharacter()

	assert.Equal(t, "Galen", c.Name)
	assert.Equal(t, 100, c.Health)
	assert.Equal(t, 100, c.MaxHealth)
	assert.Equal(t, 50, c.Energy)
	assert.Equal(t, 50, c.MaxEnergy)
	assert.Equal(t, "Normal", c.Condition)
	assert.Equal(t, map[string]int{"strength": 10, "wit": 10, "charm": 10}, c.Stats)
	assert.Equal(t, "Tattered Rags", c.Appearance[SlotClothing])
	assert.Equal(t, "Smudged with Dirt", c.Appearance[SlotFace])
}

func TestResolveTarget(t *testing.T) {
	c := NewStartingCharacter()

	tests := []struct {
		key  string
		want EffectTarget
	}{
		{"health", TargetHealth},
		{"maxHealth", TargetMaxHealth},
		{"energy", TargetEnergy},
		{"maxEnergy", TargetMaxEnergy},
		{"name", TargetName},
		{"condition", TargetCondition},
		{"clothing", TargetAppearance},
		{"hair", TargetAppearance},
		{"strength", TargetStat},
		{"charm", TargetStat},
		{"luck", TargetUnknown},
		{"stats", TargetUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ResolveTarget(tt.key))
		})
	}
}

func TestApplyEffectClampsVitals(t *testing.T) {
	tests := []struct {
		name       string
		effect     Effect
		wantHealth int
		wantEnergy int
	}{
		{"damage below zero", DeltaEffect("health", TargetHealth, -250), 0, 50},
		{"heal above max", DeltaEffect("health", TargetHealth, 40), 100, 50},
		{"drain below zero", DeltaEffect("energy", TargetEnergy, -51), 100, 0},
		{"absolute above max", AbsoluteNumber("energy", TargetEnergy, 80), 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStartingCharacter()
			assert.True(t, c.ApplyEffect(tt.effect))
			assert.Equal(t, tt.wantHealth, c.Health)
			assert.Equal(t, tt.wantEnergy, c.Energy)
		})
	}
}

func TestApplyEffectMaxShrinkPullsCurrentDown(t *testing.T) {
	c := NewStartingCharacter()

	c.ApplyEffect(DeltaEffect("maxHealth", TargetMaxHealth, -20))

	assert.Equal(t, 80, c.MaxHealth)
	assert.Equal(t, 80, c.Health)
}

func TestApplyEffectRestoreMaxUsesCurrentMax(t *testing.T) {
	c := NewStartingCharacter()
	c.MaxHealth = 80
	c.Health = 10

	c.ApplyEffect(RestoreMaxEffect("health", TargetHealth))

	assert.Equal(t, 80, c.Health)
}

func TestApplyEffectHugeDeltaSaturates(t *testing.T) {
	c := NewStartingCharacter()
	c.Health = 50

	c.ApplyEffect(DeltaEffect("health", TargetHealth, math.MaxInt))
	assert.Equal(t, 100, c.Health)

	c.Stats[StatStrength] = 10
	c.ApplyEffect(DeltaEffect("strength", TargetStat, math.MaxInt))
	assert.Equal(t, math.MaxInt, c.Stat(StatStrength))

	c.ApplyEffect(DeltaEffect("health", TargetHealth, math.MinInt))
	assert.Equal(t, 0, c.Health)
}

func TestApplyEffectTextAndStats(t *testing.T) {
	c := NewStartingCharacter()

	c.ApplyEffect(AbsoluteText("condition", TargetCondition, "Poisoned"))
	c.ApplyEffect(AbsoluteText("clothing", TargetAppearance, "Fine Silk Robes"))
	c.ApplyEffect(DeltaEffect("strength", TargetStat, 5))
	c.ApplyEffect(AbsoluteNumber("wit", TargetStat, 3))

	assert.Equal(t, "Poisoned", c.Condition)
	assert.Equal(t, "Fine Silk Robes", c.Appearance[SlotClothing])
	assert.Equal(t, 15, c.Stats[StatStrength])
	assert.Equal(t, 3, c.Stats[StatWit])
}

func TestApplyEffectIgnoresUnknown(t *testing.T) {
	c := NewStartingCharacter()
	before := c.Clone()

	assert.False(t, c.ApplyEffect(Effect{Key: "luck", Target: TargetUnknown, Op: OpDelta, Delta: 3}))
	assert.False(t, c.ApplyEffect(Effect{Key: "health", Target: TargetHealth, Op: OpNone}))
	assert.False(t, c.ApplyStatEffect("luck", DeltaEffect("luck", TargetStat, 1)))

	assert.Equal(t, before, c)
}

func TestCharacterClone(t *testing.T) {
	c := NewStartingCharacter()
	cp := c.Clone()
	cp.Stats[StatCharm] = 99
	cp.Appearance[SlotHair] = "Shaved"

	require.NotNil(t, cp)
	assert.Equal(t, 10, c.Stats[StatCharm])
	assert.Equal(t, "Messy Black Hair", c.Appearance[SlotHair])
	assert.Nil(t, (*Character)(nil).Clone())
}
