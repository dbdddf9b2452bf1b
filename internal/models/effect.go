package models

import "fmt"

// EffectTarget is the closed set of character fields an effect can touch.
type EffectTarget int

const (
	TargetUnknown EffectTarget = iota
	TargetHealth
	TargetMaxHealth
	TargetEnergy
	TargetMaxEnergy
	TargetName
	TargetCondition
	TargetAppearance
	TargetStat
)

var effectTargetNames = map[EffectTarget]string{
	TargetUnknown:    "unknown",
	TargetHealth:     "health",
	TargetMaxHealth:  "maxHealth",
	TargetEnergy:     "energy",
	TargetMaxEnergy:  "maxEnergy",
	TargetName:       "name",
	TargetCondition:  "condition",
	TargetAppearance: "appearance",
	TargetStat:       "stat",
}

func (t EffectTarget) String() string {
	if name, ok := effectTargetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// Numeric reports whether the target holds an integer value.
func (t EffectTarget) Numeric() bool {
	switch t {
	case TargetHealth, TargetMaxHealth, TargetEnergy, TargetMaxEnergy, TargetStat:
		return true
	}
	return false
}

// EffectOp says how an effect value is combined with the current value.
type EffectOp int

const (
	// OpNone marks an effect the interpreter skips (unknown key or unusable value).
	OpNone EffectOp = iota
	OpDelta
	OpAbsolute
	// OpRestoreMax sets a vital to its maximum. Story files express it as
	// health: 100 or energy: 50.
	OpRestoreMax
)

// Effect is one compiled entry of a choice's effect bundle.
type Effect struct {
	Key    string
	Target EffectTarget
	Op     EffectOp

	Delta  int    // OpDelta
	Number int    // OpAbsolute on numeric targets
	Text   string // OpAbsolute on text targets
}

// DeltaEffect builds an additive effect.
func DeltaEffect(key string, target EffectTarget, delta int) Effect {
	return Effect{Key: key, Target: target, Op: OpDelta, Delta: delta}
}

// AbsoluteNumber builds an assignment of an integer value.
func AbsoluteNumber(key string, target EffectTarget, n int) Effect {
	return Effect{Key: key, Target: target, Op: OpAbsolute, Number: n}
}

// AbsoluteText builds an assignment of a string value.
func AbsoluteText(key string, target EffectTarget, text string) Effect {
	return Effect{Key: key, Target: target, Op: OpAbsolute, Text: text}
}

// RestoreMaxEffect builds a full restore of health or energy.
func RestoreMaxEffect(key string, target EffectTarget) Effect {
	return Effect{Key: key, Target: target, Op: OpRestoreMax}
}

// Ignored reports whether the interpreter will skip this effect.
func (e Effect) Ignored() bool {
	return e.Target == TargetUnknown || e.Op == OpNone
}
