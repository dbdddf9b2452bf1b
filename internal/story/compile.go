package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"textrpg/server/internal/models"
)

var (
	// ErrMalformedStory is returned when the story document cannot be decoded
	// or a choice has an invalid shape.
	ErrMalformedStory = errors.New("malformed story")
	// ErrUnknownEffectTarget is returned in strict mode for effect keys that
	// match no character field, appearance slot or stat.
	ErrUnknownEffectTarget = errors.New("unknown effect target")
	// ErrInvalidEffectValue is returned in strict mode for values that cannot
	// be applied to their target.
	ErrInvalidEffectValue = errors.New("invalid effect value")
)

// EffectIssue describes an effect that compiled to a no-op
type EffectIssue struct {
	Node   string
	Choice int
	Key    string
	Err    error
}

func (i EffectIssue) Error() string {
	return fmt.Sprintf("node %q choice %d effect %q: %v", i.Node, i.Choice, i.Key, i.Err)
}

func (i EffectIssue) Unwrap() error { return i.Err }

// CompileEffect turns one authored effect into its typed form. Routing
// follows template: scalar field, then appearance slot, then stat.
func CompileEffect(key string, raw interface{}, template *models.Character) (models.Effect, error) {
	target := template.ResolveTarget(key)
	if target == models.TargetUnknown {
		return models.Effect{Key: key, Target: target}, ErrUnknownEffectTarget
	}

	if !target.Numeric() {
		text, ok := formatScalar(raw)
		if !ok {
			return models.Effect{Key: key, Target: target}, fmt.Errorf("%w: %v", ErrInvalidEffectValue, raw)
		}
		return models.AbsoluteText(key, target, text), nil
	}

	if n, isNumber, err := asInt(raw); isNumber {
		if err != nil {
			return models.Effect{Key: key, Target: target}, fmt.Errorf("%w: %v", ErrInvalidEffectValue, err)
		}
		if err := checkRange(n); err != nil {
			return models.Effect{Key: key, Target: target}, err
		}
		switch {
		case target == models.TargetHealth && n == models.StartingHealth:
			return models.RestoreMaxEffect(key, target), nil
		case target == models.TargetEnergy && n == models.StartingEnergy:
			return models.RestoreMaxEffect(key, target), nil
		}
		return models.DeltaEffect(key, target, n), nil
	}

	if s, ok := raw.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return models.Effect{Key: key, Target: target}, fmt.Errorf("%w: %q is not an integer", ErrInvalidEffectValue, s)
		}
		if err := checkRange(n); err != nil {
			return models.Effect{Key: key, Target: target}, err
		}
		return models.AbsoluteNumber(key, target, n), nil
	}

	return models.Effect{Key: key, Target: target}, fmt.Errorf("%w: %v", ErrInvalidEffectValue, raw)
}

// maxEffectValue bounds authored numbers so deltas cannot overflow a vital or stat
const maxEffectValue = math.MaxInt32

func checkRange(n int) error {
	if n > maxEffectValue || n < -maxEffectValue {
		return fmt.Errorf("%w: %d is out of range", ErrInvalidEffectValue, n)
	}
	return nil
}

// asInt reports whether raw is a number and, if so, its integer value.
func asInt(raw interface{}) (int, bool, error) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, true, err
		}
		return floatToInt(f)
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case uint64:
		if v > maxEffectValue {
			return 0, true, fmt.Errorf("%d is out of range", v)
		}
		return int(v), true, nil
	case float64:
		return floatToInt(v)
	}
	return 0, false, nil
}

func floatToInt(f float64) (int, bool, error) {
	if f != math.Trunc(f) {
		return 0, true, fmt.Errorf("%v is not a whole number", f)
	}
	if math.Abs(f) > maxEffectValue {
		return 0, true, fmt.Errorf("%v is out of range", f)
	}
	return int(f), true, nil
}

func formatScalar(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(v), true
	}
	return "", false
}

// compiler turns decoded nodes into the graph the interpreter walks
type compiler struct {
	template *models.Character
	validate *validator.Validate
	issues   []EffectIssue
}

func newCompiler(template *models.Character, validate *validator.Validate) *compiler {
	return &compiler{template: template, validate: validate}
}

func (c *compiler) compile(raw map[string]rawNode) (models.Graph, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	graph := make(models.Graph, len(raw))
	for _, id := range ids {
		node, err := c.compileNode(id, raw[id])
		if err != nil {
			return nil, err
		}
		graph[id] = node
	}
	return graph, nil
}

func (c *compiler) compileNode(id string, raw rawNode) (*models.StoryNode, error) {
	if err := c.validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: node %q: %v", ErrMalformedStory, id, err)
	}

	node := &models.StoryNode{
		ID:              id,
		Title:           raw.Title,
		Text:            raw.Text,
		BackgroundImage: raw.BackgroundImage,
		Choices:         make([]models.Choice, 0, len(raw.Choices)),
	}
	for i, rc := range raw.Choices {
		node.Choices = append(node.Choices, c.compileChoice(id, i, rc))
	}
	return node, nil
}

func (c *compiler) compileChoice(nodeID string, index int, rc rawChoice) models.Choice {
	choice := models.Choice{
		Text:     rc.Text,
		NextNode: rc.NextNode,
	}
	if rc.Check != nil {
		choice.StatCheck = &models.StatCheck{Stat: rc.Check.Stat, Value: rc.Check.Value}
	}
	if rc.CheckInventory != nil {
		choice.InventoryCheck = &models.InventoryCheck{ID: rc.CheckInventory.ID, Quantity: rc.CheckInventory.Quantity}
	}
	if len(rc.CheckAppearance) > 0 {
		choice.AppearanceCheck = make(map[string]string, len(rc.CheckAppearance))
		for slot, want := range rc.CheckAppearance {
			choice.AppearanceCheck[slot] = want
		}
	}
	if rc.InventoryEffect != nil {
		choice.InventoryEffect = &models.InventoryEffect{
			Action: models.InventoryAction(rc.InventoryEffect.Action),
			Item: models.InventoryEntry{
				ID:          rc.InventoryEffect.Item.ID,
				Name:        rc.InventoryEffect.Item.Name,
				Quantity:    rc.InventoryEffect.Item.Quantity,
				Description: rc.InventoryEffect.Item.Description,
				Image:       rc.InventoryEffect.Item.Image,
			},
		}
	}

	for _, entry := range rc.Effects {
		effect, err := CompileEffect(entry.Key, entry.Value, c.template)
		if err != nil {
			c.issues = append(c.issues, EffectIssue{Node: nodeID, Choice: index, Key: entry.Key, Err: err})
		}
		choice.Effects = append(choice.Effects, effect)
	}
	return choice
}

// issuesError joins every effect issue into one error
func issuesError(issues []EffectIssue) error {
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, 0, len(issues))
	for _, issue := range issues {
		errs = append(errs, issue)
	}
	return errors.Join(errs...)
}
