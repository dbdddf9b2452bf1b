package story

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"
)

// rawNode is a node as it appears in story.json / story.yaml
type rawNode struct {
	Title           string      `json:"title" yaml:"title"`
	Text            string      `json:"text" yaml:"text"`
	BackgroundImage string      `json:"backgroundImage" yaml:"backgroundImage"`
	Choices         []rawChoice `json:"choices" yaml:"choices" validate:"dive"`
}

type rawChoice struct {
	Text            string              `json:"text" yaml:"text"`
	NextNode        string              `json:"nextNode" yaml:"nextNode" validate:"required"`
	Check           *rawStatCheck       `json:"check" yaml:"check"`
	CheckInventory  *rawInventoryCheck  `json:"checkInventory" yaml:"checkInventory"`
	CheckAppearance map[string]string   `json:"checkAppearance" yaml:"checkAppearance"`
	Effects         effectList          `json:"effects" yaml:"effects"`
	InventoryEffect *rawInventoryEffect `json:"inventoryEffect" yaml:"inventoryEffect"`
}

type rawStatCheck struct {
	Stat  string `json:"stat" yaml:"stat" validate:"required"`
	Value int    `json:"value" yaml:"value"`
}

type rawInventoryCheck struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Quantity int    `json:"quantity" yaml:"quantity" validate:"gte=0"`
}

type rawInventoryEffect struct {
	Action string  `json:"action" yaml:"action" validate:"oneof=add remove"`
	Item   rawItem `json:"item" yaml:"item"`
}

type rawItem struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name"`
	Quantity    int    `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image" yaml:"image"`
}

// effectEntry is one key/value pair of an effects object
type effectEntry struct {
	Key   string
	Value interface{}
}

// effectList keeps the authored key order of an effects object, since
// effects on a vital and its max interact through clamping.
type effectList []effectEntry

func (l *effectList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("effects must be an object, got %v", tok)
	}

	var out effectList
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("effects key must be a string, got %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("effects[%s]: %w", key, err)
		}
		out = append(out, effectEntry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*l = out
	return nil
}

func (l *effectList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ms yaml.MapSlice
	if err := unmarshal(&ms); err != nil {
		return err
	}
	out := make(effectList, 0, len(ms))
	for _, item := range ms {
		out = append(out, effectEntry{Key: fmt.Sprint(item.Key), Value: item.Value})
	}
	*l = out
	return nil
}
