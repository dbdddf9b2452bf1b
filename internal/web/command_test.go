package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandParser(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		in  string
		typ CommandType
		arg string
	}{
		{"/choose 1", CommandChoose, "1"},
		{"  /CHOICE 0 ", CommandChoose, "0"},
		{"/use potion_health_1", CommandUse, "potion_health_1"},
		{"/save", CommandSave, ""},
		{"/load", CommandLoad, ""},
		{"/restart", CommandRestart, ""},
		{"/choose", CommandNone, ""},
		{"/use", CommandNone, ""},
		{"/dance now", CommandNone, ""},
		{"hello", CommandNone, ""},
		{"/choose 1 2", CommandNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd := p.Parse(tt.in)
			assert.Equal(t, tt.typ, cmd.Type)
			assert.Equal(t, tt.arg, cmd.Arg)
		})
	}
}
