package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/quantum-dungeon/internal/engine"
	"github.com/suderio/quantum-dungeon/internal/grid"
	"github.com/suderio/quantum-dungeon/internal/parser"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want engine.Input
	}{
		{"move left", engine.Dir{DX: -1}},
		{"MOVE Up", engine.Dir{DY: -1}},
		{"go south", engine.Dir{DY: 1}},
		{"dir 1 0", engine.Dir{DX: 1}},
		{"dir -1 1", engine.Dir{DX: -1, DY: 1}},
		{"tile 3 -2", engine.Tile{X: 3, Y: -2}},
		{"look 4 5", engine.Vision{Pos: grid.Pos{X: 4, Y: 5}}},
		{"look 4 5 commit", engine.Vision{Pos: grid.Pos{X: 4, Y: 5}, Commit: true}},
		{"select 2", engine.SelectItem{Index: 2}},
		{"  reroll ", engine.Reroll{}},
		{"skip", engine.Skip{}},
		{"Retry", engine.Retry{}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parser.Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalFormParsesBack(t *testing.T) {
	inputs := []engine.Input{
		engine.Dir{DX: 0, DY: -1},
		engine.Tile{X: -3, Y: 7},
		engine.Vision{Pos: grid.Pos{X: 1, Y: 2}},
		engine.Vision{Pos: grid.Pos{X: 1, Y: 2}, Commit: true},
		engine.SelectItem{Index: 0},
		engine.Reroll{}, engine.Skip{}, engine.Retry{},
	}
	for _, in := range inputs {
		got, err := parser.Parse(in.String())
		require.NoError(t, err, in.String())
		assert.Equal(t, in, got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line    string
		message string
	}{
		{"move sideways", "move <left|right|up|down>"},
		{"tile 1", "tile <x> <y>"},
		{"look a b", "look <x> <y> [commit]"},
		{"select", "select <n>"},
		{"skip 3", "takes no arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := parser.Parse(tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	_, err := parser.Parse("dance")
	assert.ErrorIs(t, err, parser.ErrUnknown)
	_, err = parser.Parse("")
	assert.ErrorIs(t, err, parser.ErrUnknown)
}
