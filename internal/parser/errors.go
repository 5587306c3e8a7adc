package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned for lines that are not an input at all.
var ErrUnknown = errors.New("unknown input")

// MapError takes a raw input and a participle error and returns a
// human-friendly usage message for the command the line started with.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("%w: empty line", ErrUnknown)
	}

	switch strings.ToLower(strings.Fields(input)[0]) {
	case "move", "go":
		return fmt.Errorf("the command move must be: move <left|right|up|down>")
	case "dir":
		return fmt.Errorf("the command dir must be: dir <dx> <dy>")
	case "tile":
		return fmt.Errorf("the command tile must be: tile <x> <y>")
	case "look":
		return fmt.Errorf("the command look must be: look <x> <y> [commit]")
	case "select":
		return fmt.Errorf("the command select must be: select <n>")
	case "reroll", "skip", "retry":
		return fmt.Errorf("the command %s takes no arguments", strings.ToLower(strings.Fields(input)[0]))
	}
	return fmt.Errorf("%w: %q", ErrUnknown, input)
}
