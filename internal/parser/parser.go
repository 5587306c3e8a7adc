package parser

import (
	"github.com/suderio/quantum-dungeon/internal/engine"
)

var inputParser = Build()

// Parse reads one line of text into an engine input. Errors are already
// mapped to usage guidance.
func Parse(line string) (engine.Input, error) {
	cmd, err := inputParser.ParseString("", line)
	if err != nil {
		return nil, MapError(line, err)
	}
	return cmd.Input(), nil
}
