package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer splits an input line into tokens. Keywords are matched before
// identifiers so unknown words still lex and produce a useful error.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(?:move|go|dir|tile|look|commit|select|reroll|skip|retry|left|right|up|down|north|south|east|west)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// Build creates the input parser from the struct tags in ast.go.
func Build() *participle.Parser[Command] {
	return participle.MustBuild[Command](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword"),
	)
}
