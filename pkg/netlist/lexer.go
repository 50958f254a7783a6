package netlist

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// EdgeLexer tokenizes one edge line: `L -- R, RES;` with an optional
// trailing `VAL V`. "--" is listed before Number so that a negative number
// never swallows the separator.
var EdgeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Dash", Pattern: `--`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Volt", Pattern: `V`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Whitespace", Pattern: `[ \t\r\f\v]+`},
})
