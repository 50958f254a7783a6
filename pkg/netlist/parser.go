package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// edgeLine is the grammar of a single edge line. Values are captured as raw
// tokens and range-checked by toEdge.
type edgeLine struct {
	Left       string  `@Number "--"`
	Right      string  `@Number ","`
	Resistance string  `@Number ";"`
	Voltage    *string `( @Number "V" )?`
}

// lineParser is immutable once built and safe for concurrent use.
var lineParser = participle.MustBuild[edgeLine](
	participle.Lexer(EdgeLexer),
	participle.Elide("Whitespace"),
)

const maxLineSize = 1 << 20

// Parse reads the whole stream and returns its edges in input order. Blank
// lines and lines starting with '#' are skipped. The first malformed line
// aborts parsing with a *ParseError.
func Parse(r io.Reader) ([]Edge, error) {
	var edges []Edge

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		edge, err := ParseLine(lineNo, text)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNo + 1, Reason: fmt.Sprintf("reading input: %v", err)}
	}

	if len(edges) == 0 {
		return nil, &ParseError{Reason: "no edges"}
	}

	return edges, nil
}

func ParseString(input string) ([]Edge, error) {
	return Parse(strings.NewReader(input))
}

// ParseLine parses one non-empty line. lineNo is reported in errors.
func ParseLine(lineNo int, text string) (Edge, error) {
	line, err := lineParser.ParseString("", text)
	if err != nil {
		reason := err.Error()
		var perr participle.Error
		if errors.As(err, &perr) {
			reason = fmt.Sprintf("column %d: %s", perr.Position().Column, perr.Message())
		}
		return Edge{}, &ParseError{Line: lineNo, Text: text, Reason: reason}
	}

	edge, reason := toEdge(line)
	if reason != "" {
		return Edge{}, &ParseError{Line: lineNo, Text: text, Reason: reason}
	}
	edge.Line = lineNo

	return edge, nil
}

func toEdge(line *edgeLine) (Edge, string) {
	left, reason := parseNode(line.Left)
	if reason != "" {
		return Edge{}, reason
	}
	right, reason := parseNode(line.Right)
	if reason != "" {
		return Edge{}, reason
	}

	res, err := strconv.ParseFloat(line.Resistance, 64)
	if err != nil || math.IsInf(res, 0) {
		return Edge{}, fmt.Sprintf("resistance %q is not a finite number", line.Resistance)
	}
	if res < 0 {
		return Edge{}, fmt.Sprintf("negative resistance %s", line.Resistance)
	}

	edge := Edge{Left: left, Right: right, Resistance: res}
	if line.Voltage != nil {
		v, err := strconv.ParseFloat(*line.Voltage, 64)
		if err != nil || math.IsInf(v, 0) {
			return Edge{}, fmt.Sprintf("voltage %q is not a finite number", *line.Voltage)
		}
		edge.Voltage = &v
	}

	return edge, ""
}

func parseNode(s string) (int, string) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Sprintf("node %q is not a positive integer", s)
	}
	return id, ""
}
