package netlist

import (
	"fmt"
	"strconv"
)

// Edge is one parsed input line: a resistor between two nodes, optionally
// carrying a forced voltage across it.
type Edge struct {
	Left       int      // Node id as written, > 0
	Right      int      // Node id as written, > 0
	Resistance float64  // Ohm, >= 0
	Voltage    *float64 // Volt, nil when the line has no source clause
	Line       int      // 1-based input line
}

func (e Edge) HasVoltage() bool {
	return e.Voltage != nil
}

// VoltageValue returns the forced voltage, or 0 when there is none.
func (e Edge) VoltageValue() float64 {
	if e.Voltage == nil {
		return 0
	}
	return *e.Voltage
}

// String renders the edge back in input syntax.
func (e Edge) String() string {
	s := fmt.Sprintf("%d -- %d, %s;", e.Left, e.Right, formatNumber(e.Resistance))
	if e.Voltage != nil {
		s += fmt.Sprintf(" %sV", formatNumber(*e.Voltage))
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseError reports a line that does not match the edge grammar or holds
// an out-of-range value.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error: %s", e.Reason)
	}
	return fmt.Sprintf("parse error at line %d (%q): %s", e.Line, e.Text, e.Reason)
}
