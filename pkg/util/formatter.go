package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/edp1096/intensity/internal/consts"
	"github.com/edp1096/intensity/pkg/circuit"
	"github.com/edp1096/intensity/pkg/netlist"
)

type LineStyle string

const (
	Plain LineStyle = "plain" // "L R I A"
	Arrow LineStyle = "arrow" // "L -- R; I A"
)

const (
	BadInput   = "Bad input."
	BadCircuit = "Bad circuit."
	NoResult   = "Impossible to get result."
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatFixed renders value with a fixed number of decimals, then trims
// trailing zeros. Negative zero prints as "0".
func FormatFixed(value float64, precision int) string {
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

func FormatCurrent(value float64, precision int) string {
	if precision <= 0 {
		precision = consts.CurrentPrecision
	}
	return FormatFixed(value, precision)
}

func FormatResultLine(left, right int, current float64, style LineStyle, precision int) string {
	value := FormatCurrent(current, precision)
	switch style {
	case Arrow:
		return fmt.Sprintf("%d -- %d; %s %s", left, right, value, consts.CurrentUnit)
	default:
		return fmt.Sprintf("%d %d %s %s", left, right, value, consts.CurrentUnit)
	}
}

// FormatErrorReport renders err as the three-line failure report: the
// error class, the detail of the innermost known error and the closing
// line.
func FormatErrorReport(err error) []string {
	if err == nil {
		return nil
	}

	var (
		parseErr        *netlist.ParseError
		disconnectedErr *circuit.DisconnectedGraphError
		zeroErr         *circuit.ZeroResistanceError
		voltageErr      *circuit.InconsistentVoltageError
		singularErr     *circuit.SingularSystemError
	)

	head, detail := BadCircuit, err.Error()
	switch {
	case errors.As(err, &parseErr):
		head, detail = BadInput, parseErr.Error()
	case errors.As(err, &disconnectedErr):
		detail = disconnectedErr.Error()
	case errors.As(err, &zeroErr):
		detail = zeroErr.Error()
	case errors.As(err, &voltageErr):
		detail = voltageErr.Error()
	case errors.As(err, &singularErr):
		detail = singularErr.Error()
	}

	return []string{head, detail, NoResult}
}
