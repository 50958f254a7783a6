package analysis

import (
	"io"
	"log/slog"

	"github.com/edp1096/intensity/pkg/circuit"
)

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() []BranchCurrent
}

// BranchCurrent is the solved current of one input edge. Current is signed,
// positive when it flows from Left to Right; Magnitude is what gets reported.
type BranchCurrent struct {
	Left      int
	Right     int
	Current   float64
	Magnitude float64
}

type BaseAnalysis struct {
	Circuit    *circuit.Circuit
	results    []BranchCurrent
	potentials []float64 // Dense node index -> potential
	logger     *slog.Logger
}

func NewBaseAnalysis(logger *slog.Logger) *BaseAnalysis {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BaseAnalysis{logger: logger}
}

func (a *BaseAnalysis) GetResults() []BranchCurrent {
	return a.results
}

// GetPotentials returns the solved node potentials by input node id.
func (a *BaseAnalysis) GetPotentials() map[int]float64 {
	potentials := make(map[int]float64, len(a.potentials))
	for node, v := range a.potentials {
		potentials[a.Circuit.GetNodeIDs()[node]] = v
	}
	return potentials
}
