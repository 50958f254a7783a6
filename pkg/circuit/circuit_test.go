package circuit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/intensity/pkg/device"
	"github.com/edp1096/intensity/pkg/matrix"
	"github.com/edp1096/intensity/pkg/netlist"
)

func mustParse(t *testing.T, input string) []netlist.Edge {
	t.Helper()
	edges, err := netlist.ParseString(input)
	require.NoError(t, err)
	return edges
}

func buildCircuit(t *testing.T, input string, policy DisconnectedPolicy, model SourceModel) (*Circuit, error) {
	t.Helper()
	ckt := New("test")
	require.NoError(t, ckt.AssignNodeMap(mustParse(t, input)))
	if err := ckt.CheckConnectivity(policy); err != nil {
		return ckt, err
	}
	return ckt, ckt.SetupDevices(model)
}

func TestAssignNodeMap(t *testing.T) {
	ckt := New("test")
	require.NoError(t, ckt.AssignNodeMap(mustParse(t, "7 -- 3, 1;\n3 -- 9, 2;\n9 -- 7, 3;\n3 -- 3, 4;\n")))

	if diff := cmp.Diff(map[int]int{7: 0, 3: 1, 9: 2}, ckt.GetNodeMap()); diff != "" {
		t.Errorf("node map mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{7, 3, 9}, ckt.GetNodeIDs()); diff != "" {
		t.Errorf("node ids mismatch (-want +got):\n%s", diff)
	}

	wantAdjacency := [][]Incidence{
		{{Edge: 0, Sign: 1}, {Edge: 2, Sign: -1}},
		{{Edge: 0, Sign: -1}, {Edge: 1, Sign: 1}, {Edge: 3, Sign: 1}, {Edge: 3, Sign: -1}},
		{{Edge: 1, Sign: -1}, {Edge: 2, Sign: 1}},
	}
	if diff := cmp.Diff(wantAdjacency, ckt.GetAdjacency()); diff != "" {
		t.Errorf("adjacency mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 3, ckt.GetNumNodes())
	assert.Len(t, ckt.GetEdges(), 4)
}

func TestAssignNodeMapEmpty(t *testing.T) {
	require.Error(t, New("test").AssignNodeMap(nil))
}

func TestComponents(t *testing.T) {
	ckt := New("test")
	require.NoError(t, ckt.AssignNodeMap(mustParse(t, "1 -- 2, 1;\n3 -- 4, 1;\n2 -- 5, 1;\n6 -- 6, 1;\n")))

	labels, count := ckt.GetComponents()
	assert.Equal(t, 3, count)
	if diff := cmp.Diff([]int{0, 0, 1, 1, 0, 2}, labels); diff != "" {
		t.Errorf("component labels mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckConnectivity(t *testing.T) {
	input := "1 -- 2, 1.0;\n3 -- 4, 1.0;\n"

	_, err := buildCircuit(t, input, Reject, Clamp)
	var derr *DisconnectedGraphError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, &DisconnectedGraphError{Node: 3, Reference: 1, Components: 2}, derr)

	ckt, err := buildCircuit(t, input, Float, Clamp)
	require.NoError(t, err)
	assert.Equal(t, 2, ckt.GetNumUnknowns())

	ckt, err = buildCircuit(t, "1 -- 2, 1;\n2 -- 3, 1;\n", Reject, Clamp)
	require.NoError(t, err)
	assert.Equal(t, 2, ckt.GetNumUnknowns())

	require.Error(t, ckt.CheckConnectivity("ignore"))
}

func TestSetupDevicesErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		model  SourceModel
		target any
	}{
		{
			name:   "short without source",
			input:  "1 -- 2, 0.0;",
			target: new(*ZeroResistanceError),
		},
		{
			name:   "short inside a larger network",
			input:  "1 -- 2, 1;\n2 -- 3, 0;\n3 -- 1, 1; 4V",
			target: new(*ZeroResistanceError),
		},
		{
			name:   "parallel sources disagree",
			input:  "1 -- 2, 1; 5V\n1 -- 2, 1; 6V",
			target: new(*InconsistentVoltageError),
		},
		{
			name:   "reversed parallel source disagrees",
			input:  "1 -- 2, 1; 5V\n2 -- 1, 1; 5V",
			target: new(*InconsistentVoltageError),
		},
		{
			name:   "transitive loop disagrees",
			input:  "1 -- 2, 1; 5V\n2 -- 3, 1; 5V\n1 -- 3, 1; 9V",
			target: new(*InconsistentVoltageError),
		},
		{
			name:   "self loop source",
			input:  "1 -- 2, 1;\n2 -- 2, 1; 3V",
			target: new(*InconsistentVoltageError),
		},
		{
			name:   "ideal sources in parallel",
			input:  "1 -- 2, 0; 5V\n1 -- 2, 0; 5V\n2 -- 1, 1;",
			target: new(*SingularSystemError),
		},
		{
			name:   "ideal source on a consistent loop",
			input:  "1 -- 2, 0; 5V\n2 -- 3, 1; 5V\n1 -- 3, 2; 10V",
			target: new(*SingularSystemError),
		},
		{
			name:   "series model keeps the short check",
			input:  "1 -- 2, 0;\n2 -- 1, 1; 3V",
			model:  Series,
			target: new(*ZeroResistanceError),
		},
		{
			name:   "series model ideal sources disagree",
			input:  "1 -- 2, 0; 5V\n1 -- 2, 0; 4V\n1 -- 2, 3; 1V",
			model:  Series,
			target: new(*InconsistentVoltageError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildCircuit(t, tt.input, Reject, tt.model)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %T: %v", err, err)
		})
	}
}

func TestInconsistentVoltageReportsEdge(t *testing.T) {
	_, err := buildCircuit(t, "1 -- 2, 1; 5V\n2 -- 3, 1; 5V\n3 -- 1, 1; 9V", Reject, Clamp)

	var verr *InconsistentVoltageError
	require.True(t, errors.As(err, &verr))
	// BFS from node 1 takes both of its sources into the tree, so the
	// 2 -- 3 source is the one that closes the loop.
	assert.Equal(t, 2, verr.Edge.Line)
	assert.InDelta(t, -14.0, verr.Forced, 1e-12)
	assert.Contains(t, verr.Error(), "line 2")
}

func TestSetupDevicesAcceptsConsistentLoops(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		unknowns int
	}{
		{
			name:     "parallel sources with resistance",
			input:    "1 -- 2, 1; 5V\n1 -- 2, 2; 5V\n2 -- 3, 1;",
			unknowns: 1,
		},
		{
			name:     "consistent triangle",
			input:    "1 -- 2, 1; 5V\n2 -- 3, 1; 5V\n1 -- 3, 1; 10V\n3 -- 4, 1;\n4 -- 1, 1;",
			unknowns: 1,
		},
		{
			name:     "ideal bridge next to a source loop",
			input:    "1 -- 2, 1; 5V\n1 -- 2, 2; 5V\n2 -- 3, 0; 1V\n3 -- 1, 4;",
			unknowns: 0,
		},
		{
			name:     "zero volt self loop with resistance",
			input:    "1 -- 2, 1;\n2 -- 2, 1; 0V",
			unknowns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ckt, err := buildCircuit(t, tt.input, Reject, Clamp)
			require.NoError(t, err)
			assert.Equal(t, tt.unknowns, ckt.GetNumUnknowns())
		})
	}
}

func TestSetupDevicesPerEdge(t *testing.T) {
	input := "1 -- 2, 2;\n2 -- 3, 4; 6V\n3 -- 1, 0; 1V\n"

	ckt, err := buildCircuit(t, input, Reject, Clamp)
	require.NoError(t, err)

	var kinds []string
	for _, dev := range ckt.GetDevices() {
		kinds = append(kinds, dev.GetName())
	}
	assert.Equal(t, []string{"R1", "V2", "R2", "V3"}, kinds)
	assert.IsType(t, &device.Resistor{}, ckt.GetEdgeDevice(0))
	assert.IsType(t, &device.Resistor{}, ckt.GetEdgeDevice(1))
	assert.IsType(t, &device.VoltageSource{}, ckt.GetEdgeDevice(2))

	ckt, err = buildCircuit(t, input, Reject, Series)
	require.NoError(t, err)

	kinds = kinds[:0]
	for _, dev := range ckt.GetDevices() {
		kinds = append(kinds, dev.GetName())
	}
	assert.Equal(t, []string{"R1", "R2", "V3"}, kinds)
	battery, ok := ckt.GetEdgeDevice(1).(*device.Resistor)
	require.True(t, ok)
	assert.Equal(t, 6.0, battery.EMF)
}

func TestNodePotentialsFromOffsets(t *testing.T) {
	ckt, err := buildCircuit(t, "1 -- 2, 10.0; 5.0V", Reject, Clamp)
	require.NoError(t, err)
	assert.Zero(t, ckt.GetNumUnknowns())

	require.NoError(t, ckt.CreateMatrix(matrix.Dense, 1e-9))
	assert.Nil(t, ckt.GetMatrix())
	require.NoError(t, ckt.Stamp())

	assert.Equal(t, []float64{0, 5}, ckt.NodePotentials([]float64{0}))
}

func TestStampAndSolveDivider(t *testing.T) {
	// 12V across 1 -- 3, split by 2 ohm and 4 ohm through node 2.
	ckt, err := buildCircuit(t, "1 -- 3, 0; 12V\n1 -- 2, 2;\n2 -- 3, 4;\n", Reject, Clamp)
	require.NoError(t, err)
	require.Equal(t, 1, ckt.GetNumUnknowns())

	require.NoError(t, ckt.CreateMatrix(matrix.Dense, 1e-9))
	defer ckt.Destroy()
	require.NoError(t, ckt.Stamp())
	require.NoError(t, ckt.GetMatrix().Solve())

	potentials := ckt.NodePotentials(ckt.GetMatrix().Solution())
	assert.InDelta(t, 0.0, potentials[0], 1e-12)
	assert.InDelta(t, 12.0, potentials[1], 1e-12) // node 3
	assert.InDelta(t, 4.0, potentials[2], 1e-12)  // node 2
}

func TestResolveSourceCurrents(t *testing.T) {
	// Chain of ideal sources 1 -> 2 -> 3, 2 A drawn out of node 3 and
	// returned into node 1 by the rest of the network.
	ckt, err := buildCircuit(t, "1 -- 2, 0; 1V\n3 -- 2, 0; 1V\n", Reject, Clamp)
	require.NoError(t, err)

	ckt.ResolveSourceCurrents([]float64{-2, 0, 2})

	first := ckt.GetEdgeDevice(0).(*device.VoltageSource)
	second := ckt.GetEdgeDevice(1).(*device.VoltageSource)
	assert.InDelta(t, 2.0, first.GetCurrent(), 1e-12)
	assert.InDelta(t, -2.0, second.GetCurrent(), 1e-12)
}
