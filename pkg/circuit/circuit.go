package circuit

import (
	"fmt"

	"github.com/edp1096/intensity/pkg/device"
	"github.com/edp1096/intensity/pkg/matrix"
	"github.com/edp1096/intensity/pkg/netlist"
)

type DisconnectedPolicy string

const (
	Reject DisconnectedPolicy = "reject" // More than one component is an error
	Float  DisconnectedPolicy = "float"  // Every component gets its own ground
)

type SourceModel string

const (
	Clamp  SourceModel = "clamp"  // A source fixes the potential difference across its edge
	Series SourceModel = "series" // A source is an EMF in series with its edge resistance
)

// Incidence is one end of an edge seen from a node.
type Incidence struct {
	Edge int // Index into the edge list
	Sign int // +1 when the node is the edge's Left, -1 when it is its Right
}

type Circuit struct {
	name          string
	edges         []netlist.Edge
	nodeMap       map[int]int // Input id -> dense index
	nodeIDs       []int       // Dense index -> input id
	adjacency     [][]Incidence
	components    []int // Dense index -> component label
	numComponents int
	devices       []device.Device
	edgeDevices   []device.Device // Device whose current is reported for each edge
	sources       []*device.VoltageSource
	tree          *sourceTree
	numUnknowns   int
	matrix        matrix.System
}

func New(name string) *Circuit {
	return &Circuit{
		name:    name,
		nodeMap: make(map[int]int),
	}
}

// AssignNodeMap gives every node id a dense index in first-occurrence order
// and builds the adjacency and component labels.
func (c *Circuit) AssignNodeMap(edges []netlist.Edge) error {
	if len(edges) == 0 {
		return fmt.Errorf("circuit %s: no edges", c.name)
	}

	c.edges = edges
	for _, edge := range edges {
		for _, id := range []int{edge.Left, edge.Right} {
			if _, exists := c.nodeMap[id]; !exists {
				c.nodeMap[id] = len(c.nodeIDs)
				c.nodeIDs = append(c.nodeIDs, id)
			}
		}
	}

	c.adjacency = make([][]Incidence, len(c.nodeIDs))
	for i, edge := range edges {
		l, r := c.nodeMap[edge.Left], c.nodeMap[edge.Right]
		c.adjacency[l] = append(c.adjacency[l], Incidence{Edge: i, Sign: 1})
		c.adjacency[r] = append(c.adjacency[r], Incidence{Edge: i, Sign: -1})
	}

	c.components, c.numComponents = c.labelComponents()
	return nil
}

// CheckConnectivity applies the disconnected-network policy.
func (c *Circuit) CheckConnectivity(policy DisconnectedPolicy) error {
	switch policy {
	case Reject, "":
		if c.numComponents <= 1 {
			return nil
		}
		for node, comp := range c.components {
			if comp != c.components[0] {
				return &DisconnectedGraphError{
					Node:       c.nodeIDs[node],
					Reference:  c.nodeIDs[0],
					Components: c.numComponents,
				}
			}
		}
		return nil
	case Float:
		return nil
	default:
		return fmt.Errorf("circuit %s: unknown disconnected policy %q", c.name, policy)
	}
}

// SetupDevices turns every edge into devices, folds voltage sources into
// terminal offsets and assigns the unknowns of the linear system.
func (c *Circuit) SetupDevices(model SourceModel) error {
	if model == "" {
		model = Clamp
	}
	if model != Clamp && model != Series {
		return fmt.Errorf("circuit %s: unknown source model %q", c.name, model)
	}

	c.edgeDevices = make([]device.Device, len(c.edges))
	for i, edge := range c.edges {
		nodes := []int{c.nodeMap[edge.Left], c.nodeMap[edge.Right]}
		r, v := edge.Resistance, edge.VoltageValue()

		switch {
		case !edge.HasVoltage() && r == 0:
			return &ZeroResistanceError{Edge: edge}

		case !edge.HasVoltage():
			res := device.NewResistor(fmt.Sprintf("R%d", i+1), i, nodes, r)
			c.devices = append(c.devices, res)
			c.edgeDevices[i] = res

		case model == Series && r > 0:
			res := device.NewBattery(fmt.Sprintf("R%d", i+1), i, nodes, r, v)
			c.devices = append(c.devices, res)
			c.edgeDevices[i] = res

		default:
			src := device.NewDCVoltageSource(fmt.Sprintf("V%d", i+1), i, nodes, v, r)
			c.devices = append(c.devices, src)
			c.sources = append(c.sources, src)
			c.edgeDevices[i] = src
			if r > 0 {
				// Clamp: the edge resistance sits across the forced voltage
				res := device.NewResistor(fmt.Sprintf("R%d", i+1), i, nodes, r)
				c.devices = append(c.devices, res)
				c.edgeDevices[i] = res
			}
		}
	}

	tree, err := c.buildSourceTree()
	if err != nil {
		return err
	}
	c.tree = tree

	terminals := c.assignUnknowns()
	for _, dev := range c.devices {
		nodes := dev.GetNodes()
		dev.SetTerminals([]device.Terminal{terminals[nodes[0]], terminals[nodes[1]]})
	}

	return nil
}

// CreateMatrix allocates the linear system. A circuit whose potentials are
// all fixed by ground and sources has no unknowns and gets no matrix.
func (c *Circuit) CreateMatrix(backend matrix.Backend, eps float64) error {
	if c.numUnknowns == 0 {
		return nil
	}

	mat, err := matrix.New(backend, c.numUnknowns, eps)
	if err != nil {
		return fmt.Errorf("creating matrix: %w", err)
	}
	c.matrix = mat
	return nil
}

func (c *Circuit) Stamp() error {
	if c.matrix == nil {
		return nil
	}

	for _, dev := range c.devices {
		if err := dev.Stamp(c.matrix); err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

// NodePotentials maps a solution vector (1-based, index 0 ground) to the
// potential of every dense node.
func (c *Circuit) NodePotentials(solution []float64) []float64 {
	potentials := make([]float64, len(c.nodeIDs))
	for node := range potentials {
		potentials[node] = c.tree.terminal(node).Potential(solution)
	}
	return potentials
}

func (c *Circuit) GetMatrix() matrix.System {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[int]int {
	return c.nodeMap
}

func (c *Circuit) GetNodeIDs() []int {
	return c.nodeIDs
}

func (c *Circuit) GetEdges() []netlist.Edge {
	return c.edges
}

func (c *Circuit) GetAdjacency() [][]Incidence {
	return c.adjacency
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

// GetEdgeDevice returns the device whose current is reported for edge i.
func (c *Circuit) GetEdgeDevice(i int) device.Device {
	return c.edgeDevices[i]
}

func (c *Circuit) GetComponents() ([]int, int) {
	return c.components, c.numComponents
}

func (c *Circuit) GetNumNodes() int {
	return len(c.nodeIDs)
}

func (c *Circuit) GetNumUnknowns() int {
	return c.numUnknowns
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
		c.matrix = nil
	}
}
