package circuit

import (
	"fmt"
	"math"

	"github.com/rhartert/sparsesets"

	"github.com/edp1096/intensity/internal/consts"
	"github.com/edp1096/intensity/pkg/device"
)

// sourceTree is a BFS spanning forest over voltage-source edges. Each tree
// is a supernode: its node potentials are the root's potential plus a fixed
// offset, so the whole supernode costs a single unknown.
type sourceTree struct {
	order     []int // Every node, each root followed by its supernode in BFS order
	root      []int
	depth     []int
	offset    []float64
	parent    []int // -1 for roots
	parentSrc []*device.VoltageSource
	unknown   []int // Unknown index of a root, 0 for ground
}

func (t *sourceTree) terminal(node int) device.Terminal {
	return device.Terminal{Index: t.unknown[t.root[node]], Offset: t.offset[node]}
}

func (c *Circuit) buildSourceTree() (*sourceTree, error) {
	n := len(c.nodeIDs)
	t := &sourceTree{
		order:     make([]int, 0, n),
		root:      make([]int, n),
		depth:     make([]int, n),
		offset:    make([]float64, n),
		parent:    make([]int, n),
		parentSrc: make([]*device.VoltageSource, n),
		unknown:   make([]int, n),
	}

	incident := make([][]int, n)
	for i, src := range c.sources {
		nodes := src.GetNodes()
		incident[nodes[0]] = append(incident[nodes[0]], i)
		if nodes[1] != nodes[0] {
			incident[nodes[1]] = append(incident[nodes[1]], i)
		}
	}

	treeChild := make([]int, len(c.sources)) // Node whose parent edge is the source, -1 off-tree
	for i := range treeChild {
		treeChild[i] = -1
	}

	visited := sparsesets.New(n)
	for start := 0; start < n; start++ {
		if visited.Contains(start) {
			continue
		}

		visited.Insert(start)
		t.root[start] = start
		t.parent[start] = -1
		t.order = append(t.order, start)

		for head := len(t.order) - 1; head < len(t.order); head++ {
			u := t.order[head]
			for _, si := range incident[u] {
				src := c.sources[si]
				nodes := src.GetNodes()

				// V(n2) = V(n1) + value
				w, offset := nodes[1], t.offset[u]+src.GetValue()
				if u != nodes[0] {
					w, offset = nodes[0], t.offset[u]-src.GetValue()
				}
				if visited.Contains(w) {
					continue
				}

				visited.Insert(w)
				t.root[w] = start
				t.depth[w] = t.depth[u] + 1
				t.offset[w] = offset
				t.parent[w] = u
				t.parentSrc[w] = src
				treeChild[si] = w
				t.order = append(t.order, w)
			}
		}
	}

	// Off-tree sources close loops: they must agree with the tree, and the
	// tree edges on their loop carry an indeterminate share of current.
	onLoop := make([]bool, n) // Parent edge of the node lies on a source loop
	for si, src := range c.sources {
		if treeChild[si] >= 0 {
			continue
		}

		nodes := src.GetNodes()
		forced := t.offset[nodes[1]] - t.offset[nodes[0]]
		scale := math.Max(1, math.Max(math.Abs(forced), math.Abs(src.GetValue())))
		if math.Abs(forced-src.GetValue()) > consts.VoltageTolerance*scale {
			return nil, &InconsistentVoltageError{Edge: c.edges[src.GetEdge()], Forced: forced}
		}

		a, b := nodes[0], nodes[1]
		for a != b {
			if t.depth[a] < t.depth[b] {
				a, b = b, a
			}
			onLoop[a] = true
			a = t.parent[a]
		}
	}

	for si, src := range c.sources {
		if src.Resistance != 0 {
			continue
		}
		if child := treeChild[si]; child < 0 || onLoop[child] {
			edge := c.edges[src.GetEdge()]
			return nil, &SingularSystemError{
				Reason: fmt.Sprintf("current through zero-resistance source %q at line %d is indeterminate in a loop of voltage sources", edge.String(), edge.Line),
			}
		}
	}

	return t, nil
}

// assignUnknowns numbers the supernodes. The supernode holding the
// lowest-indexed node of each component is that component's ground.
func (c *Circuit) assignUnknowns() []device.Terminal {
	t := c.tree
	grounded := make([]bool, c.numComponents)

	next := 0
	for _, node := range t.order {
		if t.parent[node] != -1 {
			continue
		}
		comp := c.components[node]
		if !grounded[comp] {
			grounded[comp] = true
			t.unknown[node] = 0
			continue
		}
		next++
		t.unknown[node] = next
	}
	c.numUnknowns = next

	terminals := make([]device.Terminal, len(c.nodeIDs))
	for node := range terminals {
		terminals[node] = t.terminal(node)
	}
	return terminals
}

// ResolveSourceCurrents sets the branch current of every voltage source from
// KCL. outflow[node] is the net current leaving the node through all other
// devices. Sources are peeled from the leaves of the source forest up;
// off-tree sources carry no current.
func (c *Circuit) ResolveSourceCurrents(outflow []float64) {
	out := make([]float64, len(outflow))
	copy(out, outflow)

	for _, src := range c.sources {
		src.SetCurrent(0)
	}

	t := c.tree
	for i := len(t.order) - 1; i >= 0; i-- {
		node := t.order[i]
		src := t.parentSrc[node]
		if src == nil {
			continue
		}

		leaving := -out[node] // Towards the parent, through src
		out[t.parent[node]] -= leaving
		if src.GetNodes()[0] == node {
			src.SetCurrent(leaving)
		} else {
			src.SetCurrent(-leaving)
		}
	}
}
