package circuit

import (
	"github.com/rhartert/sparsesets"
)

// labelComponents runs a BFS from every unvisited node in index order.
// Component 0 always holds dense node 0, and each component is labelled by
// the order in which its lowest-indexed node is met.
func (c *Circuit) labelComponents() ([]int, int) {
	n := len(c.nodeIDs)
	labels := make([]int, n)
	visited := sparsesets.New(n)
	queue := make([]int, 0, n)

	count := 0
	for start := 0; start < n; start++ {
		if visited.Contains(start) {
			continue
		}

		visited.Insert(start)
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			labels[u] = count

			for _, inc := range c.adjacency[u] {
				w := c.otherEnd(inc.Edge, u)
				if !visited.Contains(w) {
					visited.Insert(w)
					queue = append(queue, w)
				}
			}
		}
		count++
	}

	return labels, count
}

// otherEnd returns the dense index of the end of edge opposite to node.
// Self-loops return node itself.
func (c *Circuit) otherEnd(edge, node int) int {
	e := c.edges[edge]
	l, r := c.nodeMap[e.Left], c.nodeMap[e.Right]
	if l == node {
		return r
	}
	return l
}
