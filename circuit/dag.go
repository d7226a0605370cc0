package circuit

import "slices"

// DAGNode represents a gate in the circuit as a node in a DAG.
// Dependencies represent ordering constraints - a gate cannot execute before
// the gates that affect the same qubits earlier in the circuit.
type DAGNode struct {
	Index        int   // position of the gate in the circuit's gate list
	Gate         Gate  // the operation itself
	Step         int   // column in a compact drawing of the circuit
	Dependencies []int // indices of nodes that must execute before this one
}

// CircuitDAG represents a quantum circuit as a Directed Acyclic Graph.
// Nodes are stored in append order, which is already a topological order.
type CircuitDAG struct {
	Nodes     []*DAGNode
	NumQubits int
}

// FromCircuit creates a DAG from a Circuit. Barriers depend on the last gate
// of every qubit and every gate after a barrier depends on it.
func FromCircuit(c *Circuit) *CircuitDAG {
	dag := &CircuitDAG{
		Nodes:     make([]*DAGNode, 0, len(c.gates)),
		NumQubits: c.numQubits,
	}

	// Track the last gate on each qubit to establish dependencies
	lastGateOnQubit := make(map[int]int)
	lastBarrier := -1

	for i, gate := range c.gates {
		node := &DAGNode{Index: i, Gate: gate}

		qubitsUsed := gate.Qubits()
		if gate.Type == GateBarrier {
			qubitsUsed = make([]int, c.numQubits)
			for q := range c.numQubits {
				qubitsUsed[q] = q
			}
		}

		depSet := make(map[int]bool)
		if lastBarrier >= 0 {
			depSet[lastBarrier] = true
		}
		for _, qubit := range qubitsUsed {
			if lastID, ok := lastGateOnQubit[qubit]; ok {
				depSet[lastID] = true
			}
		}
		for depID := range depSet {
			node.Dependencies = append(node.Dependencies, depID)
		}
		slices.Sort(node.Dependencies)

		step := 0
		for _, dep := range node.Dependencies {
			step = max(step, dag.Nodes[dep].Step+1)
		}
		node.Step = step

		dag.Nodes = append(dag.Nodes, node)

		if gate.Type == GateBarrier {
			lastBarrier = i
			clear(lastGateOnQubit)
			continue
		}
		for _, qubit := range qubitsUsed {
			lastGateOnQubit[qubit] = i
		}
	}

	return dag
}

// Depth returns the length of the longest path through the DAG. Barriers
// order the gates around them but add no depth of their own.
func (dag *CircuitDAG) Depth() int {
	depth := make([]int, len(dag.Nodes))
	longest := 0
	for i, node := range dag.Nodes {
		d := 0
		for _, dep := range node.Dependencies {
			d = max(d, depth[dep])
		}
		if node.Gate.Type != GateBarrier {
			d++
		}
		depth[i] = d
		longest = max(longest, d)
	}
	return longest
}

// Depth returns the circuit depth, ignoring barriers.
func (c *Circuit) Depth() int {
	return FromCircuit(c).Depth()
}
