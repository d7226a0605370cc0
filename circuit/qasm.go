package circuit

import (
	"fmt"
	"strings"
)

// ToQASM generates OpenQASM 2.0 output from the circuit. Registers keep their
// declared names; multi-controlled X with two controls is written as ccx and
// wider ones as mcx.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	for _, r := range c.qregs {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	for _, r := range c.cregs {
		fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
	}
	sb.WriteString("\n")

	for _, gate := range c.gates {
		switch gate.Type {
		case GateBarrier:
			names := make([]string, len(c.qregs))
			for i, r := range c.qregs {
				names[i] = r.Name
			}
			fmt.Fprintf(&sb, "barrier %s;\n", strings.Join(names, ", "))
		case GateMeasure:
			fmt.Fprintf(&sb, "measure %s -> %s;\n", c.qubitRef(gate.Target), c.cbitRef(gate.Cbit))
		case GateMCX:
			refs := make([]string, 0, len(gate.Controls)+1)
			for _, ctrl := range gate.Controls {
				refs = append(refs, c.qubitRef(ctrl))
			}
			refs = append(refs, c.qubitRef(gate.Target))
			name := "mcx"
			if len(gate.Controls) == 2 {
				name = "ccx"
			}
			fmt.Fprintf(&sb, "%s %s;\n", name, strings.Join(refs, ", "))
		case GateCX, GateCZ:
			fmt.Fprintf(&sb, "%s %s, %s;\n", strings.ToLower(gate.Type), c.qubitRef(gate.Control), c.qubitRef(gate.Target))
		default:
			fmt.Fprintf(&sb, "%s %s;\n", strings.ToLower(gate.Type), c.qubitRef(gate.Target))
		}
	}

	return sb.String()
}

func (c *Circuit) qubitRef(qubit int) string {
	if r, ok := c.QubitRegister(qubit); ok {
		return fmt.Sprintf("%s[%d]", r.Name, qubit-r.Offset)
	}
	return fmt.Sprintf("q[%d]", qubit)
}

func (c *Circuit) cbitRef(cbit int) string {
	if r, ok := c.CbitRegister(cbit); ok {
		return fmt.Sprintf("%s[%d]", r.Name, cbit-r.Offset)
	}
	return fmt.Sprintf("c[%d]", cbit)
}
