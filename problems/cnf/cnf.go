// Package cnf turns a boolean formula in conjunctive normal form into a Grover
// search problem. Each variable gets one qubit, each clause an ancilla that
// holds its disjunction, and a final "sat" qubit holds the conjunction of the
// clauses. Searching on sat amplifies the satisfying assignments.
package cnf

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"qgrover/grover"
)

// SatLabel is the label of the qubit holding the formula's value.
const SatLabel = "sat"

var (
	ErrNoVariables     = errors.New("cnf: formula has no variables")
	ErrNoClauses       = errors.New("cnf: formula has no clauses")
	ErrEmptyClause     = errors.New("cnf: empty clause")
	ErrUnknownVariable = errors.New("cnf: unknown variable")
	ErrDuplicateVar    = errors.New("cnf: duplicate variable")
	ErrReservedName    = errors.New("cnf: reserved variable name")
	ErrInvalidName     = errors.New("cnf: variable name is not an identifier")
	ErrTooManyVars     = errors.New("cnf: too many variables to enumerate")
)

// maxEnumerate bounds the classical solution count.
const maxEnumerate = 24

// Literal is a variable or its negation.
type Literal struct {
	Var     string
	Negated bool
}

// ParseLiteral reads "x" or "!x".
func ParseLiteral(s string) (Literal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "!")
	if neg {
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return Literal{}, errors.Wrap(ErrUnknownVariable, "empty literal")
	}
	return Literal{Var: s, Negated: neg}, nil
}

func (l Literal) String() string {
	if l.Negated {
		return "!" + l.Var
	}
	return l.Var
}

// Clause is a disjunction of literals.
type Clause []Literal

func (c Clause) String() string {
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// Formula is a conjunction of clauses over named variables.
type Formula struct {
	Variables []string
	Clauses   []Clause
}

func (f Formula) String() string {
	parts := make([]string, len(f.Clauses))
	for i, c := range f.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " & ")
}

// ParseClauses builds clauses from their literal spellings.
func ParseClauses(raw [][]string) ([]Clause, error) {
	out := make([]Clause, len(raw))
	for i, lits := range raw {
		for _, s := range lits {
			l, err := ParseLiteral(s)
			if err != nil {
				return nil, errors.Wrapf(err, "clause %d", i)
			}
			out[i] = append(out[i], l)
		}
	}
	return out, nil
}

// Validate checks that the formula is well formed.
func (f Formula) Validate() error {
	if len(f.Variables) == 0 {
		return ErrNoVariables
	}
	if len(f.Clauses) == 0 {
		return ErrNoClauses
	}
	known := make(map[string]bool, len(f.Variables))
	for _, v := range f.Variables {
		if !grover.ValidLabel(v) {
			return errors.Wrapf(ErrInvalidName, "%q", v)
		}
		if known[v] {
			return errors.Wrapf(ErrDuplicateVar, "%q", v)
		}
		if v == SatLabel || strings.HasPrefix(v, "clause_") {
			return errors.Wrapf(ErrReservedName, "%q", v)
		}
		known[v] = true
	}
	for i, c := range f.Clauses {
		if len(c) == 0 {
			return errors.Wrapf(ErrEmptyClause, "clause %d", i)
		}
		for _, l := range c {
			if !known[l.Var] {
				return errors.Wrapf(ErrUnknownVariable, "clause %d: %q", i, l.Var)
			}
		}
	}
	return nil
}

// Eval evaluates the formula under assignment.
func (f Formula) Eval(assignment map[string]bool) bool {
	for _, c := range f.Clauses {
		sat := false
		for _, l := range c {
			if assignment[l.Var] != l.Negated {
				sat = true
				break
			}
		}
		if !sat {
			return false
		}
	}
	return true
}

// FormatAssignment writes assignment as "a=1 b=0" in variable order.
func (f Formula) FormatAssignment(assignment map[string]bool) string {
	parts := make([]string, len(f.Variables))
	for i, v := range f.Variables {
		bit := "0"
		if assignment[v] {
			bit = "1"
		}
		parts[i] = v + "=" + bit
	}
	return strings.Join(parts, " ")
}

// Problem is the grover.Problem for a formula.
type Problem struct {
	formula   Formula
	lits      []Clause
	tautology []bool
	vars      map[string]grover.Qubit
	order     []grover.Qubit
	clauses   []grover.Qubit
	sat       grover.Qubit
}

var _ grover.Problem = (*Problem)(nil)

// New validates f and wraps it as a search problem.
func New(f Formula) (*Problem, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	lits, taut := f.normalize()
	return &Problem{formula: f, lits: lits, tautology: taut}, nil
}

// normalize merges repeated literals and flags clauses that hold a variable
// together with its negation.
func (f Formula) normalize() ([]Clause, []bool) {
	out := make([]Clause, len(f.Clauses))
	taut := make([]bool, len(f.Clauses))
	for i, c := range f.Clauses {
		seen := make(map[string]bool, len(c))
		for _, l := range c {
			if neg, ok := seen[l.Var]; ok {
				if neg != l.Negated {
					taut[i] = true
				}
				continue
			}
			seen[l.Var] = l.Negated
			out[i] = append(out[i], l)
		}
	}
	return out, taut
}

// Formula returns the wrapped formula.
func (p *Problem) Formula() Formula { return p.formula }

// Prepare declares the variables, one ancilla per clause and the sat qubit.
func (p *Problem) Prepare(r *grover.Registry) error {
	p.vars = make(map[string]grover.Qubit, len(p.formula.Variables))
	p.order = p.order[:0]
	p.clauses = p.clauses[:0]
	for _, v := range p.formula.Variables {
		q, err := r.CreateQubit(v)
		if err != nil {
			return err
		}
		p.vars[v] = q
		p.order = append(p.order, q)
	}
	for i := range p.formula.Clauses {
		q, err := r.CreateQubit(fmt.Sprintf("clause_%d", i))
		if err != nil {
			return err
		}
		p.clauses = append(p.clauses, q)
	}
	var err error
	p.sat, err = r.CreateQubit(SatLabel)
	return err
}

// BuildSearchSpace puts the variables in uniform superposition and computes
// every clause followed by their conjunction.
func (p *Problem) BuildSearchSpace(g *grover.Gates) error {
	for _, q := range p.order {
		g.H(q)
	}
	for i, c := range p.lits {
		p.clause(g, i, c)
	}
	g.And(p.clauses, p.sat)
	return g.Err()
}

// RevertSearchSpace undoes BuildSearchSpace gate by gate.
func (p *Problem) RevertSearchSpace(g *grover.Gates) error {
	g.And(p.clauses, p.sat)
	for i := len(p.lits) - 1; i >= 0; i-- {
		p.clause(g, i, p.lits[i])
	}
	for i := len(p.order) - 1; i >= 0; i-- {
		g.H(p.order[i])
	}
	return g.Err()
}

// clause computes clause_i ^= OR(literals). It is self-inverse.
func (p *Problem) clause(g *grover.Gates, i int, c Clause) {
	out := p.clauses[i]
	if p.tautology[i] {
		g.Not(out)
		return
	}
	operands := make([]grover.Qubit, len(c))
	for i, l := range c {
		operands[i] = p.vars[l.Var]
		if l.Negated {
			g.Not(operands[i])
		}
	}
	g.Or(operands, out)
	for _, l := range c {
		if l.Negated {
			g.Not(p.vars[l.Var])
		}
	}
}

// Target returns the qubit to search on. Valid after Prepare.
func (p *Problem) Target() grover.Qubit { return p.sat }

// SearchSpace is the number of variable assignments.
func (p *Problem) SearchSpace() int { return 1 << len(p.formula.Variables) }

// Solutions counts satisfying assignments by enumeration.
func (p *Problem) Solutions() (int, error) {
	n := len(p.formula.Variables)
	if n > maxEnumerate {
		return 0, errors.Wrapf(ErrTooManyVars, "%d", n)
	}
	assignment := make(map[string]bool, n)
	count := 0
	for mask := uint(0); mask < 1<<n; mask++ {
		for i, v := range p.formula.Variables {
			assignment[v] = mask&(1<<i) != 0
		}
		if p.formula.Eval(assignment) {
			count++
		}
	}
	return count, nil
}

// Iterations returns the optimal iteration count for the formula.
func (p *Problem) Iterations() (int, error) {
	sols, err := p.Solutions()
	if err != nil {
		return 0, err
	}
	return grover.OptimalIterations(p.SearchSpace(), sols), nil
}

// Assignment decodes a result row into variable values.
func (p *Problem) Assignment(values map[string]string) map[string]bool {
	out := make(map[string]bool, len(p.formula.Variables))
	for _, v := range p.formula.Variables {
		out[v] = values[v] == "1"
	}
	return out
}
