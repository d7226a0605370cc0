package grover

import "math"

// OptimalIterations returns the number of Grover iterations that brings the
// marked amplitude closest to one for a search space of the given size with
// the given number of solutions: floor(pi/4 * sqrt(space/solutions)). It is
// at least 1 when a solution exists and 0 when none does or when every
// candidate is a solution.
func OptimalIterations(space, solutions int) int {
	if space <= 0 || solutions <= 0 || solutions >= space {
		return 0
	}
	n := int(math.Pi / 4 * math.Sqrt(float64(space)/float64(solutions)))
	return max(n, 1)
}
