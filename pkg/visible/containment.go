package visible

// containment is the transitive closure of containment relationships over
// placements. reach[a][b] is true when placement a contains placement b,
// directly or through intermediate placements.
type containment struct {
	reach        [][]bool
	ancestors    []int
	descendants  []int
	cyclesBroken int
}

// newContainment builds the closure for s.
//
// Containment edges that would close a cycle are ignored before the closure
// is taken, so no two distinct placements ever contain each other.
func newContainment(s *Set) *containment {
	n := len(s.classifiers)
	adjacency := make([][]int, n)
	for _, r := range s.relationships {
		if r.Type != RelContainment {
			continue
		}
		for _, from := range s.classifierIdx[r.FromClassifierID] {
			for _, to := range s.classifierIdx[r.ToClassifierID] {
				if from != to && !containsInt(adjacency[from], to) {
					adjacency[from] = append(adjacency[from], to)
				}
			}
		}
	}

	c := &containment{
		ancestors:   make([]int, n),
		descendants: make([]int, n),
	}
	c.cyclesBroken = breakCycles(adjacency)
	c.reach = computeReachability(adjacency)
	for a := range c.reach {
		for b, ok := range c.reach[a] {
			if ok {
				c.descendants[a]++
				c.ancestors[b]++
			}
		}
	}
	return c
}

// breakCycles removes back edges from adjacency and returns how many were removed.
//
// It runs a depth-first search with white/gray/black colouring in placement
// order; an edge into a gray node closes a cycle.
func breakCycles(adjacency [][]int) int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(adjacency))
	var backEdges [][2]int

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, child := range adjacency[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]int{node, child})
			}
		}
		color[node] = black
	}

	for n := range adjacency {
		if color[n] == white {
			dfs(n)
		}
	}

	for _, e := range backEdges {
		adjacency[e[0]] = removeInt(adjacency[e[0]], e[1])
	}
	return len(backEdges)
}

// computeReachability returns the strict transitive closure of adjacency.
func computeReachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reachable := make([][]bool, n)
	for i := range reachable {
		reachable[i] = make([]bool, n)
	}

	var dfs func(source, current int)
	dfs = func(source, current int) {
		for _, next := range adjacency[current] {
			if reachable[source][next] {
				continue
			}
			reachable[source][next] = true
			dfs(source, next)
		}
	}

	for i := range reachable {
		dfs(i, i)
	}
	return reachable
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(xs []int, v int) []int {
	for i, x := range xs {
		if x == v {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}

// IsAncestor reports whether placement index a contains placement index b,
// directly or indirectly. A placement is never its own ancestor.
func (s *Set) IsAncestor(a, b int) bool {
	c := s.containment
	if c == nil || a < 0 || b < 0 || a >= len(c.reach) || b >= len(c.reach) {
		return false
	}
	return c.reach[a][b]
}

// AncestorCount returns how many placements contain placement index i.
func (s *Set) AncestorCount(i int) int {
	if s.containment == nil || i < 0 || i >= len(s.containment.ancestors) {
		return 0
	}
	return s.containment.ancestors[i]
}

// DescendantCount returns how many placements placement index i contains.
func (s *Set) DescendantCount(i int) int {
	if s.containment == nil || i < 0 || i >= len(s.containment.descendants) {
		return 0
	}
	return s.containment.descendants[i]
}

// ContainmentCyclesBroken returns the number of containment edges ignored
// because they closed a cycle.
func (s *Set) ContainmentCyclesBroken() int {
	if s.containment == nil {
		return 0
	}
	return s.containment.cyclesBroken
}

// Related reports whether either placement contains the other.
func (s *Set) Related(a, b int) bool { return s.IsAncestor(a, b) || s.IsAncestor(b, a) }
