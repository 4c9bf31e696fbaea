package crawl

// Frontier manages breadth-first traversal order and deduplication.
// Containers discovered at depth d are queued for depth d+1 and only
// released once the whole current level has been drained. The visited
// set grows monotonically; nothing is ever removed during a run.
type Frontier struct {
	current []string
	next    []string
	depth   int
	visited map[string]struct{}
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		depth:   -1,
		visited: make(map[string]struct{}),
	}
}

// MarkVisited records an id and reports whether it was new. Duplicates
// are the caller's signal to drop silently.
func (f *Frontier) MarkVisited(id string) bool {
	if _, ok := f.visited[id]; ok {
		return false
	}
	f.visited[id] = struct{}{}
	return true
}

// Visited reports whether an id has been seen.
func (f *Frontier) Visited(id string) bool {
	_, ok := f.visited[id]
	return ok
}

// Enqueue adds a container to the next level.
func (f *Frontier) Enqueue(name string) {
	f.next = append(f.next, name)
}

// Advance promotes the queued level to current and returns it together
// with its depth. ok is false when the frontier is exhausted.
func (f *Frontier) Advance() (level []string, depth int, ok bool) {
	if len(f.next) == 0 {
		return nil, 0, false
	}
	f.current = f.next
	f.next = nil
	f.depth++
	return f.current, f.depth, true
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int { return len(f.visited) }
