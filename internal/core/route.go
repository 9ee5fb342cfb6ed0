package core

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"beamplan/pkg/domain"
)

// SortOption adjusts the route ordering pass.
type SortOption func(*sortConfig)

type sortConfig struct {
	startID  int
	hasStart bool
}

// StartAt makes the pass begin from the entry with the given ID instead of
// the sequence head.
func StartAt(id int) SortOption {
	return func(c *sortConfig) {
		c.startID = id
		c.hasStart = true
	}
}

// ShortSort reorders the entries to shorten write-head travel using a greedy
// nearest-neighbour walk: starting from the first entry (or a configured
// start), it repeatedly moves to the unvisited entry closest in the U/V
// plane, breaking distance ties by lowest ID. The pass is deterministic for
// a fixed input order and permutes the sequence without creating or dropping
// entries. It makes no attempt at a global tour optimum.
func (p *Positionlist) ShortSort(opts ...SortOption) (err error) {
	defer p.observe("short_sort", time.Now(), &err)

	var cfg sortConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(p.entries)
	if n < 2 {
		return nil
	}

	start := 0
	if cfg.hasStart {
		start = -1
		for i, e := range p.entries {
			if e.ID == cfg.startID {
				start = i
				break
			}
		}
		if start < 0 {
			return domain.InvalidParameterError{Param: "start", Reason: fmt.Sprintf("no entry with id %d", cfg.startID)}
		}
	}

	dists := p.distanceMatrix()
	order := make([]int, 0, n)
	visited := make([]bool, n)
	cur := start
	order = append(order, cur)
	visited[cur] = true
	for len(order) < n {
		best := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if best < 0 {
				best = j
				continue
			}
			dj, db := dists.At(cur, j), dists.At(cur, best)
			if dj < db || (dj == db && p.entries[j].ID < p.entries[best].ID) {
				best = j
			}
		}
		order = append(order, best)
		visited[best] = true
		cur = best
	}

	sorted := make([]domain.Entry, n)
	for i, idx := range order {
		sorted[i] = p.entries[idx]
	}
	if err := checkPermutation(p.entries, sorted); err != nil {
		return err
	}
	p.entries = sorted
	return nil
}

// distanceMatrix computes pairwise Euclidean distances between entry
// positions.
func (p *Positionlist) distanceMatrix() *mat.SymDense {
	n := len(p.entries)
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, p.entries[i].Position.Dist(p.entries[j].Position))
		}
	}
	return d
}

// checkPermutation verifies the reordered sequence holds exactly the same
// entry set as the input.
func checkPermutation(before, after []domain.Entry) error {
	if len(before) != len(after) {
		return fmt.Errorf("route ordering changed entry count: %d -> %d", len(before), len(after))
	}
	seen := make(map[int]int, len(before))
	for _, e := range before {
		seen[e.ID]++
	}
	for _, e := range after {
		seen[e.ID]--
		if seen[e.ID] < 0 {
			return fmt.Errorf("route ordering produced unknown entry id %d", e.ID)
		}
	}
	for id, c := range seen {
		if c != 0 {
			return fmt.Errorf("route ordering dropped entry id %d", id)
		}
	}
	return nil
}
