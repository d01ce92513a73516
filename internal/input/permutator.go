package input

import (
	"math"

	"github.com/mako10k/goparallel/internal/perr"
)

// Permutator produces the cartesian product of a set of Groups as a
// lazy, restartable sequence of index tuples (C3). Order is
// deterministic: the right-most group advances fastest (spec.md §4.3).
type Permutator struct {
	groups []Group
	lens   []int
	total  uint64
	pos    uint64
}

// NewPermutator validates the groups and precomputes the total
// permutation count, failing fatally on overflow (spec.md §4.3).
func NewPermutator(groups []Group) (*Permutator, error) {
	lens := make([]int, len(groups))
	var total uint64 = 1
	for i, g := range groups {
		n := g.Length()
		lens[i] = n
		if n == 0 {
			total = 0
			continue
		}
		if total == 0 {
			continue
		}
		if total > math.MaxUint64/uint64(n) {
			return nil, perr.Config("permutation count overflows u64", nil)
		}
		total *= uint64(n)
	}
	return &Permutator{groups: groups, lens: lens, total: total}, nil
}

// Total is the product of per-group lengths.
func (p *Permutator) Total() uint64 { return p.total }

// Seek restarts the sequence at permutation position (0-based).
func (p *Permutator) Seek(pos uint64) { p.pos = pos }

// Next returns the next index tuple and advances the cursor, or ok=false
// once every permutation has been produced.
func (p *Permutator) Next() (tuple []int, ok bool) {
	if p.pos >= p.total {
		return nil, false
	}
	tuple = p.Decode(p.pos)
	p.pos++
	return tuple, true
}

// Decode computes the index tuple for permutation position pos directly,
// without iterating — the property that makes the sequence restartable
// from any position (spec.md §4.3, §9).
func (p *Permutator) Decode(pos uint64) []int {
	tuple := make([]int, len(p.groups))
	rem := pos
	for i := len(p.groups) - 1; i >= 0; i-- {
		n := uint64(p.lens[i])
		if n == 0 {
			tuple[i] = 0
			continue
		}
		tuple[i] = int(rem % n)
		rem /= n
	}
	return tuple
}

// Record renders one permutation's fields in group-declaration order.
func (p *Permutator) Record(tuple []int) []string {
	var rec []string
	for i, g := range p.groups {
		rec = append(rec, g.Fields(tuple[i])...)
	}
	return rec
}
