// Package sidegraph is an in-memory side graph: sequences are nodes, and
// joins connect sides (oriented sequence ends) of those sequences. The graph
// assigns dense ids in insertion order to both sequences and joins, so ids
// always lie in [0, NumSequences()) and [0, NumJoins()).
//
// A SideGraph is not thread-safe.
package sidegraph

import (
	"fmt"
	"math"

	"github.com/biogo/store/llrb"
)

// Sequence is a node of the graph.
type Sequence struct {
	ID     int64
	Length int64
	Name   string
}

func (s *Sequence) String() string {
	return fmt.Sprintf("%s(id=%d, len=%d)", s.Name, s.ID, s.Length)
}

// Join is an edge between two sides.
type Join struct {
	ID    int64
	Side1 Side
	Side2 Side
}

func (j *Join) String() string {
	return fmt.Sprintf("join(id=%d, %v, %v)", j.ID, j.Side1, j.Side2)
}

// joinKey indexes a join under one of its sides.
type joinKey struct {
	side Side
	id   int64
	join *Join
}

// Compare implements llrb.Comparable.
func (k joinKey) Compare(c llrb.Comparable) int {
	k2 := c.(joinKey)
	if diff := k.side.Compare(k2.side); diff != 0 {
		return diff
	}
	return cmpInt64(k.id, k2.id)
}

// SideGraph holds sequences and joins.
type SideGraph struct {
	seqs   []*Sequence
	joins  []*Join
	bySide llrb.Tree // joinKey for both sides of every join.
}

// New creates an empty graph.
func New() *SideGraph {
	return &SideGraph{}
}

// AddSequence takes ownership of seq, assigns it the next sequence id, and
// returns it.
func (g *SideGraph) AddSequence(seq *Sequence) *Sequence {
	seq.ID = int64(len(g.seqs))
	g.seqs = append(g.seqs, seq)
	return seq
}

// GetSequence returns the sequence with the given id, or nil.
func (g *SideGraph) GetSequence(id int64) *Sequence {
	if id < 0 || id >= int64(len(g.seqs)) {
		return nil
	}
	return g.seqs[id]
}

// NumSequences returns the number of sequences in the graph.
func (g *SideGraph) NumSequences() int { return len(g.seqs) }

// Sequences returns all sequences in id order. The caller must not modify the
// slice.
func (g *SideGraph) Sequences() []*Sequence { return g.seqs }

// AddJoin takes ownership of j and inserts it. The sides are stored in
// canonical order (Side1 <= Side2). If an equal join already exists, the
// existing join is returned and j is dropped.
//
// Both sides must reference sequences in the graph; AddJoin panics otherwise.
func (g *SideGraph) AddJoin(j *Join) *Join {
	for _, s := range [2]Side{j.Side1, j.Side2} {
		if seq := g.GetSequence(s.SeqID); seq == nil || s.Pos < 0 || s.Pos >= seq.Length {
			panic(fmt.Sprintf("AddJoin %v: side %v is not within the graph", j, s))
		}
	}
	if j.Side2.Compare(j.Side1) < 0 {
		j.Side1, j.Side2 = j.Side2, j.Side1
	}
	if existing := g.findJoin(j.Side1, j.Side2); existing != nil {
		return existing
	}
	j.ID = int64(len(g.joins))
	g.joins = append(g.joins, j)
	g.bySide.Insert(joinKey{side: j.Side1, id: j.ID, join: j})
	if j.Side2 != j.Side1 {
		g.bySide.Insert(joinKey{side: j.Side2, id: j.ID, join: j})
	}
	return j
}

// GetJoin returns the join with the given id, or nil.
func (g *SideGraph) GetJoin(id int64) *Join {
	if id < 0 || id >= int64(len(g.joins)) {
		return nil
	}
	return g.joins[id]
}

// NumJoins returns the number of joins in the graph.
func (g *SideGraph) NumJoins() int { return len(g.joins) }

// Joins returns all joins in id order. The caller must not modify the slice.
func (g *SideGraph) Joins() []*Join { return g.joins }

// JoinsAt returns the joins incident to side, in id order.
func (g *SideGraph) JoinsAt(side Side) []*Join {
	var joins []*Join
	g.bySide.DoRange(func(c llrb.Comparable) bool {
		joins = append(joins, c.(joinKey).join)
		return false
	}, joinKey{side: side, id: math.MinInt64}, joinKey{side: side, id: math.MaxInt64})
	return joins
}

func (g *SideGraph) findJoin(side1, side2 Side) *Join {
	for _, j := range g.JoinsAt(side1) {
		if j.Side1 == side1 && j.Side2 == side2 {
			return j
		}
	}
	return nil
}
