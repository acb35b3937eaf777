package sidegraph

// This file defines coordinates within a side graph and their ordering.

import "fmt"

// Strand is the orientation of a side.
type Strand int8

const (
	// Forward is the 5' to 3' orientation of a sequence.
	Forward Strand = iota
	// Reverse is the reverse-complement orientation.
	Reverse
)

// String returns "+" or "-".
func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Position is an offset within a sequence. SeqID is either a server-assigned
// id or a local SideGraph id, depending on whether the value has been
// remapped yet.
type Position struct {
	SeqID int64
	Pos   int64
}

// Compare returns (negative int, 0, positive int) if (p<p1, p=p1, p>p1)
// respectively.
func (p Position) Compare(p1 Position) int {
	if p.SeqID != p1.SeqID {
		return cmpInt64(p.SeqID, p1.SeqID)
	}
	return cmpInt64(p.Pos, p1.Pos)
}

// LT returns true iff p < p1.
func (p Position) LT(p1 Position) bool {
	return p.Compare(p1) < 0
}

// LE returns true iff p <= p1.
func (p Position) LE(p1 Position) bool {
	return p.Compare(p1) <= 0
}

// GE returns true iff p >= p1.
func (p Position) GE(p1 Position) bool {
	return p.Compare(p1) >= 0
}

// GT returns true iff p > p1.
func (p Position) GT(p1 Position) bool {
	return p.Compare(p1) > 0
}

// EQ returns true iff p = p1.
func (p Position) EQ(p1 Position) bool {
	return p == p1
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.SeqID, p.Pos)
}

// Side is one end of a base together with the direction it is entered from.
type Side struct {
	Position
	Strand Strand
}

// Compare orders sides by position, then by strand.
func (s Side) Compare(s1 Side) int {
	if c := s.Position.Compare(s1.Position); c != 0 {
		return c
	}
	return int(s.Strand) - int(s1.Strand)
}

func (s Side) String() string {
	return s.Position.String() + s.Strand.String()
}

// Segment is a sub-range of a sequence traversed in one direction. Side.Pos
// is the start offset; the segment covers [Pos, Pos+Length).
type Segment struct {
	Side   Side
	Length int64
}

// End returns one past the last offset covered by the segment.
func (s Segment) End() int64 {
	return s.Side.Pos + s.Length
}

// Contains returns true iff p lies inside the segment.
func (s Segment) Contains(p Position) bool {
	return p.SeqID == s.Side.SeqID && p.Pos >= s.Side.Pos && p.Pos < s.End()
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
