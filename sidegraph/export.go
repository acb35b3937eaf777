package sidegraph

import (
	"io"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/sgsync/encoding/fasta"
	"github.com/pkg/errors"
)

// Path is a named walk through the graph, e.g. an allele.
type Path struct {
	Name     string
	Segments []Segment
}

// WriteFASTA writes every sequence of g, in id order, under its name.
// bases[i] holds the bases of the sequence with id i.
func WriteFASTA(w *fasta.Writer, g *SideGraph, bases []string) error {
	if len(bases) != g.NumSequences() {
		return errors.Errorf("WriteFASTA: %d sequences but bases for %d", g.NumSequences(), len(bases))
	}
	for _, seq := range g.Sequences() {
		if int64(len(bases[seq.ID])) != seq.Length {
			return errors.Errorf("WriteFASTA: %v has %d bases", seq, len(bases[seq.ID]))
		}
		if err := w.Write(seq.Name, bases[seq.ID]); err != nil {
			return err
		}
	}
	return nil
}

// WriteJoins writes one TSV line per join: "id name1 pos1 strand1 name2 pos2
// strand2".
func WriteJoins(out io.Writer, g *SideGraph) error {
	w := tsv.NewWriter(out)
	for _, j := range g.Joins() {
		w.WriteInt64(j.ID)
		writeSide(w, g, j.Side1)
		writeSide(w, g, j.Side2)
		if err := w.EndLine(); err != nil {
			return errors.Wrap(err, "WriteJoins")
		}
	}
	return errors.Wrap(w.Flush(), "WriteJoins")
}

// WritePaths writes one TSV line per path segment: "path index name start
// strand length".
func WritePaths(out io.Writer, g *SideGraph, paths []Path) error {
	w := tsv.NewWriter(out)
	for _, p := range paths {
		for i, seg := range p.Segments {
			w.WriteString(p.Name)
			w.WriteInt64(int64(i))
			writeSide(w, g, seg.Side)
			w.WriteInt64(seg.Length)
			if err := w.EndLine(); err != nil {
				return errors.Wrap(err, "WritePaths")
			}
		}
	}
	return errors.Wrap(w.Flush(), "WritePaths")
}

func writeSide(w *tsv.Writer, g *SideGraph, s Side) {
	name := "?"
	if seq := g.GetSequence(s.SeqID); seq != nil {
		name = seq.Name
	}
	w.WriteString(name)
	w.WriteInt64(s.Pos)
	w.WriteString(s.Strand.String())
}
