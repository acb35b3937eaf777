// Package fasta writes FASTA files and their samtools-style .fai indexes.
// See http://www.htslib.org/doc/faidx.html.  For example:
//
// >Seq7
// ACGTAC
// GAGGAC
// GCG
//
// Sequence names must not contain whitespace.
package fasta

import (
	"io"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// DefaultLineWidth is the number of bases per line used by NewWriter when a
// non-positive width is requested.
const DefaultLineWidth = 60

var newline = []byte{'\n'}

type indexEntry struct {
	name      string
	length    int64
	offset    int64
	lineBases int64
	lineWidth int64
}

// Writer is a FASTA file writer. It records, for each sequence written, the
// information needed to produce a .fai index.
type Writer struct {
	w         io.Writer
	lineWidth int
	off       int64
	index     []indexEntry
	err       error
}

// NewWriter constructs a FASTA writer that wraps bases at lineWidth bases per
// line.
func NewWriter(w io.Writer, lineWidth int) *Writer {
	if lineWidth <= 0 {
		lineWidth = DefaultLineWidth
	}
	return &Writer{w: w, lineWidth: lineWidth}
}

// Write writes one named sequence. An error is returned if this or any
// previous write failed.
func (w *Writer) Write(name, seq string) error {
	if w.err != nil {
		return w.err
	}
	if name == "" || strings.ContainsAny(name, " \t\n") {
		w.err = errors.Errorf("fasta: invalid sequence name %q", name)
		return w.err
	}
	w.writeln(">" + name)
	ent := indexEntry{
		name:      name,
		length:    int64(len(seq)),
		offset:    w.off,
		lineBases: int64(w.lineWidth),
		lineWidth: int64(w.lineWidth) + 1,
	}
	if len(seq) < w.lineWidth {
		ent.lineBases = int64(len(seq))
		ent.lineWidth = ent.lineBases + 1
	}
	for len(seq) > 0 {
		n := w.lineWidth
		if n > len(seq) {
			n = len(seq)
		}
		w.writeln(seq[:n])
		seq = seq[n:]
	}
	if w.err == nil {
		w.index = append(w.index, ent)
	}
	return w.err
}

// WriteIndex writes the .fai index for every sequence written so far.
func (w *Writer) WriteIndex(out io.Writer) error {
	if w.err != nil {
		return w.err
	}
	tsvOut := tsv.NewWriter(out)
	for _, ent := range w.index {
		tsvOut.WriteString(ent.name)
		tsvOut.WriteInt64(ent.length)
		tsvOut.WriteInt64(ent.offset)
		tsvOut.WriteInt64(ent.lineBases)
		tsvOut.WriteInt64(ent.lineWidth)
		if err := tsvOut.EndLine(); err != nil {
			return errors.Wrap(err, "fasta: writing index")
		}
	}
	return errors.Wrap(tsvOut.Flush(), "fasta: writing index")
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	var n int
	n, w.err = io.WriteString(w.w, line)
	w.off += int64(n)
	if w.err == nil {
		n, w.err = w.w.Write(newline)
		w.off += int64(n)
	}
	if w.err != nil {
		w.err = errors.Wrap(w.err, "fasta: write")
	}
}
