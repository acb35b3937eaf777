package fasta_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/grailbio/sgsync/encoding/fasta"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		width int
		seqs  [][2]string
		want  string
		fai   string
	}{
		{
			5,
			[][2]string{{"seq1", "ACGTACGTACGT"}, {"seq2", "ACGTACGT"}},
			">seq1\nACGTA\nCGTAC\nGT\n>seq2\nACGTA\nCGT\n",
			"seq1\t12\t6\t5\t6\n" + "seq2\t8\t27\t5\t6\n",
		},
		{
			4,
			[][2]string{{"E0", "GGGG"}, {"E1", "AA"}},
			">E0\nGGGG\n>E1\nAA\n",
			"E0\t4\t4\t4\t5\n" + "E1\t2\t13\t2\t3\n",
		},
		{
			0,
			[][2]string{{"empty", ""}},
			">empty\n",
			"empty\t0\t7\t0\t1\n",
		},
	}
	for _, test := range tests {
		var out, idx bytes.Buffer
		w := fasta.NewWriter(&out, test.width)
		for _, s := range test.seqs {
			assert.NoError(t, w.Write(s[0], s[1]))
		}
		assert.NoError(t, w.WriteIndex(&idx))
		expect.EQ(t, out.String(), test.want)
		expect.EQ(t, idx.String(), test.fai)
	}
}

func TestWriteDefaultWidth(t *testing.T) {
	var out bytes.Buffer
	w := fasta.NewWriter(&out, 0)
	seq := bytes.Repeat([]byte{'A'}, fasta.DefaultLineWidth+1)
	assert.NoError(t, w.Write("s", string(seq)))
	expect.EQ(t, out.String(), ">s\n"+string(seq[:fasta.DefaultLineWidth])+"\nA\n")
}

func TestWriteBadName(t *testing.T) {
	var out bytes.Buffer
	w := fasta.NewWriter(&out, 10)
	assert.Regexp(t, w.Write("chr1 viral", "ACGT"), "invalid sequence name")
	// The error is sticky.
	assert.Regexp(t, w.Write("chr2", "ACGT"), "invalid sequence name")
	var idx bytes.Buffer
	assert.Regexp(t, w.WriteIndex(&idx), "invalid sequence name")
	expect.EQ(t, out.Len(), 0)
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	w := fasta.NewWriter(failWriter{}, 10)
	assert.Regexp(t, w.Write("chr1", "ACGT"), "disk full")
}
