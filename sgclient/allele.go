package sgclient

import (
	"context"
	"strings"

	"github.com/grailbio/sgsync/sidegraph"
)

// AlleleBases assembles the bases along an allele's path, as returned by
// DownloadAllele. Each segment's range is downloaded separately; segments on
// the reverse strand contribute their reverse complement.
func (c *Client) AlleleBases(ctx context.Context, a *Allele) (string, error) {
	var b strings.Builder
	for _, seg := range a.Path {
		if seg.Length == 0 {
			continue
		}
		bases, err := c.DownloadBases(ctx, seg.Side.SeqID, seg.Side.Pos, seg.End())
		if err != nil {
			return "", err
		}
		if seg.Side.Strand == sidegraph.Reverse {
			bases = sidegraph.ReverseComplement(bases)
		}
		b.WriteString(bases)
	}
	return b.String(), nil
}
