package sgclient

// This file turns response bodies into records. Each Decode function is
// all-or-nothing: a single bad field fails the whole body, and no records are
// returned.

import (
	"fmt"

	"github.com/grailbio/sgsync/sidegraph"
	"github.com/tidwall/gjson"
)

// Allele is a path through the graph for one haplotype.
type Allele struct {
	ID           int64
	VariantSetID int64
	Name         string
	// Path is the ordered list of segments the allele traverses. Segment
	// sequence ids are server ids when returned by DecodeAllele and local ids
	// when returned by Client.DownloadAllele.
	Path []sidegraph.Segment
}

// Length returns the number of bases along the allele's path.
func (a *Allele) Length() int64 {
	var n int64
	for _, s := range a.Path {
		n += s.Length
	}
	return n
}

// DecodeSequences parses a sequences search response:
//
//   {"sequences": [{"id": "7", "length": "100"}, ...], "nextPageToken": "11"}
//
// The returned sequences carry server ids.
func DecodeSequences(buf []byte) ([]*sidegraph.Sequence, PageToken, error) {
	d := decoder{shape: ShapeSequences}
	root := d.root(buf)
	elems, path := d.array(root, "", "sequences")
	seqs := make([]*sidegraph.Sequence, 0, len(elems))
	for i, e := range elems {
		p := fmt.Sprintf("%s.%d", path, i)
		seq := &sidegraph.Sequence{
			ID:     field(&d, e, p, "id", asInt),
			Length: field(&d, e, p, "length", asCount),
			Name:   optional(&d, e, p, "name", asString),
		}
		if d.err != nil {
			return nil, TokenDone(), d.err
		}
		seqs = append(seqs, seq)
	}
	if d.err != nil {
		return nil, TokenDone(), d.err
	}
	return seqs, decodePageToken(root, d.shape), nil
}

// DecodeReferences parses a references search response into a map from
// server id to reference name.
func DecodeReferences(buf []byte) (map[int64]string, PageToken, error) {
	d := decoder{shape: ShapeReferences}
	root := d.root(buf)
	elems, path := d.array(root, "", "references")
	refs := make(map[int64]string, len(elems))
	for i, e := range elems {
		p := fmt.Sprintf("%s.%d", path, i)
		id := field(&d, e, p, "id", asInt)
		name := field(&d, e, p, "name", asString)
		if d.err != nil {
			return nil, TokenDone(), d.err
		}
		if prev, ok := refs[id]; ok && prev != name {
			d.fail(p, "reference %d named both %q and %q", id, prev, name)
			return nil, TokenDone(), d.err
		}
		refs[id] = name
	}
	if d.err != nil {
		return nil, TokenDone(), d.err
	}
	return refs, decodePageToken(root, d.shape), nil
}

// DecodeBases parses a bases response: {"sequence": "ACGT..."}.
func DecodeBases(buf []byte) (string, error) {
	d := decoder{shape: ShapeBases}
	root := d.root(buf)
	bases := field(&d, root, "", "sequence", asString)
	if d.err != nil {
		return "", d.err
	}
	return bases, nil
}

// DecodeJoins parses a joins search response. Each join looks like
//
//   {"side1": {"position": {"sequenceId": "7", "position": "99"}, "strand": "POS_STRAND"},
//    "side2": {...}}
//
// The returned joins carry server sequence ids.
func DecodeJoins(buf []byte) ([]*sidegraph.Join, PageToken, error) {
	d := decoder{shape: ShapeJoins}
	root := d.root(buf)
	elems, path := d.array(root, "", "joins")
	joins := make([]*sidegraph.Join, 0, len(elems))
	for i, e := range elems {
		p := fmt.Sprintf("%s.%d", path, i)
		j := &sidegraph.Join{
			Side1: decodeSide(&d, e, p, "side1"),
			Side2: decodeSide(&d, e, p, "side2"),
		}
		if d.err != nil {
			return nil, TokenDone(), d.err
		}
		joins = append(joins, j)
	}
	if d.err != nil {
		return nil, TokenDone(), d.err
	}
	return joins, decodePageToken(root, d.shape), nil
}

func decodeSide(d *decoder, obj gjson.Result, path, name string) sidegraph.Side {
	side, p := d.object(obj, path, name)
	pos, pp := d.object(side, p, "position")
	return sidegraph.Side{
		Position: sidegraph.Position{
			SeqID: field(d, pos, pp, "sequenceId", asInt),
			Pos:   field(d, pos, pp, "position", asCount),
		},
		Strand: field(d, side, p, "strand", asStrand),
	}
}

// DecodeAlleleIDs parses an alleles search response, returning only the
// allele ids in order.
func DecodeAlleleIDs(buf []byte) ([]int64, PageToken, error) {
	d := decoder{shape: ShapeAlleleIDs}
	root := d.root(buf)
	elems, path := d.array(root, "", "alleles")
	ids := make([]int64, 0, len(elems))
	for i, e := range elems {
		ids = append(ids, field(&d, e, fmt.Sprintf("%s.%d", path, i), "id", asInt))
	}
	if d.err != nil {
		return nil, TokenDone(), d.err
	}
	return ids, decodePageToken(root, d.shape), nil
}

// DecodeAllele parses a single allele:
//
//   {"id": "3", "variantSetId": "1", "name": "a3",
//    "path": [{"sequenceId": "7", "start": "10", "length": "5", "strand": "NEG_STRAND"}, ...]}
func DecodeAllele(buf []byte) (*Allele, error) {
	d := decoder{shape: ShapeAllele}
	root := d.root(buf)
	a := &Allele{
		ID:           field(&d, root, "", "id", asInt),
		VariantSetID: field(&d, root, "", "variantSetId", asInt),
		Name:         field(&d, root, "", "name", asString),
	}
	elems, path := d.array(root, "", "path")
	a.Path = make([]sidegraph.Segment, 0, len(elems))
	for i, e := range elems {
		p := fmt.Sprintf("%s.%d", path, i)
		a.Path = append(a.Path, sidegraph.Segment{
			Side: sidegraph.Side{
				Position: sidegraph.Position{
					SeqID: field(&d, e, p, "sequenceId", asInt),
					Pos:   field(&d, e, p, "start", asCount),
				},
				Strand: field(&d, e, p, "strand", asStrand),
			},
			Length: field(&d, e, p, "length", asCount),
		})
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}
