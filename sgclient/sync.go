package sgclient

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// DefaultPageSize is the page size Sync requests when none is given.
const DefaultPageSize = 100

// SyncOptions controls Sync.
type SyncOptions struct {
	PageSize       int
	ReferenceSetID SetID
	VariantSetID   SetID
	// References requests the reference id to name map.
	References bool
	// Bases requests the bases of every sequence.
	Bases bool
	// Alleles requests every allele, including its path.
	Alleles bool
}

// SyncSummary is what Sync downloaded. The sequences and joins themselves are
// in the client's graph.
type SyncSummary struct {
	Sequences  int
	Joins      int
	References map[int64]string
	// Bases is indexed by local sequence id.
	Bases   []string
	Alleles []*Allele
}

// Sync downloads everything the server has into c's graph: all pages of
// sequences, then all pages of joins, and optionally references, bases and
// alleles. It stops at the first error.
func Sync(ctx context.Context, c *Client, opts SyncOptions) (*SyncSummary, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	req := func(token int64) SearchRequest {
		return SearchRequest{
			PageToken:      token,
			PageSize:       opts.PageSize,
			ReferenceSetID: opts.ReferenceSetID,
			VariantSetID:   opts.VariantSetID,
		}
	}
	sum := &SyncSummary{}
	if opts.References {
		sum.References = make(map[int64]string)
		err := paginate("references", func(token int64) (PageToken, error) {
			page, err := c.DownloadReferences(ctx, req(token))
			if err != nil {
				return PageToken{}, err
			}
			for id, name := range page.Names {
				sum.References[id] = name
			}
			return page.Next, nil
		})
		if err != nil {
			return nil, err
		}
	}
	err := paginate("sequences", func(token int64) (PageToken, error) {
		page, err := c.DownloadSequences(ctx, req(token))
		if err != nil {
			return PageToken{}, err
		}
		sum.Sequences += len(page.Sequences)
		return page.Next, nil
	})
	if err != nil {
		return nil, err
	}
	err = paginate("joins", func(token int64) (PageToken, error) {
		page, err := c.DownloadJoins(ctx, req(token))
		if err != nil {
			return PageToken{}, err
		}
		sum.Joins += len(page.Joins)
		return page.Next, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("sgclient: synced %d sequences, %d joins from %s", sum.Sequences, sum.Joins, c.URL())
	if opts.Bases {
		g := c.Graph()
		sum.Bases = make([]string, g.NumSequences())
		for _, seq := range g.Sequences() {
			if sum.Bases[seq.ID], err = c.DownloadBases(ctx, seq.ID, 0, FullRange); err != nil {
				return nil, err
			}
		}
	}
	if opts.Alleles {
		var ids []int64
		err = paginate("alleles", func(token int64) (PageToken, error) {
			page, err := c.DownloadAlleleIDs(ctx, req(token))
			if err != nil {
				return PageToken{}, err
			}
			ids = append(ids, page.IDs...)
			return page.Next, nil
		})
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			a, err := c.DownloadAllele(ctx, id)
			if err != nil {
				return nil, err
			}
			sum.Alleles = append(sum.Alleles, a)
		}
		log.Printf("sgclient: synced %d alleles", len(sum.Alleles))
	}
	return sum, nil
}

// paginate calls fetch with successive page tokens, starting with the first
// page, until the server reports no more pages.
func paginate(what string, fetch func(token int64) (PageToken, error)) error {
	var token int64
	for {
		next, err := fetch(token)
		if err != nil {
			return err
		}
		if err := next.Err(); err != nil {
			return errors.E(errors.Invalid, err, what)
		}
		n, more := next.Next()
		if !more {
			return nil
		}
		if n == token {
			return errors.E(errors.Invalid, fmt.Sprintf("%s: server repeated page token %d", what, n))
		}
		token = n
	}
}
