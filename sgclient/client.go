// Package sgclient downloads a side graph from a GA4GH-style side graph
// server into a local sidegraph.SideGraph.
//
// The server identifies sequences with its own ids; the local graph requires
// dense ids in [0, n). A Client rewrites every server sequence id it receives
// (in joins and allele paths) into the local id space, so sequences must be
// downloaded before any join or allele that references them.
//
// Requests are strictly sequential. Pagination is driven by the caller, who
// passes the token returned with one page into the request for the next (see
// Sync for a complete example). Nothing in this package retries.
package sgclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/sgsync/sidegraph"
)

// FullRange, passed as the end coordinate with a start of 0, requests all of
// a sequence's bases.
const FullRange = -1

// versionRE matches the last path component of a base URL, e.g. "v0.6".
var versionRE = regexp.MustCompile(`^[vV][0-9]+(\.[0-9]+)*$`)

var jsonHeader = http.Header{"Content-Type": []string{"application/json"}}

// SetID is an optional reference set or variant set id filter.
type SetID struct {
	ID    int64
	Valid bool
}

// Filter returns a filter on id. A negative id means no filter.
func Filter(id int64) SetID {
	return SetID{ID: id, Valid: id >= 0}
}

func (s SetID) wire() *int64 {
	if !s.Valid || s.ID < 0 {
		return nil
	}
	id := s.ID
	return &id
}

// SearchRequest is one page request to a search endpoint.
type SearchRequest struct {
	// PageToken is the cursor returned with the previous page. Zero (or
	// negative) requests the first page.
	PageToken      int64
	PageSize       int
	ReferenceSetID SetID
	VariantSetID   SetID
}

// searchBody is the wire form of SearchRequest. Every key is always present;
// unset values are encoded as null.
type searchBody struct {
	PageSize       int    `json:"pageSize"`
	PageToken      *int64 `json:"pageToken"`
	ReferenceSetID *int64 `json:"referenceSetId"`
	VariantSetID   *int64 `json:"variantSetId"`
}

func (r SearchRequest) marshal() ([]byte, error) {
	b := searchBody{
		PageSize:       r.PageSize,
		ReferenceSetID: r.ReferenceSetID.wire(),
		VariantSetID:   r.VariantSetID.wire(),
	}
	if r.PageToken > 0 {
		tok := r.PageToken
		b.PageToken = &tok
	}
	return json.Marshal(b)
}

// SequencePage is the result of DownloadSequences.
type SequencePage struct {
	// Sequences are the graph's records for the page, with local ids, in
	// response order.
	Sequences []*sidegraph.Sequence
	Next      PageToken
}

// ReferencePage is the result of DownloadReferences.
type ReferencePage struct {
	// Names maps server reference id to reference name.
	Names map[int64]string
	Next  PageToken
}

// JoinPage is the result of DownloadJoins.
type JoinPage struct {
	// Joins are the graph's records for the page, with local sequence ids.
	Joins []*sidegraph.Join
	Next  PageToken
}

// AllelePage is the result of DownloadAlleleIDs.
type AllelePage struct {
	IDs  []int64
	Next PageToken
}

// session is everything derived from one base URL. The graph and the id map
// are created and discarded together.
type session struct {
	url   string
	graph *sidegraph.SideGraph
	ids   *IDMap
}

// Client syncs one server into one local graph. A Client starts
// unconfigured; SetURL configures it. Methods may be called concurrently, but
// they are serialized.
type Client struct {
	transport Transport

	mu   sync.Mutex
	sess *session
}

// New creates an unconfigured client. A nil transport means an
// HTTPTransport using http.DefaultClient.
func New(t Transport) *Client {
	if t == nil {
		t = NewHTTPTransport(nil, 0)
	}
	return &Client{transport: t}
}

// SetURL points the client at a server, e.g. "http://host:8080/v0.6". The
// last path component must be an API version. Any previously synced data is
// discarded, including when SetURL fails.
func (c *Client) SetURL(baseURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess = nil
	trimmed := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(trimmed)
	if err != nil {
		return errors.E(errors.Invalid, ErrBadURL, fmt.Sprintf("%q: %v", baseURL, err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.E(errors.Invalid, ErrBadURL, fmt.Sprintf("%q: want an http or https URL", baseURL))
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.E(errors.Invalid, ErrBadURL, fmt.Sprintf("%q: query and fragment not allowed", baseURL))
	}
	if !versionRE.MatchString(path.Base(u.Path)) {
		return errors.E(errors.Invalid, ErrBadURL, fmt.Sprintf("%q: version not detected at end of URL", baseURL))
	}
	c.sess = &session{url: trimmed, graph: sidegraph.New(), ids: NewIDMap()}
	log.Debug.Printf("sgclient: configured for %s", trimmed)
	return nil
}

// URL returns the configured base URL, or "" if unconfigured.
func (c *Client) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.url
}

// Graph returns the graph of the current session, or nil if unconfigured.
// The graph is replaced by the next SetURL. Callers must not modify it.
func (c *Client) Graph() *sidegraph.SideGraph {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.graph
}

// IDs returns the id map of the current session, or nil if unconfigured.
func (c *Client) IDs() *IDMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.ids
}

func (c *Client) session() (*session, error) {
	if c.sess == nil {
		return nil, errors.E(errors.Precondition, ErrNotConfigured, "SetURL must succeed before downloading")
	}
	if c.sess.graph.NumSequences() != c.sess.ids.Len() {
		return nil, errors.E(errors.Integrity, fmt.Sprintf("graph has %d sequences but %d are mapped",
			c.sess.graph.NumSequences(), c.sess.ids.Len()))
	}
	return c.sess, nil
}

func (c *Client) search(ctx context.Context, s *session, endpoint string, req SearchRequest) ([]byte, error) {
	body, err := req.marshal()
	if err != nil {
		return nil, errors.E(errors.Invalid, "encoding search request", err)
	}
	return c.transport.Post(ctx, s.url+endpoint, jsonHeader, body)
}

// DownloadSequences fetches one page of sequences and adds them to the
// graph. Each new sequence is named "Seq<server id>" unless the server names
// it, and gets the next local id. A sequence whose server id was seen before
// is not added again; the existing record is returned in its place.
func (c *Client) DownloadSequences(ctx context.Context, req SearchRequest) (*SequencePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	body, err := c.search(ctx, s, "/sequences/search", req)
	if err != nil {
		return nil, err
	}
	seqs, next, err := DecodeSequences(body)
	if err != nil {
		return nil, err
	}
	page := &SequencePage{Sequences: make([]*sidegraph.Sequence, 0, len(seqs)), Next: next}
	for _, seq := range seqs {
		remote := seq.ID
		if local, ok := s.ids.Local(remote); ok {
			existing := s.graph.GetSequence(local)
			if existing.Length != seq.Length {
				log.Error.Printf("sgclient: sequence %d redownloaded with length %d, keeping %d",
					remote, seq.Length, existing.Length)
			}
			page.Sequences = append(page.Sequences, existing)
			continue
		}
		if seq.Name == "" {
			seq.Name = fmt.Sprintf("Seq%d", remote)
		}
		added := s.graph.AddSequence(seq)
		if err := s.ids.Add(remote, added.ID); err != nil {
			log.Panicf("sgclient: id map out of sync with graph: %v", err)
		}
		page.Sequences = append(page.Sequences, added)
	}
	log.Debug.Printf("sgclient: sequences page: %d records, %d in graph, next %v",
		len(seqs), s.graph.NumSequences(), next)
	return page, nil
}

// DownloadReferences fetches one page of the reference id to name map.
func (c *Client) DownloadReferences(ctx context.Context, req SearchRequest) (*ReferencePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	body, err := c.search(ctx, s, "/references/search", req)
	if err != nil {
		return nil, err
	}
	names, next, err := DecodeReferences(body)
	if err != nil {
		return nil, err
	}
	return &ReferencePage{Names: names, Next: next}, nil
}

// DownloadBases fetches bases [start, end) of the sequence with the given
// local id. start=0, end=FullRange fetches the whole sequence. The sequence
// must have been added by DownloadSequences in the current session.
func (c *Client) DownloadBases(ctx context.Context, localSeqID, start, end int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.session()
	if err != nil {
		return "", err
	}
	remote, ok := s.ids.Remote(localSeqID)
	seq := s.graph.GetSequence(localSeqID)
	if !ok || seq == nil {
		return "", errors.E(errors.NotExist, ErrUnmappedID,
			fmt.Sprintf("sequence %d was never downloaded with DownloadSequences", localSeqID))
	}
	endpoint := fmt.Sprintf("/sequences/%d/bases", remote)
	want := seq.Length
	if start != 0 || end != FullRange {
		if start < 0 || end <= start || end > seq.Length {
			return "", errors.E(errors.Invalid, ErrInvalidRange,
				fmt.Sprintf("start=%d, end=%d invalid for sequence %d with length %d", start, end, remote, seq.Length))
		}
		endpoint += fmt.Sprintf("?start=%d&end=%d", start, end)
		want = end - start
	}
	body, err := c.transport.Get(ctx, s.url+endpoint, nil)
	if err != nil {
		return "", err
	}
	bases, err := DecodeBases(body)
	if err != nil {
		return "", err
	}
	if int64(len(bases)) != want {
		return "", errors.E(errors.Integrity, ErrLengthMismatch,
			fmt.Sprintf("tried to download %d bases for sequence %d but got %d", want, remote, len(bases)))
	}
	return bases, nil
}

// DownloadJoins fetches one page of joins and adds them to the graph, with
// both sides rewritten to local sequence ids. If any join on the page
// references a sequence not downloaded in this session, or a position outside
// its sequence, the page is rejected and nothing is added.
func (c *Client) DownloadJoins(ctx context.Context, req SearchRequest) (*JoinPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	body, err := c.search(ctx, s, "/joins/search", req)
	if err != nil {
		return nil, err
	}
	joins, next, err := DecodeJoins(body)
	if err != nil {
		return nil, err
	}
	for _, j := range joins {
		if j.Side1, err = s.localSide(j.Side1); err != nil {
			return nil, err
		}
		if j.Side2, err = s.localSide(j.Side2); err != nil {
			return nil, err
		}
	}
	page := &JoinPage{Joins: make([]*sidegraph.Join, 0, len(joins)), Next: next}
	for _, j := range joins {
		page.Joins = append(page.Joins, s.graph.AddJoin(j))
	}
	log.Debug.Printf("sgclient: joins page: %d records, %d in graph, next %v",
		len(joins), s.graph.NumJoins(), next)
	return page, nil
}

// localSide rewrites a side's server sequence id to the local id.
func (s *session) localSide(side sidegraph.Side) (sidegraph.Side, error) {
	seq, err := s.localSequence(side.SeqID)
	if err != nil {
		return side, err
	}
	if side.Pos < 0 || side.Pos >= seq.Length {
		return side, errors.E(errors.Invalid, ErrInvalidRange,
			fmt.Sprintf("side %v is outside sequence %d with length %d", side, side.SeqID, seq.Length))
	}
	side.SeqID = seq.ID
	return side, nil
}

func (s *session) localSequence(remote int64) (*sidegraph.Sequence, error) {
	local, ok := s.ids.Local(remote)
	if !ok {
		return nil, errors.E(errors.NotExist, ErrUnmappedID,
			fmt.Sprintf("sequence %d is referenced before it was downloaded", remote))
	}
	return s.graph.GetSequence(local), nil
}

// DownloadAlleleIDs fetches one page of allele ids.
func (c *Client) DownloadAlleleIDs(ctx context.Context, req SearchRequest) (*AllelePage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	body, err := c.search(ctx, s, "/alleles/search", req)
	if err != nil {
		return nil, err
	}
	ids, next, err := DecodeAlleleIDs(body)
	if err != nil {
		return nil, err
	}
	return &AllelePage{IDs: ids, Next: next}, nil
}

// DownloadAllele fetches one allele. The path's sequence ids are rewritten to
// local ids; every segment must lie within a sequence downloaded in this
// session.
func (c *Client) DownloadAllele(ctx context.Context, alleleID int64) (*Allele, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.session()
	if err != nil {
		return nil, err
	}
	body, err := c.transport.Get(ctx, fmt.Sprintf("%s/alleles/%d", s.url, alleleID), nil)
	if err != nil {
		return nil, err
	}
	a, err := DecodeAllele(body)
	if err != nil {
		return nil, err
	}
	if a.ID != alleleID {
		return nil, errors.E(errors.Integrity, ErrIDMismatch,
			fmt.Sprintf("requested allele %d, got %d", alleleID, a.ID))
	}
	for i, seg := range a.Path {
		seq, err := s.localSequence(seg.Side.SeqID)
		if err != nil {
			return nil, errors.E(errors.NotExist, err, fmt.Sprintf("allele %d segment %d", alleleID, i))
		}
		// Pos and Length are each non-negative; compare by subtraction so a
		// huge length cannot wrap End.
		if seg.Side.Pos > seq.Length || seg.Length > seq.Length-seg.Side.Pos {
			return nil, errors.E(errors.Invalid, ErrInvalidRange,
				fmt.Sprintf("allele %d segment %d (start %d, length %d) is outside sequence %d with length %d",
					alleleID, i, seg.Side.Pos, seg.Length, seg.Side.SeqID, seq.Length))
		}
		a.Path[i].Side.SeqID = seq.ID
	}
	return a, nil
}
