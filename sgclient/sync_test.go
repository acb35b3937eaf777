package sgclient_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/sgsync/sgclient"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

type testSeq struct {
	id    int64
	bases string
}

// testServer is a minimal side graph server. Search results are paged by
// offset: the page token is the index of the first record on the next page.
type testServer struct {
	seqs    []testSeq
	joins   []string
	badPage bool // if set, sequence pages carry an unparseable token.
}

func newTestServer() *testServer {
	return &testServer{
		seqs: []testSeq{{7, "ACGTACGT"}, {9, "GATT"}, {12, "CCCAAA"}},
		joins: []string{
			side(7, 7, "POS_STRAND", 9, 0, "POS_STRAND"),
			side(9, 3, "POS_STRAND", 12, 0, "POS_STRAND"),
			side(7, 7, "POS_STRAND", 12, 5, "NEG_STRAND"),
		},
	}
}

func side(seq1, pos1 int, strand1 string, seq2, pos2 int, strand2 string) string {
	return fmt.Sprintf(`{"side1": {"position": {"sequenceId": "%d", "position": "%d"}, "strand": %q},
		"side2": {"position": {"sequenceId": "%d", "position": "%d"}, "strand": %q}}`,
		seq1, pos1, strand1, seq2, pos2, strand2)
}

func (s *testServer) page(w http.ResponseWriter, r *http.Request, field string, items []string) {
	var req struct {
		PageSize  int    `json:"pageSize"`
		PageToken *int64 `json:"pageToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PageSize <= 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	start := 0
	if req.PageToken != nil {
		start = int(*req.PageToken)
	}
	end := start + req.PageSize
	if end > len(items) {
		end = len(items)
	}
	fmt.Fprintf(w, `{%q: [%s]`, field, strings.Join(items[start:end], ","))
	switch {
	case s.badPage && field == "sequences":
		fmt.Fprint(w, `, "nextPageToken": "page-two"`)
	case end < len(items):
		fmt.Fprintf(w, `, "nextPageToken": "%d"`, end)
	}
	fmt.Fprint(w, "}")
}

func (s *testServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v0.6")
	switch {
	case path == "/sequences/search":
		var items []string
		for _, seq := range s.seqs {
			items = append(items, fmt.Sprintf(`{"id": "%d", "length": "%d"}`, seq.id, len(seq.bases)))
		}
		s.page(w, r, "sequences", items)
	case path == "/joins/search":
		s.page(w, r, "joins", s.joins)
	case path == "/references/search":
		s.page(w, r, "references", []string{`{"id": "0", "name": "chr1"}`, `{"id": "1", "name": "chr2"}`})
	case path == "/alleles/search":
		s.page(w, r, "alleles", []string{`{"id": "3"}`})
	case path == "/alleles/3":
		fmt.Fprint(w, `{"id": "3", "variantSetId": "0", "name": "a3", "path": [
			{"sequenceId": "7", "start": "6", "length": "2", "strand": "POS_STRAND"},
			{"sequenceId": "12", "start": "3", "length": "3", "strand": "NEG_STRAND"}]}`)
	case strings.HasPrefix(path, "/sequences/") && strings.HasSuffix(path, "/bases"):
		id, _ := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(path, "/sequences/"), "/bases"), 10, 64)
		for _, seq := range s.seqs {
			if seq.id != id {
				continue
			}
			bases := seq.bases
			if q := r.URL.Query(); q.Get("start") != "" {
				start, _ := strconv.Atoi(q.Get("start"))
				end, _ := strconv.Atoi(q.Get("end"))
				bases = bases[start:end]
			}
			fmt.Fprintf(w, `{"sequence": %q}`, bases)
			return
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

func TestSync(t *testing.T) {
	srv := httptest.NewServer(newTestServer())
	defer srv.Close()
	c := sgclient.New(sgclient.NewHTTPTransport(srv.Client(), 0))
	assert.NoError(t, c.SetURL(srv.URL+"/v0.6"))
	sum, err := sgclient.Sync(context.Background(), c, sgclient.SyncOptions{
		PageSize:   2,
		References: true,
		Bases:      true,
		Alleles:    true,
	})
	assert.NoError(t, err)
	expect.EQ(t, sum.Sequences, 3)
	expect.EQ(t, sum.Joins, 3)
	expect.EQ(t, sum.References, map[int64]string{0: "chr1", 1: "chr2"})
	expect.EQ(t, sum.Bases, []string{"ACGTACGT", "GATT", "CCCAAA"})
	assert.EQ(t, len(sum.Alleles), 1)

	g := c.Graph()
	expect.EQ(t, g.NumSequences(), 3)
	expect.EQ(t, g.NumJoins(), 3)
	for i, name := range []string{"Seq7", "Seq9", "Seq12"} {
		expect.EQ(t, g.GetSequence(int64(i)).Name, name)
	}
	// The third join, 7:7+ -> 12:5-, is stored with local ids.
	j := g.GetJoin(2)
	expect.EQ(t, j.Side1.SeqID, int64(0))
	expect.EQ(t, j.Side2.SeqID, int64(2))

	bases, err := c.AlleleBases(context.Background(), sum.Alleles[0])
	assert.NoError(t, err)
	expect.EQ(t, bases, "GT"+"TTT")
}

func TestSyncInvalidPageToken(t *testing.T) {
	ts := newTestServer()
	ts.badPage = true
	srv := httptest.NewServer(ts)
	defer srv.Close()
	c := sgclient.New(sgclient.NewHTTPTransport(srv.Client(), 0))
	assert.NoError(t, c.SetURL(srv.URL+"/v0.6"))
	_, err := sgclient.Sync(context.Background(), c, sgclient.SyncOptions{PageSize: 2})
	expect.True(t, errors.Is(errors.Invalid, err), "err %v", err)
	de, ok := sgclient.Cause(err).(*sgclient.DecodeError)
	assert.True(t, ok, "err %v", err)
	expect.EQ(t, de.Field, "nextPageToken")
	expect.EQ(t, de.Shape, sgclient.ShapeSequences)
	// The first page was committed before the bad token was seen.
	expect.EQ(t, c.Graph().NumSequences(), 2)
}

func TestSyncServerError(t *testing.T) {
	ts := newTestServer()
	// A join referencing an unknown sequence fails the sync.
	ts.joins = append(ts.joins, side(7, 0, "POS_STRAND", 99, 0, "POS_STRAND"))
	srv := httptest.NewServer(ts)
	defer srv.Close()
	c := sgclient.New(sgclient.NewHTTPTransport(srv.Client(), 0))
	assert.NoError(t, c.SetURL(srv.URL+"/v0.6"))
	_, err := sgclient.Sync(context.Background(), c, sgclient.SyncOptions{PageSize: 2})
	expect.True(t, sgclient.Is(err, sgclient.ErrUnmappedID), "err %v", err)
	// Joins on the first page are in the graph; the failing page is not.
	expect.EQ(t, c.Graph().NumJoins(), 2)
}
