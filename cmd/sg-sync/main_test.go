package main

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func newServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sequences/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sequences": [{"id": "5", "length": "6"}, {"id": "6", "length": "3"}]}`)
	})
	mux.HandleFunc("/v1/joins/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"joins": [
{"side1": {"position": {"sequenceId": "5", "position": "5"}, "strand": "POS_STRAND"},
 "side2": {"position": {"sequenceId": "6", "position": "0"}, "strand": "NEG_STRAND"}}]}`)
	})
	mux.HandleFunc("/v1/alleles/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"alleles": [{"id": "1"}]}`)
	})
	mux.HandleFunc("/v1/alleles/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "1", "variantSetId": "0", "name": "allele one", "path": [
{"sequenceId": "5", "start": "4", "length": "2", "strand": "POS_STRAND"},
{"sequenceId": "6", "start": "0", "length": "3", "strand": "NEG_STRAND"}]}`)
	})
	bases := map[string]string{"5": "ACGTAC", "6": "GGA"}
	mux.HandleFunc("/v1/sequences/", func(w http.ResponseWriter, r *http.Request) {
		var id string
		if _, err := fmt.Sscanf(r.URL.Path, "/v1/sequences/%s", &id); err != nil {
			http.NotFound(w, r)
			return
		}
		id = filepath.Dir(id)
		seq := bases[id]
		if start := r.URL.Query().Get("start"); start != "" {
			var s, e int
			fmt.Sscan(start, &s)
			fmt.Sscan(r.URL.Query().Get("end"), &e)
			seq = seq[s:e]
		}
		fmt.Fprintf(w, `{"sequence": %q}`, seq)
	})
	return httptest.NewServer(mux)
}

func readFile(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	*urlFlag = srv.URL + "/v1/"
	*fastaFlag = filepath.Join(tempDir, "graph.fa")
	*lineWidthFlag = 4
	*joinsFlag = filepath.Join(tempDir, "joins.tsv")
	*allelePathsFlag = filepath.Join(tempDir, "paths.tsv.gz")
	*alleleBasesFlag = filepath.Join(tempDir, "alleles.fa")
	assert.NoError(t, run(vcontext.Background()))

	expect.EQ(t, readFile(t, *fastaFlag), ">Seq5\nACGT\nAC\n>Seq6\nGGA\n")
	expect.EQ(t, readFile(t, *fastaFlag+".fai"), "Seq5\t6\t6\t4\t5\nSeq6\t3\t20\t3\t4\n")
	expect.EQ(t, readFile(t, *joinsFlag), "0\tSeq5\t5\t+\tSeq6\t0\t-\n")
	expect.EQ(t, readFile(t, *alleleBasesFlag), ">allele_one\nACTC\nC\n")

	f, err := os.Open(*allelePathsFlag)
	assert.NoError(t, err)
	defer f.Close() // nolint: errcheck
	gz, err := gzip.NewReader(f)
	assert.NoError(t, err)
	paths, err := ioutil.ReadAll(gz)
	assert.NoError(t, err)
	expect.EQ(t, string(paths), "allele one\t0\tSeq5\t4\t+\t2\nallele one\t1\tSeq6\t0\t-\t3\n")
}

func TestRunBadURL(t *testing.T) {
	*urlFlag = "http://localhost/api"
	assert.Regexp(t, run(vcontext.Background()), "version not detected")
}
