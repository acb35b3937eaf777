package main

// sg-sync downloads a side graph from a GA4GH side graph server and writes
// it out as FASTA plus TSV tables.
//
// Usage:
//
//   sg-sync -url=http://localhost:8080/v0.6 -fasta=graph.fa -joins=joins.tsv
//
// -fasta also writes a samtools index next to the FASTA file (graph.fa.fai),
// unless the FASTA path is gzipped. -allele-paths writes one line per allele
// path segment, and -allele-bases a FASTA file of assembled allele sequences.

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/sgsync/encoding/fasta"
	"github.com/grailbio/sgsync/sgclient"
	"github.com/grailbio/sgsync/sidegraph"
)

var (
	urlFlag          = flag.String("url", "", "Base URL of the server. The last path component must be the API version, e.g. v0.6")
	pageSizeFlag     = flag.Int("page-size", sgclient.DefaultPageSize, "Records per search request")
	referenceSetFlag = flag.Int64("reference-set", -1, "If >= 0, only sync this reference set")
	variantSetFlag   = flag.Int64("variant-set", -1, "If >= 0, only sync this variant set")
	qpsFlag          = flag.Float64("qps", 0, "If > 0, issue at most this many requests per second")
	timeoutFlag      = flag.Duration("timeout", 10*time.Minute, "Deadline for the whole sync")
	fastaFlag        = flag.String("fasta", "", "If set, download all bases and write them to this FASTA file")
	lineWidthFlag    = flag.Int("line-width", fasta.DefaultLineWidth, "Bases per FASTA line")
	joinsFlag        = flag.String("joins", "", "If set, write joins to this TSV file")
	allelePathsFlag  = flag.String("allele-paths", "", "If set, download alleles and write their paths to this TSV file")
	alleleBasesFlag  = flag.String("allele-bases", "", "If set, download alleles and write their assembled bases to this FASTA file")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()
	if *urlFlag == "" {
		log.Fatal("-url is required")
	}
	ctx, cancel := context.WithTimeout(vcontext.Background(), *timeoutFlag)
	defer cancel()
	if err := run(ctx); err != nil {
		log.Fatalf("sg-sync: %v", err)
	}
}

func run(ctx context.Context) error {
	c := sgclient.New(sgclient.NewHTTPTransport(nil, *qpsFlag))
	if err := c.SetURL(*urlFlag); err != nil {
		return err
	}
	opts := sgclient.SyncOptions{
		PageSize:       *pageSizeFlag,
		ReferenceSetID: sgclient.Filter(*referenceSetFlag),
		VariantSetID:   sgclient.Filter(*variantSetFlag),
		Bases:          *fastaFlag != "",
		Alleles:        *allelePathsFlag != "" || *alleleBasesFlag != "",
	}
	start := time.Now()
	sum, err := sgclient.Sync(ctx, c, opts)
	if err != nil {
		return err
	}
	log.Printf("sg-sync: downloaded %d sequences, %d joins, %d alleles in %v",
		sum.Sequences, sum.Joins, len(sum.Alleles), time.Since(start))
	g := c.Graph()
	if *fastaFlag != "" {
		if err := writeFASTA(ctx, *fastaFlag, g, sum.Bases); err != nil {
			return err
		}
	}
	if *joinsFlag != "" {
		err := writeFile(ctx, *joinsFlag, func(w io.Writer) error { return sidegraph.WriteJoins(w, g) })
		if err != nil {
			return err
		}
	}
	if *allelePathsFlag != "" {
		paths := make([]sidegraph.Path, len(sum.Alleles))
		for i, a := range sum.Alleles {
			paths[i] = sidegraph.Path{Name: a.Name, Segments: a.Path}
		}
		err := writeFile(ctx, *allelePathsFlag, func(w io.Writer) error { return sidegraph.WritePaths(w, g, paths) })
		if err != nil {
			return err
		}
	}
	if *alleleBasesFlag != "" {
		err := writeFile(ctx, *alleleBasesFlag, func(w io.Writer) error {
			fw := fasta.NewWriter(w, *lineWidthFlag)
			for _, a := range sum.Alleles {
				bases, err := c.AlleleBases(ctx, a)
				if err != nil {
					return err
				}
				if err := fw.Write(alleleName(a), bases); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFASTA(ctx context.Context, path string, g *sidegraph.SideGraph, bases []string) error {
	var fw *fasta.Writer
	err := writeFile(ctx, path, func(w io.Writer) error {
		fw = fasta.NewWriter(w, *lineWidthFlag)
		return sidegraph.WriteFASTA(fw, g, bases)
	})
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		log.Printf("sg-sync: %s is compressed, not writing an index", path)
		return nil
	}
	if err := writeFile(ctx, path+".fai", fw.WriteIndex); err != nil {
		return errors.E(err, "writing index for", path)
	}
	return nil
}

// alleleName returns a FASTA-safe name for a.
func alleleName(a *sgclient.Allele) string {
	if name := strings.Join(strings.Fields(a.Name), "_"); name != "" {
		return name
	}
	return fmt.Sprintf("Allele%d", a.ID)
}
