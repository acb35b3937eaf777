package main

// This file opens output files. Paths ending in ".gz" are gzip-compressed.

import (
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// output is one destination file.
type output struct {
	path string
	f    file.File
	gz   *gzip.Writer
	w    io.Writer
}

func createOutput(ctx context.Context, path string) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	o := &output{path: path, f: f, w: f.Writer(ctx)}
	if strings.HasSuffix(path, ".gz") {
		o.gz = gzip.NewWriter(o.w)
		o.w = o.gz
	}
	return o, nil
}

// Close flushes and closes the file. It must be called exactly once.
func (o *output) Close(ctx context.Context) error {
	var err error
	if o.gz != nil {
		err = o.gz.Close()
	}
	if e := o.f.Close(ctx); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return errors.E(err, "close", o.path)
	}
	return nil
}

// writeFile creates path, calls fn with its writer, and closes it.
func writeFile(ctx context.Context, path string, fn func(w io.Writer) error) (err error) {
	o, err := createOutput(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := o.Close(ctx); e != nil && err == nil {
			err = e
		}
	}()
	return fn(o.w)
}
