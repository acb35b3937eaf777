package sgclient

import (
	"fmt"
	"strconv"

	"github.com/grailbio/sgsync/sidegraph"
	"github.com/tidwall/gjson"
)

// decoder walks one response body. The first failure is latched in err; after
// that every accessor returns a zero value, so a record's fields can be
// decoded in sequence and checked once.
type decoder struct {
	shape Shape
	err   error
}

func (d *decoder) fail(path, format string, args ...interface{}) {
	if d.err == nil {
		d.err = decodeErr(d.shape, path, format, args...)
	}
}

// root validates buf and returns its top-level object.
func (d *decoder) root(buf []byte) gjson.Result {
	if !gjson.ValidBytes(buf) {
		d.fail("", "body is not valid JSON")
		return gjson.Result{}
	}
	root := gjson.ParseBytes(buf)
	if !root.IsObject() {
		d.fail("", "top level is %s, not an object", typeName(root))
	}
	return root
}

// lookup returns obj.name, failing if it is absent.
func (d *decoder) lookup(obj gjson.Result, path, name string) (gjson.Result, string) {
	p := joinPath(path, name)
	if d.err != nil {
		return gjson.Result{}, p
	}
	v := obj.Get(name)
	if !v.Exists() {
		d.fail(p, "missing")
	}
	return v, p
}

// object returns the required object obj.name.
func (d *decoder) object(obj gjson.Result, path, name string) (gjson.Result, string) {
	v, p := d.lookup(obj, path, name)
	if d.err == nil && !v.IsObject() {
		d.fail(p, "is %s, not an object", typeName(v))
	}
	return v, p
}

// array returns the elements of the required array obj.name. Every element
// must be an object.
func (d *decoder) array(obj gjson.Result, path, name string) ([]gjson.Result, string) {
	v, p := d.lookup(obj, path, name)
	if d.err != nil {
		return nil, p
	}
	if !v.IsArray() {
		d.fail(p, "is %s, not an array", typeName(v))
		return nil, p
	}
	elems := v.Array()
	for i, e := range elems {
		if !e.IsObject() {
			d.fail(fmt.Sprintf("%s.%d", p, i), "is %s, not an object", typeName(e))
			return nil, p
		}
	}
	return elems, p
}

// field decodes the required scalar obj.name with parse.
func field[T any](d *decoder, obj gjson.Result, path, name string, parse func(gjson.Result) (T, error)) T {
	var zero T
	v, p := d.lookup(obj, path, name)
	if d.err != nil {
		return zero
	}
	x, err := parse(v)
	if err != nil {
		d.fail(p, "%v", err)
		return zero
	}
	return x
}

// optional is like field, but an absent or null value yields the zero value.
func optional[T any](d *decoder, obj gjson.Result, path, name string, parse func(gjson.Result) (T, error)) T {
	var zero T
	if d.err != nil {
		return zero
	}
	if v := obj.Get(name); v.Type == gjson.Null {
		return zero
	}
	return field(d, obj, path, name, parse)
}

// asInt parses an integer. The server sends numbers as JSON strings; a bare
// integer literal is accepted too. The whole value must parse.
func asInt(v gjson.Result) (int64, error) {
	var s string
	switch v.Type {
	case gjson.String:
		s = v.Str
	case gjson.Number:
		s = v.Raw
	default:
		return 0, fmt.Errorf("is %s, not an integer string", typeName(v))
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

// asCount is asInt restricted to non-negative values.
func asCount(v gjson.Result) (int64, error) {
	n, err := asInt(v)
	if err == nil && n < 0 {
		err = fmt.Errorf("%d is negative", n)
	}
	return n, err
}

func asString(v gjson.Result) (string, error) {
	if v.Type != gjson.String {
		return "", fmt.Errorf("is %s, not a string", typeName(v))
	}
	return v.Str, nil
}

func asStrand(v gjson.Result) (sidegraph.Strand, error) {
	s, err := asString(v)
	if err != nil {
		return sidegraph.Forward, err
	}
	switch s {
	case "POS_STRAND", "+":
		return sidegraph.Forward, nil
	case "NEG_STRAND", "-":
		return sidegraph.Reverse, nil
	}
	return sidegraph.Forward, fmt.Errorf("unknown strand %q", s)
}

func typeName(v gjson.Result) string {
	switch {
	case !v.Exists():
		return "absent"
	case v.IsObject():
		return "an object"
	case v.IsArray():
		return "an array"
	}
	switch v.Type {
	case gjson.True, gjson.False:
		return "a boolean"
	case gjson.Number:
		return "a number"
	case gjson.String:
		return "a string"
	}
	return "null"
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
