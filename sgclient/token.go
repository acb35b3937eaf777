package sgclient

import (
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/tidwall/gjson"
)

type tokenState uint8

const (
	tokenDone tokenState = iota
	tokenMore
	tokenInvalid
)

// PageToken is the continuation state returned with each page of a search.
// It is exactly one of: more pages remain (Next returns the cursor), no more
// pages, or the server's token field could not be parsed (Err is non-nil).
//
// The zero value means no more pages.
type PageToken struct {
	state tokenState
	token int64
	raw   string
	shape Shape
}

// TokenMore returns a token for the page that begins at cursor n.
func TokenMore(n int64) PageToken { return PageToken{state: tokenMore, token: n} }

// TokenDone returns a token that ends the search.
func TokenDone() PageToken { return PageToken{} }

// TokenInvalid returns a token for an unparseable server value.
func TokenInvalid(raw string) PageToken { return PageToken{state: tokenInvalid, raw: raw} }

// Next returns the cursor for the next page, if there is one.
func (t PageToken) Next() (int64, bool) {
	return t.token, t.state == tokenMore
}

// Done returns true iff the server reported no further pages.
func (t PageToken) Done() bool { return t.state == tokenDone }

// Err returns a decode error iff the server's token could not be parsed.
func (t PageToken) Err() error {
	if t.state != tokenInvalid {
		return nil
	}
	return errors.E(errors.Invalid, &DecodeError{Shape: t.shape, Field: "nextPageToken", Reason: fmt.Sprintf("unparseable page token %q", t.raw)})
}

func (t PageToken) String() string {
	switch t.state {
	case tokenMore:
		return strconv.FormatInt(t.token, 10)
	case tokenInvalid:
		return fmt.Sprintf("invalid(%q)", t.raw)
	}
	return "done"
}

// decodePageToken reads the nextPageToken field of a search response of the
// given shape. The field is a decimal string; absent, null and empty mean no
// more pages.
func decodePageToken(root gjson.Result, shape Shape) PageToken {
	t := parsePageToken(root.Get("nextPageToken"))
	if t.state == tokenInvalid {
		t.shape = shape
	}
	return t
}

func parsePageToken(v gjson.Result) PageToken {
	switch v.Type {
	case gjson.Null:
		return TokenDone()
	case gjson.String:
		if v.Str == "" {
			return TokenDone()
		}
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil || n <= 0 {
			return TokenInvalid(v.Str)
		}
		return TokenMore(n)
	case gjson.Number:
		n, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil || n <= 0 {
			return TokenInvalid(v.Raw)
		}
		return TokenMore(n)
	}
	return TokenInvalid(v.Raw)
}
