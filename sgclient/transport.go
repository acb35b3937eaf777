package sgclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"golang.org/x/time/rate"
)

// Transport performs single HTTP requests. Implementations must not retry.
// A request either returns the complete response body with a nil error, or
// a non-nil error; an empty body is a valid successful response.
type Transport interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
	Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error)
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPTransport returns a transport that issues requests with client. If
// qps > 0, requests are spaced to at most qps per second. A nil client means
// http.DefaultClient.
func NewHTTPTransport(client *http.Client, qps float64) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	t := &HTTPTransport{client: client}
	if qps > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(qps), 1)
	}
	return t
}

// Get implements Transport.Get.
func (t *HTTPTransport) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return t.do(ctx, http.MethodGet, url, header, nil)
}

// Post implements Transport.Post.
func (t *HTTPTransport) Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	return t.do(ctx, http.MethodPost, url, header, body)
}

func (t *HTTPTransport) do(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, errors.E(errors.Net, fmt.Sprintf("%s %s", method, url), err)
		}
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return nil, errors.E(errors.Net, fmt.Sprintf("%s %s", method, url), err)
	}
	req = req.WithContext(ctx)
	for k, v := range header {
		req.Header[k] = v
	}
	log.Debug.Printf("sgclient: %s %s (%d byte body)", method, url, len(body))
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.E(errors.Net, fmt.Sprintf("%s %s", method, url), err)
	}
	defer resp.Body.Close() // nolint: errcheck
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.E(errors.Net, fmt.Sprintf("%s %s: reading body", method, url), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.E(errors.Net, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Status: resp.Status})
	}
	return data, nil
}
