package sgclient_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/grailbio/base/errors"
)

const baseURL = "http://sg.test/v0.6"

type request struct {
	method, url string
	header      http.Header
	body        string
}

// fakeTransport replays canned response bodies. Responses for a given
// "METHOD url" key are returned in order; a missing response is a transport
// error.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string][]string
	requests  []request
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string][]string)}
}

func (f *fakeTransport) add(method, path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + baseURL + path
	f.responses[key] = append(f.responses[key], body)
}

func (f *fakeTransport) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return f.do(http.MethodGet, url, header, nil)
}

func (f *fakeTransport) Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	return f.do(http.MethodPost, url, header, body)
}

func (f *fakeTransport) do(method, url string, header http.Header, body []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request{method: method, url: url, header: header, body: string(body)})
	key := method + " " + url
	q := f.responses[key]
	if len(q) == 0 {
		return nil, errors.E(errors.Net, fmt.Sprintf("%s: no response", key))
	}
	f.responses[key] = q[1:]
	return []byte(q[0]), nil
}

func (f *fakeTransport) lastRequest() request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}
