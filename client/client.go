package client

import (
	"net/http"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
)

// DefaultTimeout bounds a single HTTP round trip to the thrift gateway.
const DefaultTimeout = 10 * time.Second

// Header is an HTTP header sent with every gateway request, for instance
// the authorization header hosted HBase services require.
type Header struct {
	Key, Value string
}

// RoundTripper adds the configured headers to every request sent to the gateway.
type RoundTripper struct {
	Headers []Header
	Base    http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for _, header := range rt.Headers {
		req.Header.Add(header.Key, header.Value)
	}
	base := rt.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// Options configure the thrift transport.
type Options struct {
	Headers []Header
	Timeout time.Duration
}

// Dial opens a thrift HTTP transport to addr and returns a client
// for the HBase Thrift gateway.
func Dial(addr string, opts Options) (*HbaseClient, thrift.TTransport, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := http.Client{
		Transport: &RoundTripper{
			Headers: opts.Headers,
		},
		Timeout: timeout,
	}
	trans, err := thrift.NewTHttpClientWithOptions(addr, thrift.THttpClientOptions{Client: &httpClient})
	if err != nil {
		return nil, nil, err
	}
	err = trans.Open()
	if err != nil {
		return nil, nil, err
	}
	proto := thrift.NewTBinaryProtocol(trans, false, false)
	thriftClient := thrift.NewTStandardClient(proto, proto)
	return NewHbaseClient(thriftClient), trans, nil
}
