package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// BrowserUserAgent matches the TLS fingerprint presented by Impersonating.
const BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	impersonating     *http.Client
	impersonatingOnce sync.Once
)

// Impersonating returns a client whose TLS handshake mimics Chrome 120.
// Some catalog sites sit behind bot protection that rejects the Go handshake.
// HTTP/2 is attempted first; requests fall back to HTTP/1.1 when it fails.
func Impersonating() *http.Client {
	impersonatingOnce.Do(func() {
		h1 := &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialChrome(ctx, network, addr, []string{"http/1.1"})
			},
		}
		DefaultPool.apply(h1)

		impersonating = &http.Client{
			Timeout: clientTimeout,
			Transport: &fallbackTransport{
				h2: &http2.Transport{
					DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
						return dialChrome(ctx, network, addr, nil)
					},
					ReadIdleTimeout: DefaultPool.IdleTimeout,
				},
				h1: h1,
			},
		}
	})

	return impersonating
}

type fallbackTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

func (t *fallbackTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", BrowserUserAgent)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	if req.Context().Err() != nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	if req.Body != nil {
		if req.GetBody == nil {
			return nil, err
		}
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, err
		}
		retry.Body = body
	}

	return t.h1.RoundTrip(retry)
}

func dialChrome(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
