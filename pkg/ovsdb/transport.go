package ovsdb

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"strings"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/pkg/errors"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

// Transport exchanges one request document for one response document. Implementations must be safe for
// concurrent use.
type Transport interface {
	RoundTrip(ctx context.Context, request []byte) ([]byte, error)
}

// streamTransport opens a new connection for every round trip.
type streamTransport struct {
	network string
	address string
	timeout time.Duration
	// framed transports read a single JSON value instead of waiting for the server to close the
	// connection.
	framed bool
	// set for "ssl" endpoints
	tlsConfig *tls.Config
}

func (t *streamTransport) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	conn, err := t.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "dial %s %s", t.network, t.address)
		}
		return nil, errors.Wrapf(err, "dial %s %s", t.network, t.address)
	}
	defer conn.Close()
	// unblocks the exchange when ctx is done
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	var response []byte
	if t.framed {
		response, err = exchangeFramed(conn, request)
	} else {
		response, err = exchangeStream(conn, request)
	}
	if err != nil && ctx.Err() != nil {
		return nil, errors.Wrapf(ctx.Err(), "exchange with %s", t.address)
	}
	return response, err
}

func (t *streamTransport) dial(ctx context.Context) (net.Conn, error) {
	if t.tlsConfig != nil {
		dialer := tls.Dialer{Config: t.tlsConfig}
		return dialer.DialContext(ctx, "tcp", t.address)
	}
	var dialer net.Dialer
	return dialer.DialContext(ctx, t.network, t.address)
}

type closeWriter interface {
	CloseWrite() error
}

// exchangeStream writes the request, half-closes the connection and reads until the server closes its end.
func exchangeStream(conn net.Conn, request []byte) ([]byte, error) {
	if _, err := conn.Write(request); err != nil {
		return nil, errors.Wrap(err, "write request")
	}
	if cw, ok := conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			return nil, errors.Wrap(err, "close write side")
		}
	}
	response, err := io.ReadAll(conn)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	return response, nil
}

// exchangeFramed keeps the session open and returns as soon as one complete JSON value was received.
func exchangeFramed(conn net.Conn, request []byte) ([]byte, error) {
	ch := channel.RawJSON(conn, conn)
	defer ch.Close()
	if err := ch.Send(request); err != nil {
		return nil, errors.Wrap(err, "write request")
	}
	response, err := ch.Recv()
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, libovsdb.WrapError(libovsdb.InvalidResponseJSON, "response is not JSON", err)
		}
		return nil, errors.Wrap(err, "read response")
	}
	return response, nil
}

// parseEndpoint splits "tcp:host:port", "ssl:host:port" and "unix:/path" endpoints. A bare address is
// classified with jrpc2.Network.
func parseEndpoint(endpoint string) (network, address string, err error) {
	if endpoint == "" {
		return "", "", libovsdb.NewError(libovsdb.ConnectionError, "empty endpoint", "")
	}
	scheme, rest, found := strings.Cut(endpoint, ":")
	if found {
		switch scheme {
		case "tcp", "ssl", "unix":
			if rest == "" {
				return "", "", libovsdb.NewError(libovsdb.ConnectionError, "invalid endpoint", endpoint)
			}
			return scheme, rest, nil
		case "ptcp", "punix", "pssl":
			return "", "", libovsdb.NewError(libovsdb.ConnectionError, "unsupported endpoint", endpoint)
		}
	}
	return jrpc2.Network(endpoint), endpoint, nil
}
