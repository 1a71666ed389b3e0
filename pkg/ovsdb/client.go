// Package ovsdb is a client for the Open_vSwitch database. Every call opens its own connection, sends a
// single transact request and closes the connection once the response was read.
package ovsdb

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/klog/v2"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
	"github.com/ibm/ovsdb-portctl/pkg/vswitch"
)

const DefaultPort = 6632

type options struct {
	timeout    time.Duration
	logger     *logr.Logger
	transport  Transport
	framed     bool
	portsGuard bool
	tlsConfig  *tls.Config
}

// Option configures a Client.
type Option func(*options)

// WithTimeout bounds every call, dial included. The default is to wait forever.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.logger = &log
	}
}

// WithTransport replaces the network transport, the endpoint is then only used in log messages.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithFramedResponses reads a single JSON response instead of waiting for the server to close the
// connection, for servers that keep sessions open.
func WithFramedResponses() Option {
	return func(o *options) {
		o.framed = true
	}
}

// WithTLSConfig sets the configuration used for "ssl:" endpoints, see NewTLSConfig.
func WithTLSConfig(conf *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = conf
	}
}

// WithPortsGuard makes AddPort fail when the bridge's ports change between the read and the write.
func WithPortsGuard() Option {
	return func(o *options) {
		o.portsGuard = true
	}
}

type Client struct {
	endpoint    string
	transport   Transport
	log         logr.Logger
	nextID      atomic.Uint64
	addPortOpts []vswitch.AddPortOption
}

// Connect creates a client for the database listening on host:port. No connection is made until the first
// call.
func Connect(host string, port int, opts ...Option) (*Client, error) {
	if host == "" {
		return nil, libovsdb.NewError(libovsdb.ConnectionError, "empty host", "")
	}
	if port < 1 || port > 65535 {
		return nil, libovsdb.NewError(libovsdb.ConnectionError, "invalid port", strconv.Itoa(port))
	}
	return newClient("tcp", net.JoinHostPort(host, strconv.Itoa(port)), opts...)
}

// ConnectEndpoint creates a client for an endpoint of the form "tcp:host:port", "ssl:host:port",
// "unix:/path" or a bare address. "ssl:" endpoints need WithTLSConfig.
func ConnectEndpoint(endpoint string, opts ...Option) (*Client, error) {
	network, address, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return newClient(network, address, opts...)
}

func newClient(network, address string, opts ...Option) (*Client, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client{
		endpoint:  network + ":" + address,
		transport: o.transport,
	}
	if c.transport == nil {
		t := &streamTransport{network: network, address: address, timeout: o.timeout, framed: o.framed}
		if network == "ssl" {
			if o.tlsConfig == nil {
				return nil, libovsdb.NewError(libovsdb.ConnectionError, "ssl endpoint without TLS configuration", c.endpoint)
			}
			t.tlsConfig = o.tlsConfig
		}
		c.transport = t
	}
	if o.logger != nil {
		c.log = *o.logger
	} else {
		c.log = klog.Background().WithName("ovsdb-client")
	}
	c.log = c.log.WithValues("endpoint", c.endpoint)
	if o.portsGuard {
		c.addPortOpts = append(c.addPortOpts, vswitch.WithPortsGuard())
	}
	return c, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Transact sends txn and returns the validated response.
func (c *Client) Transact(ctx context.Context, txn *libovsdb.Transact) (*libovsdb.TransactResponse, error) {
	id := c.nextID.Add(1)
	request, err := json.Marshal(libovsdb.NewTransactRequest(id, txn))
	if err != nil {
		return nil, libovsdb.WrapError(libovsdb.InconsistentInstruction, "cannot encode request", err)
	}
	c.log.V(5).Info("transact", "id", id, "db", txn.DBName, "operations", len(txn.Operations))
	c.log.V(7).Info("request", "id", id, "data", string(request))

	raw, err := c.transport.RoundTrip(ctx, request)
	if err != nil {
		if _, ok := err.(*libovsdb.Error); ok {
			return nil, err
		}
		return nil, libovsdb.WrapError(libovsdb.ConnectionError, "transport failure", err)
	}
	c.log.V(7).Info("response", "id", id, "data", string(raw))

	resp, err := parseResponse(raw)
	if err != nil {
		c.log.V(5).Info("transact failed", "id", id, "error", err.Error())
		return nil, err
	}
	return resp, nil
}

func (c *Client) selectRows(ctx context.Context, op libovsdb.Operation) ([]libovsdb.ResultRow, error) {
	resp, err := c.Transact(ctx, vswitch.SelectTransact(op))
	if err != nil {
		return nil, err
	}
	return vswitch.SelectedRows(resp)
}

// ListPorts returns every port in the server's row order.
func (c *Client) ListPorts(ctx context.Context) ([]vswitch.Port, error) {
	rows, err := c.selectRows(ctx, vswitch.SelectPorts())
	if err != nil {
		return nil, err
	}
	return vswitch.PortsFromRows(rows)
}

// ListBridges returns every bridge with its ports resolved. Ports are fetched again for every call.
func (c *Client) ListBridges(ctx context.Context) ([]vswitch.Bridge, error) {
	rows, err := c.selectRows(ctx, vswitch.SelectBridges())
	if err != nil {
		return nil, err
	}
	ports, err := c.ListPorts(ctx)
	if err != nil {
		return nil, err
	}
	return vswitch.BridgesFromRows(rows, ports)
}

// AddPort creates port portName with the given mode and attaches it to bridgeName. A nil error means the
// database committed the transaction.
func (c *Client) AddPort(ctx context.Context, bridgeName, portName string, mode vswitch.PortMode) error {
	ports, err := c.ListPorts(ctx)
	if err != nil {
		return err
	}
	bridges, err := c.ListBridges(ctx)
	if err != nil {
		return err
	}
	txn, err := vswitch.BuildAddPort(ports, bridges, bridgeName, portName, mode, c.addPortOpts...)
	if err != nil {
		return err
	}
	if _, err := c.Transact(ctx, txn.Transact()); err != nil {
		return err
	}
	c.log.V(5).Info("port added", "bridge", bridgeName, "port", portName)
	return nil
}

// Ping checks that the database answers a query.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Transact(ctx, vswitch.SelectTransact(vswitch.SelectPorts()))
	return err
}
