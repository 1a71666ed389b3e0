package ovsdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

type transportFunc func(ctx context.Context, request []byte) ([]byte, error)

func (f transportFunc) RoundTrip(ctx context.Context, request []byte) ([]byte, error) {
	return f(ctx, request)
}

type recordedRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
}

func (r recordedRequest) operations(t *testing.T) []libovsdb.Operation {
	t.Helper()
	txn, err := libovsdb.NewTransact(r.Params)
	require.NoError(t, err)
	return txn.Operations
}

// fakeDB answers selects on Port and Bridge with canned rows and acknowledges every other transaction.
type fakeDB struct {
	mu       sync.Mutex
	ports    string
	bridges  string
	commit   string
	requests []recordedRequest
}

func newFakeDB() *fakeDB {
	return &fakeDB{ports: `[]`, bridges: `[]`}
}

func (db *fakeDB) RoundTrip(_ context.Context, request []byte) ([]byte, error) {
	return db.handle(request), nil
}

func (db *fakeDB) handle(request []byte) []byte {
	db.mu.Lock()
	defer db.mu.Unlock()
	var req recordedRequest
	if err := json.Unmarshal(request, &req); err != nil {
		return []byte(fmt.Sprintf(`{"result":null,"error":%q,"id":null}`, err.Error()))
	}
	db.requests = append(db.requests, req)

	var op libovsdb.Operation
	if txn, err := libovsdb.NewTransact(req.Params); err == nil {
		op = txn.Operations[0]
	}
	var result string
	switch {
	case op.Op == libovsdb.OperationSelect && op.Table == "Port":
		result = `[{"rows":` + db.ports + `}]`
	case op.Op == libovsdb.OperationSelect && op.Table == "Bridge":
		result = `[{"rows":` + db.bridges + `}]`
	case db.commit != "":
		result = db.commit
	default:
		result = `[{"uuid":["uuid","new-iface"]},{"uuid":["uuid","new-port"]},{"count":1}]`
	}
	return []byte(fmt.Sprintf(`{"result":%s,"error":null,"id":%d}`, result, req.ID))
}

func (db *fakeDB) recorded() []recordedRequest {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]recordedRequest(nil), db.requests...)
}

// serveStream answers one request per connection: it reads until the client half-closes, then writes the
// response and closes.
func serveStream(t *testing.T, handle func([]byte) []byte) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				request, err := io.ReadAll(conn)
				if err != nil {
					return
				}
				_, _ = conn.Write(handle(request))
			}(conn)
		}
	}()
	return l
}

// serveFramed answers one JSON request per connection and keeps the connection open until the client
// closes it.
func serveFramed(t *testing.T, handle func([]byte) []byte) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				var request json.RawMessage
				if err := json.NewDecoder(conn).Decode(&request); err != nil {
					return
				}
				_, _ = conn.Write(handle(request))
				_, _ = io.Copy(io.Discard, conn)
			}(conn)
		}
	}()
	return l
}

func listenerPort(l net.Listener) int {
	return l.Addr().(*net.TCPAddr).Port
}
