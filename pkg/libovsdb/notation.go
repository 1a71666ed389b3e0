package libovsdb

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// OperationInsert is an insert operation
	OperationInsert = "insert"
	// OperationSelect is a select operation
	OperationSelect = "select"
	// OperationUpdate is an update operation
	OperationUpdate = "update"
	// OperationWait is a wait operation
	OperationWait = "wait"

	// MethodTransact is the RFC7047 "transact" JSON-RPC method
	MethodTransact = "transact"

	COL_UUID = "_uuid"
)

// Operation represents an operation according to RFC7047 section 5.2
type Operation struct {
	Op       string                   `json:"op"`
	Table    string                   `json:"table"`
	Row      map[string]interface{}   `json:"row,omitempty"`
	Rows     []map[string]interface{} `json:"rows,omitempty"`
	Columns  []string                 `json:"columns,omitempty"`
	Timeout  *int                     `json:"timeout,omitempty"`
	Where    []interface{}            `json:"where,omitempty"`
	Until    string                   `json:"until,omitempty"`
	UUIDName string                   `json:"uuid-name,omitempty"`
}

// String, serialize Operation
func (o Operation) String() string {
	buf, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf("<malformed %s operation: %v>", o.Op, err)
	}
	return string(buf)
}

// MarshalJSON marshalls 'Operation' to a byte array
// For 'select' operations, we dont omit the 'Where' field
// to allow selecting all rows of a table
func (o Operation) MarshalJSON() ([]byte, error) {
	type OpAlias Operation
	switch o.Op {
	case OperationSelect:
		where := o.Where
		if where == nil {
			where = make([]interface{}, 0)
		}
		return json.Marshal(&struct {
			Where []interface{} `json:"where"`
			OpAlias
		}{
			Where:   where,
			OpAlias: (OpAlias)(o),
		})
	default:
		return json.Marshal(&struct {
			OpAlias
		}{
			OpAlias: (OpAlias)(o),
		})
	}
}

// NewCondition creates a new condition as specified in RFC7047
func NewCondition(column string, function string, value interface{}) []interface{} {
	return []interface{}{column, function, value}
}

// Transact represents the request of a Transact call
type Transact struct {
	DBName     string      `json:"dbname"`
	Operations []Operation `json:"operations"`
}

// Params returns the positional "params" array of the transact method: the database name followed by
// the operations.
func (t *Transact) Params() []interface{} {
	params := make([]interface{}, 0, len(t.Operations)+1)
	params = append(params, t.DBName)
	for _, op := range t.Operations {
		params = append(params, op)
	}
	return params
}

// NewTransact parses the positional params of a transact request.
func NewTransact(params []interface{}) (*Transact, error) {
	if len(params) < 2 {
		return nil, errors.New("malformed transaction")
	}

	tx := new(Transact)
	for i, v := range params {
		switch i {
		case 0:
			dbname, ok := v.(string)
			if !ok {
				return nil, errors.New("malformed transaction")
			}
			tx.DBName = dbname
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, errors.New("malformed transaction")
			}
			var op Operation
			err = json.Unmarshal(b, &op)
			if err != nil {
				return nil, errors.New("malformed transaction")
			}
			tx.Operations = append(tx.Operations, op)
		}
	}

	return tx, nil
}

// Request is a JSON-RPC 1.0 request as used by OVSDB.
type Request struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
	ID     uint64        `json:"id"`
}

// NewTransactRequest wraps a transaction into a "transact" request carrying the given id.
func NewTransactRequest(id uint64, txn *Transact) Request {
	return Request{Method: MethodTransact, Params: txn.Params(), ID: id}
}

// TransactResponse represents the response to a Transact Operation
type TransactResponse struct {
	Result []OperationResult `json:"result"`
	Error  interface{}       `json:"error,omitempty"`
	ID     interface{}       `json:"id,omitempty"`
}

// OperationResult is the result of an Operation
type OperationResult struct {
	Count   *int         `json:"count,omitempty"`
	Error   *string      `json:"error,omitempty"`
	Details *string      `json:"details,omitempty"`
	UUID    *UUID        `json:"uuid,omitempty"`
	Rows    *[]ResultRow `json:"rows,omitempty"`
}

// ovsSliceToGoNotation converts the tagged wrappers <uuid>, <named-uuid>, <set> and <map> into their Go
// notation. Anything else, including arrays that are not wrappers, is returned untouched.
func ovsSliceToGoNotation(val interface{}) (interface{}, error) {
	sl, ok := val.([]interface{})
	if !ok || len(sl) != 2 {
		return val, nil
	}
	tag, ok := sl[0].(string)
	if !ok {
		return val, nil
	}
	bsliced, err := json.Marshal(sl)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "uuid":
		var uuid UUID
		err = json.Unmarshal(bsliced, &uuid)
		return uuid, err
	case "named-uuid":
		var named NamedUUID
		err = json.Unmarshal(bsliced, &named)
		return named, err
	case "set":
		var oSet OvsSet
		err = json.Unmarshal(bsliced, &oSet)
		return oSet, err
	case "map":
		var oMap OvsMap
		err = json.Unmarshal(bsliced, &oMap)
		return oMap, err
	}
	return val, nil
}
