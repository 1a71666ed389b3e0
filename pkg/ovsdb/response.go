package ovsdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

// parseResponse validates a transact response document and decodes it. The checks run in order and the
// first failing one determines the error kind.
func parseResponse(raw []byte) (*libovsdb.TransactResponse, error) {
	if !json.Valid(raw) {
		return nil, libovsdb.NewError(libovsdb.InvalidResponseJSON, "response is not JSON", truncate(raw))
	}
	var envelope struct {
		Result []json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Result == nil {
		return nil, libovsdb.NewError(libovsdb.InvalidResponse, "missing result array", compact(raw))
	}
	if len(envelope.Result) == 0 {
		return nil, libovsdb.NewError(libovsdb.InvalidResponse, "empty result array", compact(raw))
	}
	for i, elem := range envelope.Result {
		var opResult map[string]json.RawMessage
		if err := json.Unmarshal(elem, &opResult); err != nil || opResult == nil {
			if i == 0 {
				return nil, libovsdb.NewError(libovsdb.InvalidResponse, "first result is not an object", compact(elem))
			}
			// operations following a failed one have no result
			continue
		}
		// any "error" member fails the transaction, even a null one
		if _, ok := opResult["error"]; ok {
			return nil, libovsdb.NewError(libovsdb.QueryError, fmt.Sprintf("operation %d failed", i), compact(elem))
		}
	}

	var resp libovsdb.TransactResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, libovsdb.WrapError(libovsdb.UnexpectedResponse, "cannot decode response", err)
	}
	return &resp, nil
}

func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

const maxDetail = 256

func truncate(raw []byte) string {
	if len(raw) > maxDetail {
		return string(raw[:maxDetail]) + "..."
	}
	return string(raw)
}
