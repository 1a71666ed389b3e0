package libovsdb

import (
	"encoding/json"
	"fmt"
)

// ResultRow is an properly unmarshalled row returned by Transact
type ResultRow map[string]interface{}

// UnmarshalJSON unmarshalls a byte array to an OVSDB Row, converting every wrapped column value into its
// Go notation.
func (r *ResultRow) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("row is not an object: %s", string(b))
	}
	*r = make(map[string]interface{}, len(raw))
	for key, val := range raw {
		val, err := ovsSliceToGoNotation(val)
		if err != nil {
			return fmt.Errorf("column %s: %w", key, err)
		}
		(*r)[key] = val
	}
	return nil
}

// GetUUID returns the row's own identity, the "_uuid" column.
func (r ResultRow) GetUUID() (string, error) {
	return r.UUIDColumn(COL_UUID)
}
