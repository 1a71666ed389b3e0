package libovsdb

import (
	"encoding/json"
	"fmt"
)

// OvsMap is the JSON map structure used for OVSDB
// RFC 7047 uses the following notation for map as JSON doesnt support non-string keys for maps.
// A 2-element JSON array that represents a database map value.  The
// first element of the array must be the string "map", and the
// second element must be an array of zero or more <pair>s giving the
// values in the map.  All of the <pair>s must have the same key and
// value types.
// Maps are only decoded: no column the client writes is a map.
type OvsMap struct {
	GoMap map[interface{}]interface{}
}

// UnmarshalJSON unmarshalls an OVSDB style Map from a byte array
func (o *OvsMap) UnmarshalJSON(b []byte) error {
	var oMap []interface{}
	if err := json.Unmarshal(b, &oMap); err != nil {
		return err
	}
	if len(oMap) != 2 || oMap[0] != "map" {
		return fmt.Errorf("expected [\"map\", [...]], got %s", string(b))
	}
	innerSlice, ok := oMap[1].([]interface{})
	if !ok {
		return fmt.Errorf("innerSlice type is not []interface{}, it's %T", oMap[1])
	}
	o.GoMap = make(map[interface{}]interface{}, len(innerSlice))
	for _, val := range innerSlice {
		f, ok := val.([]interface{})
		if !ok || len(f) != 2 {
			return fmt.Errorf("map pair is not a 2-element array: %v", val)
		}
		key, err := ovsSliceToGoNotation(f[0])
		if err != nil {
			return err
		}
		value, err := ovsSliceToGoNotation(f[1])
		if err != nil {
			return err
		}
		o.GoMap[key] = value
	}
	return nil
}
