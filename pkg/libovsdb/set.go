package libovsdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// OvsSet is the JSON set structure used for OVSDB
// RFC 7047: a 2-element JSON array that represents a database set value. The first element of the array
// must be the string "set", and the second element must be an array of zero or more <atom>s giving the
// values in the set.
type OvsSet struct {
	GoSet []interface{}
}

// NewOvsSet creates a new OVSDB style set from a Go slice
func NewOvsSet(goSlice interface{}) (OvsSet, error) {
	v := reflect.ValueOf(goSlice)
	if v.Kind() != reflect.Slice {
		return OvsSet{}, errors.New("OvsSet supports only Go Slice types")
	}

	ovsSet := make([]interface{}, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		ovsSet = append(ovsSet, v.Index(i).Interface())
	}
	return OvsSet{ovsSet}, nil
}

// MarshalJSON will marshal an OVSDB style Set in to a JSON byte array. The element order is kept as is.
func (o OvsSet) MarshalJSON() ([]byte, error) {
	elements := o.GoSet
	if elements == nil {
		elements = []interface{}{}
	}
	return json.Marshal([]interface{}{"set", elements})
}

// UnmarshalJSON will unmarshal a JSON byte array to an OVSDB style Set. Elements that are themselves
// wrapped (e.g. a set of ["uuid", id] pairs) are converted to their Go notation.
func (o *OvsSet) UnmarshalJSON(b []byte) error {
	var oSet []interface{}
	if err := json.Unmarshal(b, &oSet); err != nil {
		return err
	}
	if len(oSet) != 2 || oSet[0] != "set" {
		return fmt.Errorf("expected [\"set\", [...]], got %s", string(b))
	}
	innerSet, ok := oSet[1].([]interface{})
	if !ok {
		return fmt.Errorf("set payload is not an array: %T", oSet[1])
	}
	o.GoSet = make([]interface{}, 0, len(innerSet))
	for _, val := range innerSet {
		goVal, err := ovsSliceToGoNotation(val)
		if err != nil {
			return err
		}
		o.GoSet = append(o.GoSet, goVal)
	}
	return nil
}
