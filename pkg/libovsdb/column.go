package libovsdb

import (
	"math"
)

// ColumnKind is the shape a column value is expected to have on the wire.
type ColumnKind int

const (
	// ColumnAtomic is a bare string, number or boolean. The column must be present.
	ColumnAtomic ColumnKind = iota
	// ColumnUUID is a ["uuid", <id>] reference. The column must be present.
	ColumnUUID
	// ColumnOptional is a value with at most one element: a bare atom, or a set of zero or one atoms.
	// A missing column is absent, the same as an empty set.
	ColumnOptional
	// ColumnSet is a ["set", [...]] value. A bare atom or reference is a one-element set and a missing
	// column is the empty set.
	ColumnSet
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnAtomic:
		return "atomic"
	case ColumnUUID:
		return "uuid"
	case ColumnOptional:
		return "optional"
	case ColumnSet:
		return "set"
	}
	return "unknown"
}

// Column decodes the named column according to kind and returns its elements in wire order. References
// are returned as their id string. Atomic and uuid columns always yield exactly one element, optional
// columns zero or one.
func (r ResultRow) Column(name string, kind ColumnKind) ([]interface{}, error) {
	elements, err := r.elements(name, kind)
	if err != nil {
		return nil, err
	}
	values := make([]interface{}, 0, len(elements))
	for _, elem := range elements {
		if uuid, ok := elem.(UUID); ok {
			values = append(values, uuid.GoUUID)
			continue
		}
		values = append(values, elem)
	}
	return values, nil
}

// elements returns the column content in Go notation, with references still typed as UUID.
func (r ResultRow) elements(name string, kind ColumnKind) ([]interface{}, error) {
	val, found := r[name]
	switch kind {
	case ColumnAtomic:
		if !found {
			return nil, unexpectedColumn(name, "missing %s column", kind)
		}
		if !isAtom(val) {
			return nil, unexpectedColumn(name, "expected a bare value, got %T", val)
		}
		return []interface{}{val}, nil
	case ColumnUUID:
		if !found {
			return nil, unexpectedColumn(name, "missing %s column", kind)
		}
		uuid, ok := val.(UUID)
		if !ok {
			return nil, unexpectedColumn(name, "expected a uuid, got %T", val)
		}
		return []interface{}{uuid}, nil
	case ColumnOptional:
		if !found {
			return nil, nil
		}
		elements, err := setElements(name, val)
		if err != nil {
			return nil, err
		}
		if len(elements) > 1 {
			return nil, unexpectedColumn(name, "expected at most one value, got %d", len(elements))
		}
		return elements, nil
	case ColumnSet:
		if !found {
			return nil, nil
		}
		return setElements(name, val)
	}
	return nil, unexpectedColumn(name, "unknown column kind %d", int(kind))
}

// setElements accepts a set of atoms or references, or a single bare one.
func setElements(name string, val interface{}) ([]interface{}, error) {
	switch v := val.(type) {
	case OvsSet:
		for _, elem := range v.GoSet {
			if !isAtom(elem) && !isUUID(elem) {
				return nil, unexpectedColumn(name, "unexpected set element %T", elem)
			}
		}
		return v.GoSet, nil
	case UUID:
		return []interface{}{v}, nil
	default:
		if isAtom(val) {
			return []interface{}{val}, nil
		}
	}
	return nil, unexpectedColumn(name, "unexpected value %T", val)
}

func isAtom(val interface{}) bool {
	switch val.(type) {
	case string, float64, bool:
		return true
	}
	return false
}

func isUUID(val interface{}) bool {
	_, ok := val.(UUID)
	return ok
}

// StringColumn returns a bare string column such as "name".
func (r ResultRow) StringColumn(name string) (string, error) {
	values, err := r.Column(name, ColumnAtomic)
	if err != nil {
		return "", err
	}
	s, ok := values[0].(string)
	if !ok {
		return "", unexpectedColumn(name, "expected a string, got %T", values[0])
	}
	return s, nil
}

// UUIDColumn returns the id of a ["uuid", <id>] column such as "_uuid".
func (r ResultRow) UUIDColumn(name string) (string, error) {
	values, err := r.Column(name, ColumnUUID)
	if err != nil {
		return "", err
	}
	return values[0].(string), nil
}

// OptionalIntegerColumn returns an integer column that may be unset, such as "tag". The boolean is false
// when the column is missing or holds the empty set.
func (r ResultRow) OptionalIntegerColumn(name string) (int64, bool, error) {
	values, err := r.Column(name, ColumnOptional)
	if err != nil || len(values) == 0 {
		return 0, false, err
	}
	n, err := toInteger(name, values[0])
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// IntegerSetColumn returns the elements of an integer set column such as "trunks".
func (r ResultRow) IntegerSetColumn(name string) ([]int64, error) {
	values, err := r.Column(name, ColumnSet)
	if err != nil {
		return nil, err
	}
	ints := make([]int64, 0, len(values))
	for _, val := range values {
		n, err := toInteger(name, val)
		if err != nil {
			return nil, err
		}
		ints = append(ints, n)
	}
	return ints, nil
}

// UUIDSetColumn returns the ids of a reference set column such as "ports", in wire order.
func (r ResultRow) UUIDSetColumn(name string) ([]string, error) {
	elements, err := r.elements(name, ColumnSet)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(elements))
	for _, elem := range elements {
		uuid, ok := elem.(UUID)
		if !ok {
			return nil, unexpectedColumn(name, "expected a uuid set element, got %T", elem)
		}
		ids = append(ids, uuid.GoUUID)
	}
	return ids, nil
}

// JSON numbers arrive as float64; an OVSDB integer must be whole and fit in an int64.
func toInteger(name string, val interface{}) (int64, error) {
	f, ok := val.(float64)
	if !ok {
		return 0, unexpectedColumn(name, "expected an integer, got %T", val)
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, unexpectedColumn(name, "%v is not an integer", f)
	}
	return int64(f), nil
}
