package common

import (
	"strings"

	guuid "github.com/google/uuid"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

const namedUUIDPrefix = "row"

func ToUUID(s string) libovsdb.UUID {
	return libovsdb.UUID{GoUUID: s}
}

func ToUUIDSlice(v []string) []libovsdb.UUID {
	res := make([]libovsdb.UUID, len(v))
	for i := range res {
		res[i] = ToUUID(v[i])
	}
	return res
}

// NewNamedUUID returns a fresh uuid-name for a row inserted within a transaction. The name is built from a
// random UUID, so it never repeats and never looks like a real row uuid.
// RFC 7047 requires an <id> to match [a-zA-Z_][a-zA-Z0-9_]*, hence the prefix and the underscores.
func NewNamedUUID() libovsdb.NamedUUID {
	return libovsdb.NamedUUID(namedUUIDPrefix + strings.ReplaceAll(guuid.NewString(), "-", "_"))
}
