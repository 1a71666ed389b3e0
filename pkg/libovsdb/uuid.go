package libovsdb

import (
	"encoding/json"
	"fmt"
)

// UUID is the <uuid> notation of RFC7047: a 2-element JSON array ["uuid", <id>] referring to an existing
// row.
type UUID struct {
	GoUUID string `json:"uuid"`
}

// MarshalJSON will marshal an OVSDB style UUID to a JSON encoded byte array
func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{"uuid", u.GoUUID})
}

// UnmarshalJSON will unmarshal a JSON encoded byte array to a OVSDB style UUID
func (u *UUID) UnmarshalJSON(b []byte) error {
	id, err := unmarshalTagged(b, "uuid")
	if err != nil {
		return err
	}
	u.GoUUID = id
	return nil
}

func (u UUID) String() string {
	return u.GoUUID
}

// NamedUUID is the <named-uuid> notation of RFC7047: a 2-element JSON array ["named-uuid", <id>] naming a
// row inserted earlier in the same transaction.
type NamedUUID string

func (n NamedUUID) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{"named-uuid", string(n)})
}

func (n *NamedUUID) UnmarshalJSON(b []byte) error {
	id, err := unmarshalTagged(b, "named-uuid")
	if err != nil {
		return err
	}
	*n = NamedUUID(id)
	return nil
}

func unmarshalTagged(b []byte, tag string) (string, error) {
	var pair []interface{}
	if err := json.Unmarshal(b, &pair); err != nil {
		return "", err
	}
	if len(pair) != 2 || pair[0] != tag {
		return "", fmt.Errorf("expected [%q, <id>], got %s", tag, string(b))
	}
	id, ok := pair[1].(string)
	if !ok {
		return "", fmt.Errorf("%s id is not a string: %T", tag, pair[1])
	}
	return id, nil
}
