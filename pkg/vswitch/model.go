// Package vswitch holds the Open_vSwitch domain model (bridges, ports and their VLAN mode) together with
// the queries and transactions the client issues against it.
package vswitch

import (
	"encoding/json"
)

// PortMode is the VLAN configuration of a port, either Access or Trunk.
type PortMode interface {
	isPortMode()
}

// Access is a port carrying a single untagged VLAN.
type Access struct {
	VLAN uint16
}

// Trunk is a port carrying tagged VLANs. An empty list means all VLANs.
type Trunk struct {
	VLANs []uint16
}

func (Access) isPortMode() {}
func (Trunk) isPortMode()  {}

// ModesEqual compares two modes by value. A nil trunk list equals an empty one.
func ModesEqual(a, b PortMode) bool {
	switch a := a.(type) {
	case Access:
		b, ok := b.(Access)
		return ok && a.VLAN == b.VLAN
	case Trunk:
		b, ok := b.(Trunk)
		if !ok || len(a.VLANs) != len(b.VLANs) {
			return false
		}
		for i := range a.VLANs {
			if a.VLANs[i] != b.VLANs[i] {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

type Port struct {
	Name string
	UUID string
	Mode PortMode
}

type portJSON struct {
	Name   string   `json:"name"`
	UUID   string   `json:"uuid"`
	Mode   string   `json:"mode"`
	Tag    *uint16  `json:"tag,omitempty"`
	Trunks []uint16 `json:"trunks,omitempty"`
}

func (p Port) MarshalJSON() ([]byte, error) {
	out := portJSON{Name: p.Name, UUID: p.UUID}
	switch m := p.Mode.(type) {
	case Access:
		out.Mode = "access"
		out.Tag = &m.VLAN
	case Trunk:
		out.Mode = "trunk"
		out.Trunks = m.VLANs
	}
	return json.Marshal(out)
}

// Bridge is a bridge row with its ports resolved.
type Bridge struct {
	Name  string `json:"name"`
	UUID  string `json:"uuid"`
	Ports []Port `json:"ports"`
	// PortUUIDs is the bridge's "ports" column as stored, including references that did not resolve.
	PortUUIDs []string `json:"-"`
}
