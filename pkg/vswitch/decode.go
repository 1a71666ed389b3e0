package vswitch

import (
	"math"

	"github.com/samber/lo"

	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

// PortFromRow decodes a Port table row. A non-empty trunks set makes a Trunk port, otherwise a tag makes an
// Access port, otherwise the port is a Trunk with no VLAN restriction.
func PortFromRow(row libovsdb.ResultRow) (Port, error) {
	name, err := row.StringColumn(ColName)
	if err != nil {
		return Port{}, err
	}
	id, err := row.UUIDColumn(libovsdb.COL_UUID)
	if err != nil {
		return Port{}, err
	}
	mode, err := portModeFromRow(row)
	if err != nil {
		return Port{}, err
	}
	return Port{Name: name, UUID: id, Mode: mode}, nil
}

func portModeFromRow(row libovsdb.ResultRow) (PortMode, error) {
	trunks, err := row.IntegerSetColumn(ColTrunks)
	if err != nil {
		return nil, err
	}
	if len(trunks) > 0 {
		vlans := make([]uint16, 0, len(trunks))
		for _, t := range trunks {
			vlan, err := toVLAN(ColTrunks, t)
			if err != nil {
				return nil, err
			}
			vlans = append(vlans, vlan)
		}
		return Trunk{VLANs: vlans}, nil
	}
	tag, present, err := row.OptionalIntegerColumn(ColTag)
	if err != nil {
		return nil, err
	}
	if present {
		vlan, err := toVLAN(ColTag, tag)
		if err != nil {
			return nil, err
		}
		return Access{VLAN: vlan}, nil
	}
	return Trunk{VLANs: []uint16{}}, nil
}

func toVLAN(column string, n int64) (uint16, error) {
	if n < 0 || n > math.MaxUint16 {
		return 0, libovsdb.NewError(libovsdb.UnexpectedResponse, "vlan out of range", column)
	}
	return uint16(n), nil
}

// PortsFromRows decodes Port rows, keeping the server's row order.
func PortsFromRows(rows []libovsdb.ResultRow) ([]Port, error) {
	ports := make([]Port, 0, len(rows))
	for _, row := range rows {
		port, err := PortFromRow(row)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}
	return ports, nil
}

// BridgesFromRows decodes Bridge rows and resolves their port references against ports. References to
// unknown ports are skipped.
func BridgesFromRows(rows []libovsdb.ResultRow, ports []Port) ([]Bridge, error) {
	portsByUUID := lo.KeyBy(ports, func(p Port) string {
		return p.UUID
	})
	bridges := make([]Bridge, 0, len(rows))
	for _, row := range rows {
		name, err := row.StringColumn(ColName)
		if err != nil {
			return nil, err
		}
		id, err := row.UUIDColumn(libovsdb.COL_UUID)
		if err != nil {
			return nil, err
		}
		refs, err := row.UUIDSetColumn(ColPorts)
		if err != nil {
			return nil, err
		}
		bridges = append(bridges, Bridge{
			Name: name,
			UUID: id,
			Ports: lo.FilterMap(refs, func(ref string, _ int) (Port, bool) {
				p, ok := portsByUUID[ref]
				return p, ok
			}),
			PortUUIDs: refs,
		})
	}
	return bridges, nil
}
