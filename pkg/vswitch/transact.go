package vswitch

import (
	"github.com/samber/lo"

	"github.com/ibm/ovsdb-portctl/pkg/common"
	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

type addPortOptions struct {
	portsGuard bool
}

// AddPortOption configures BuildAddPort.
type AddPortOption func(*addPortOptions)

// WithPortsGuard prepends a wait operation that fails the transaction when the bridge's ports changed since
// they were fetched.
func WithPortsGuard() AddPortOption {
	return func(o *addPortOptions) {
		o.portsGuard = true
	}
}

// AddPortTransaction is the transaction creating a port and attaching it to a bridge.
type AddPortTransaction struct {
	Operations []libovsdb.Operation
	// uuid-names of the inserted Interface and Port rows
	InterfaceName libovsdb.NamedUUID
	PortName      libovsdb.NamedUUID
}

func (t *AddPortTransaction) Transact() *libovsdb.Transact {
	return &libovsdb.Transact{DBName: Database, Operations: t.Operations}
}

// BuildAddPort builds the transaction inserting an Interface and a Port named portName and appending the
// port to the ports of bridgeName. ports and bridges are the current content of the database.
func BuildAddPort(ports []Port, bridges []Bridge, bridgeName, portName string, mode PortMode, opts ...AddPortOption) (*AddPortTransaction, error) {
	options := addPortOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if lo.ContainsBy(ports, func(p Port) bool { return p.Name == portName }) {
		return nil, libovsdb.NewError(libovsdb.InconsistentInstruction, "interface already exists", portName)
	}
	bridge, found := lo.Find(bridges, func(b Bridge) bool { return b.Name == bridgeName })
	if !found {
		return nil, libovsdb.NewError(libovsdb.InconsistentInstruction, "bridge not found", bridgeName)
	}
	portRow, err := newPortRow(portName, mode)
	if err != nil {
		return nil, err
	}

	txn := &AddPortTransaction{
		InterfaceName: common.NewNamedUUID(),
		PortName:      common.NewNamedUUID(),
	}
	portRow[ColInterfaces] = txn.InterfaceName

	existing := bridge.PortUUIDs
	if existing == nil {
		existing = lo.Map(bridge.Ports, func(p Port, _ int) string { return p.UUID })
	}
	refs := make([]interface{}, 0, len(existing)+1)
	for _, ref := range common.ToUUIDSlice(existing) {
		refs = append(refs, ref)
	}
	refs = append(refs, txn.PortName)

	where := []interface{}{libovsdb.NewCondition(libovsdb.COL_UUID, "==", common.ToUUID(bridge.UUID))}

	if options.portsGuard {
		timeout := 0
		txn.Operations = append(txn.Operations, libovsdb.Operation{
			Op:      libovsdb.OperationWait,
			Table:   TableBridge,
			Where:   where,
			Columns: []string{ColPorts},
			Until:   "==",
			Rows:    []map[string]interface{}{{ColPorts: libovsdb.OvsSet{GoSet: refs[:len(refs)-1]}}},
			Timeout: &timeout,
		})
	}

	txn.Operations = append(txn.Operations,
		libovsdb.Operation{
			Op:       libovsdb.OperationInsert,
			Table:    TableInterface,
			Row:      map[string]interface{}{ColName: portName, ColType: ""},
			UUIDName: string(txn.InterfaceName),
		},
		libovsdb.Operation{
			Op:       libovsdb.OperationInsert,
			Table:    TablePort,
			Row:      portRow,
			UUIDName: string(txn.PortName),
		},
		libovsdb.Operation{
			Op:    libovsdb.OperationUpdate,
			Table: TableBridge,
			Where: where,
			Row:   map[string]interface{}{ColPorts: libovsdb.OvsSet{GoSet: refs}},
		},
	)
	return txn, nil
}

// newPortRow sets exactly one of tag and trunks.
func newPortRow(portName string, mode PortMode) (map[string]interface{}, error) {
	row := map[string]interface{}{ColName: portName}
	switch m := mode.(type) {
	case Access:
		row[ColTag] = m.VLAN
	case Trunk:
		trunks, err := libovsdb.NewOvsSet(m.VLANs)
		if err != nil {
			return nil, err
		}
		row[ColTrunks] = trunks
	default:
		return nil, libovsdb.NewError(libovsdb.InconsistentInstruction, "port mode not set", portName)
	}
	return row, nil
}
