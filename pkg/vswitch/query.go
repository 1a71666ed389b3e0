package vswitch

import (
	"github.com/ibm/ovsdb-portctl/pkg/libovsdb"
)

const (
	Database = "Open_vSwitch"

	TableBridge    = "Bridge"
	TablePort      = "Port"
	TableInterface = "Interface"

	ColName       = "name"
	ColType       = "type"
	ColTag        = "tag"
	ColTrunks     = "trunks"
	ColPorts      = "ports"
	ColInterfaces = "interfaces"
)

// SelectPorts returns the operation selecting every row of the Port table.
func SelectPorts() libovsdb.Operation {
	return libovsdb.Operation{Op: libovsdb.OperationSelect, Table: TablePort, Where: []interface{}{}}
}

// SelectBridges returns the operation selecting every row of the Bridge table.
func SelectBridges() libovsdb.Operation {
	return libovsdb.Operation{Op: libovsdb.OperationSelect, Table: TableBridge, Where: []interface{}{}}
}

// SelectTransact wraps a single select into a transaction against the Open_vSwitch database.
func SelectTransact(op libovsdb.Operation) *libovsdb.Transact {
	return &libovsdb.Transact{DBName: Database, Operations: []libovsdb.Operation{op}}
}

// SelectedRows returns the rows of the first operation result of a select transaction.
func SelectedRows(resp *libovsdb.TransactResponse) ([]libovsdb.ResultRow, error) {
	if resp == nil || len(resp.Result) == 0 {
		return nil, libovsdb.NewError(libovsdb.UnexpectedResponse, "missing select result", "result")
	}
	rows := resp.Result[0].Rows
	if rows == nil {
		return nil, libovsdb.NewError(libovsdb.UnexpectedResponse, "missing select rows", "rows")
	}
	return *rows, nil
}
