package client

import (
	"context"
	"errors"

	"github.com/apache/thrift/lib/go/thrift"
)

// HbaseClient speaks the HBase Thrift (v1) gateway protocol. Only the calls
// needed for reading rows are implemented.
type HbaseClient struct {
	c thrift.TClient
}

// NewHbaseClient wraps an established thrift client.
func NewHbaseClient(c thrift.TClient) *HbaseClient {
	return &HbaseClient{c: c}
}

type callArgs struct {
	name   string
	fields []field
}

func (a *callArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, a.name, a.fields...)
}

func (a *callArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return errors.New(a.name + " is write only")
}

// callResult decodes a reply: field 0 carries the return value, fields 1 and
// 2 the declared exceptions.
type callResult struct {
	name        string
	successType thrift.TType
	success     func(ctx context.Context, p thrift.TProtocol) error
	io          *IOError
	ia          *IllegalArgument
}

func (r *callResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, r.name, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		switch {
		case id == 0 && r.success != nil && typ == r.successType:
			return true, r.success(ctx, p)
		case id == 1 && typ == thrift.STRUCT:
			r.io = &IOError{}
			return true, r.io.Read(ctx, p)
		case id == 2 && typ == thrift.STRUCT:
			r.ia = &IllegalArgument{}
			return true, r.ia.Read(ctx, p)
		}
		return false, nil
	})
}

func (r *callResult) Write(ctx context.Context, p thrift.TProtocol) error {
	var fields []field
	if r.io != nil {
		fields = append(fields, field{name: "io", id: 1, typ: thrift.STRUCT, write: r.io.Write})
	}
	if r.ia != nil {
		fields = append(fields, field{name: "ia", id: 2, typ: thrift.STRUCT, write: r.ia.Write})
	}
	return writeStruct(ctx, p, r.name, fields...)
}

func (r *callResult) err() error {
	switch {
	case r.io != nil:
		return r.io
	case r.ia != nil:
		return r.ia
	}
	return nil
}

func (h *HbaseClient) call(ctx context.Context, method string, args []field, result *callResult) error {
	result.name = method + "_result"
	if _, err := h.c.Call(ctx, method, &callArgs{name: method + "_args", fields: args}, result); err != nil {
		return err
	}
	return result.err()
}

func (h *HbaseClient) callScannerID(ctx context.Context, method string, args []field) (int32, error) {
	var id int32
	result := &callResult{successType: thrift.I32, success: func(ctx context.Context, p thrift.TProtocol) (err error) {
		id, err = p.ReadI32(ctx)
		return err
	}}
	if err := h.call(ctx, method, args, result); err != nil {
		return 0, err
	}
	return id, nil
}

func (h *HbaseClient) callRows(ctx context.Context, method string, args []field) ([]*TRowResult, error) {
	var rows []*TRowResult
	result := &callResult{successType: thrift.LIST, success: func(ctx context.Context, p thrift.TProtocol) (err error) {
		rows, err = readRowResults(ctx, p)
		return err
	}}
	if err := h.call(ctx, method, args, result); err != nil {
		return nil, err
	}
	return rows, nil
}

// ScannerOpen opens a scanner over table starting at startRow, restricted to
// columns. A column ending with ':' selects the whole family.
func (h *HbaseClient) ScannerOpen(ctx context.Context, table string, startRow []byte, columns []string) (int32, error) {
	return h.callScannerID(ctx, "scannerOpen", []field{
		binaryField("tableName", 1, []byte(table)),
		binaryField("startRow", 2, startRow),
		stringListField("columns", 3, columns),
		attributesField(4),
	})
}

// ScannerOpenTs is ScannerOpen returning only cells written before ts.
func (h *HbaseClient) ScannerOpenTs(ctx context.Context, table string, startRow []byte, columns []string, ts int64) (int32, error) {
	return h.callScannerID(ctx, "scannerOpenTs", []field{
		binaryField("tableName", 1, []byte(table)),
		binaryField("startRow", 2, startRow),
		stringListField("columns", 3, columns),
		i64Field("timestamp", 4, ts),
		attributesField(5),
	})
}

// ScannerGetList returns up to n rows from an open scanner. An empty result
// means the scanner is exhausted.
func (h *HbaseClient) ScannerGetList(ctx context.Context, id int32, n int32) ([]*TRowResult, error) {
	return h.callRows(ctx, "scannerGetList", []field{
		i32Field("id", 1, id),
		i32Field("nbRows", 2, n),
	})
}

// ScannerClose releases a scanner on the gateway.
func (h *HbaseClient) ScannerClose(ctx context.Context, id int32) error {
	return h.call(ctx, "scannerClose", []field{i32Field("id", 1, id)}, &callResult{})
}

// GetRows fetches the given rows with all their columns. Missing rows are
// simply absent from the result.
func (h *HbaseClient) GetRows(ctx context.Context, table string, rows [][]byte) ([]*TRowResult, error) {
	return h.callRows(ctx, "getRows", []field{
		binaryField("tableName", 1, []byte(table)),
		binaryListField("rows", 2, rows),
		attributesField(3),
	})
}

// GetRowsWithColumns is GetRows restricted to columns.
func (h *HbaseClient) GetRowsWithColumns(ctx context.Context, table string, rows [][]byte, columns []string) ([]*TRowResult, error) {
	return h.callRows(ctx, "getRowsWithColumns", []field{
		binaryField("tableName", 1, []byte(table)),
		binaryListField("rows", 2, rows),
		stringListField("columns", 3, columns),
		attributesField(4),
	})
}
