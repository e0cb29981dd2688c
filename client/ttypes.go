package client

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// TCell is a single versioned value as returned by the gateway.
type TCell struct {
	Value     []byte
	Timestamp int64
}

func (c *TCell) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TCell", func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typ == thrift.STRING:
			c.Value, err = p.ReadBinary(ctx)
		case id == 2 && typ == thrift.I64:
			c.Timestamp, err = p.ReadI64(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (c *TCell) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TCell",
		binaryField("value", 1, c.Value),
		i64Field("timestamp", 2, c.Timestamp),
	)
}

// TColumn pairs a fully qualified column name with its cell, used by the
// sortedColumns form of a row result.
type TColumn struct {
	ColumnName []byte
	Cell       *TCell
}

func (c *TColumn) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TColumn", func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typ == thrift.STRING:
			c.ColumnName, err = p.ReadBinary(ctx)
		case id == 2 && typ == thrift.STRUCT:
			c.Cell = &TCell{}
			err = c.Cell.Read(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (c *TColumn) Write(ctx context.Context, p thrift.TProtocol) error {
	fields := []field{binaryField("columnName", 1, c.ColumnName)}
	if c.Cell != nil {
		fields = append(fields, field{name: "cell", id: 2, typ: thrift.STRUCT, write: c.Cell.Write})
	}
	return writeStruct(ctx, p, "TColumn", fields...)
}

// TRowResult is one row as returned by get and scanner calls.
type TRowResult struct {
	Row           []byte
	Columns       map[string]*TCell
	SortedColumns []*TColumn
}

func (r *TRowResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TRowResult", func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		switch {
		case id == 1 && typ == thrift.STRING:
			v, err := p.ReadBinary(ctx)
			r.Row = v
			return true, err
		case id == 2 && typ == thrift.MAP:
			return true, r.readColumns(ctx, p)
		case id == 3 && typ == thrift.LIST:
			return true, r.readSortedColumns(ctx, p)
		}
		return false, nil
	})
}

func (r *TRowResult) readColumns(ctx context.Context, p thrift.TProtocol) error {
	_, _, size, err := p.ReadMapBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading map begin: ", err)
	}
	r.Columns = make(map[string]*TCell, size)
	for i := 0; i < size; i++ {
		key, err := p.ReadBinary(ctx)
		if err != nil {
			return err
		}
		cell := &TCell{}
		if err := cell.Read(ctx, p); err != nil {
			return err
		}
		r.Columns[string(key)] = cell
	}
	return p.ReadMapEnd(ctx)
}

func (r *TRowResult) readSortedColumns(ctx context.Context, p thrift.TProtocol) error {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading list begin: ", err)
	}
	r.SortedColumns = make([]*TColumn, 0, size)
	for i := 0; i < size; i++ {
		col := &TColumn{}
		if err := col.Read(ctx, p); err != nil {
			return err
		}
		r.SortedColumns = append(r.SortedColumns, col)
	}
	return p.ReadListEnd(ctx)
}

func (r *TRowResult) Write(ctx context.Context, p thrift.TProtocol) error {
	fields := []field{binaryField("row", 1, r.Row)}
	if r.Columns != nil {
		fields = append(fields, field{name: "columns", id: 2, typ: thrift.MAP, write: func(ctx context.Context, p thrift.TProtocol) error {
			if err := p.WriteMapBegin(ctx, thrift.STRING, thrift.STRUCT, len(r.Columns)); err != nil {
				return err
			}
			for name, cell := range r.Columns {
				if err := p.WriteBinary(ctx, []byte(name)); err != nil {
					return err
				}
				if err := cell.Write(ctx, p); err != nil {
					return err
				}
			}
			return p.WriteMapEnd(ctx)
		}})
	}
	if r.SortedColumns != nil {
		fields = append(fields, field{name: "sortedColumns", id: 3, typ: thrift.LIST, write: func(ctx context.Context, p thrift.TProtocol) error {
			if err := p.WriteListBegin(ctx, thrift.STRUCT, len(r.SortedColumns)); err != nil {
				return err
			}
			for _, col := range r.SortedColumns {
				if err := col.Write(ctx, p); err != nil {
					return err
				}
			}
			return p.WriteListEnd(ctx)
		}})
	}
	return writeStruct(ctx, p, "TRowResult", fields...)
}

// IOError is raised by the gateway when the region server call failed.
type IOError struct {
	Message  string
	CanRetry bool
}

func (e *IOError) Error() string {
	return fmt.Sprintf("hbase io error: %s", e.Message)
}

func (e *IOError) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "IOError", func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typ == thrift.STRING:
			e.Message, err = p.ReadString(ctx)
		case id == 2 && typ == thrift.BOOL:
			e.CanRetry, err = p.ReadBool(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (e *IOError) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "IOError", field{name: "message", id: 1, typ: thrift.STRING, write: func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteString(ctx, e.Message)
	}})
}

// IllegalArgument is raised for calls with a bad argument, for instance an
// unknown scanner id.
type IllegalArgument struct {
	Message string
}

func (e *IllegalArgument) Error() string {
	return fmt.Sprintf("hbase illegal argument: %s", e.Message)
}

func (e *IllegalArgument) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "IllegalArgument", func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		if id != 1 || typ != thrift.STRING {
			return false, nil
		}
		var err error
		e.Message, err = p.ReadString(ctx)
		return true, err
	})
}

func (e *IllegalArgument) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "IllegalArgument", field{name: "message", id: 1, typ: thrift.STRING, write: func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteString(ctx, e.Message)
	}})
}
