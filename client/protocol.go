package client

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// fieldReader handles one field of a struct being decoded. It reports false
// when the field is unknown or has an unexpected type, so the caller skips it.
type fieldReader func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error)

func readStruct(ctx context.Context, p thrift.TProtocol, name string, read fieldReader) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s read error: ", name), err)
	}
	for {
		_, typ, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%s field %d read error: ", name, id), err)
		}
		if typ == thrift.STOP {
			break
		}
		ok, err := read(ctx, p, id, typ)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%s field %d read error: ", name, id), err)
		}
		if !ok {
			if err := p.Skip(ctx, typ); err != nil {
				return err
			}
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s read struct end error: ", name), err)
	}
	return nil
}

// field is one argument of an outgoing call.
type field struct {
	name  string
	id    int16
	typ   thrift.TType
	write func(ctx context.Context, p thrift.TProtocol) error
}

func writeStruct(ctx context.Context, p thrift.TProtocol, name string, fields ...field) error {
	if err := p.WriteStructBegin(ctx, name); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s write struct begin error: ", name), err)
	}
	for _, f := range fields {
		if f.write == nil {
			continue
		}
		if err := p.WriteFieldBegin(ctx, f.name, f.typ, f.id); err != nil {
			return thrift.PrependError(fmt.Sprintf("%s write field begin error %d:%s: ", name, f.id, f.name), err)
		}
		if err := f.write(ctx, p); err != nil {
			return thrift.PrependError(fmt.Sprintf("%s.%s (%d) field write error: ", name, f.name, f.id), err)
		}
		if err := p.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	return p.WriteStructEnd(ctx)
}

func binaryField(name string, id int16, v []byte) field {
	return field{name: name, id: id, typ: thrift.STRING, write: func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteBinary(ctx, v)
	}}
}

func i32Field(name string, id int16, v int32) field {
	return field{name: name, id: id, typ: thrift.I32, write: func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI32(ctx, v)
	}}
}

func i64Field(name string, id int16, v int64) field {
	return field{name: name, id: id, typ: thrift.I64, write: func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI64(ctx, v)
	}}
}

func binaryListField(name string, id int16, vs [][]byte) field {
	return field{name: name, id: id, typ: thrift.LIST, write: func(ctx context.Context, p thrift.TProtocol) error {
		if err := p.WriteListBegin(ctx, thrift.STRING, len(vs)); err != nil {
			return thrift.PrependError("error writing list begin: ", err)
		}
		for _, v := range vs {
			if err := p.WriteBinary(ctx, v); err != nil {
				return err
			}
		}
		return p.WriteListEnd(ctx)
	}}
}

func stringListField(name string, id int16, vs []string) field {
	bs := make([][]byte, 0, len(vs))
	for _, v := range vs {
		bs = append(bs, []byte(v))
	}
	return binaryListField(name, id, bs)
}

// attributesField writes the per-call attribute map. The gateway accepts an
// empty map, which is all this client ever sends.
func attributesField(id int16) field {
	return field{name: "attributes", id: id, typ: thrift.MAP, write: func(ctx context.Context, p thrift.TProtocol) error {
		if err := p.WriteMapBegin(ctx, thrift.STRING, thrift.STRING, 0); err != nil {
			return thrift.PrependError("error writing map begin: ", err)
		}
		return p.WriteMapEnd(ctx)
	}}
}

func readRowResults(ctx context.Context, p thrift.TProtocol) ([]*TRowResult, error) {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, thrift.PrependError("error reading list begin: ", err)
	}
	rows := make([]*TRowResult, 0, size)
	for i := 0; i < size; i++ {
		row := &TRowResult{}
		if err := row.Read(ctx, p); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := p.ReadListEnd(ctx); err != nil {
		return nil, thrift.PrependError("error reading list end: ", err)
	}
	return rows, nil
}
