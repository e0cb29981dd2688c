package hbrecord

import (
	"context"

	"github.com/challenai/hbrecord/client"
)

// Connection is the subset of the HBase gateway the library reads through.
// *client.HbaseClient implements it. Errors returned by a Connection are
// passed to callers unchanged.
type Connection interface {
	ScannerOpen(ctx context.Context, table string, startRow []byte, columns []string) (int32, error)
	ScannerOpenTs(ctx context.Context, table string, startRow []byte, columns []string, ts int64) (int32, error)
	ScannerGetList(ctx context.Context, id int32, n int32) ([]*client.TRowResult, error)
	ScannerClose(ctx context.Context, id int32) error
	GetRows(ctx context.Context, table string, rows [][]byte) ([]*client.TRowResult, error)
	GetRowsWithColumns(ctx context.Context, table string, rows [][]byte, columns []string) ([]*client.TRowResult, error)
}

var _ Connection = (*client.HbaseClient)(nil)

// Cell is the stored value of one column.
type Cell struct {
	Value     []byte
	Timestamp int64
}

// Row is one HBase row, columns keyed by "family:qualifier".
type Row struct {
	ID      string
	Table   string
	Columns map[string]*Cell
}

// Attributes is the flat attribute mapping a record is built from.
type Attributes map[string]interface{}

// ID returns the "id" attribute as a string.
func (a Attributes) ID() string {
	id, _ := a[AttrID].(string)
	return id
}

// AttrID is the attribute holding the row key.
const AttrID = "id"

// populateRow converts a wire row. When a column shows up more than once
// the newest version wins.
func populateRow(table string, res *client.TRowResult) *Row {
	row := &Row{
		ID:      string(res.Row),
		Table:   table,
		Columns: make(map[string]*Cell, len(res.Columns)+len(res.SortedColumns)),
	}
	for name, c := range res.Columns {
		row.put(name, c)
	}
	for _, col := range res.SortedColumns {
		row.put(string(col.ColumnName), col.Cell)
	}
	return row
}

func (r *Row) put(name string, c *client.TCell) {
	if c == nil {
		return
	}
	if old, ok := r.Columns[name]; ok && old.Timestamp > c.Timestamp {
		return
	}
	r.Columns[name] = &Cell{Value: c.Value, Timestamp: c.Timestamp}
}

func populateRows(table string, results []*client.TRowResult) []*Row {
	rows := make([]*Row, 0, len(results))
	for _, res := range results {
		rows = append(rows, populateRow(table, res))
	}
	return rows
}
