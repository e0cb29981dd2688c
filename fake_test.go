package hbrecord_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/challenai/hbrecord/client"
)

// fakeConn is an in-memory gateway. Rows are kept sorted by key and scanners
// are cursors into that order.
type fakeConn struct {
	mu       sync.Mutex
	tables   map[string][]*client.TRowResult
	cursors  map[int32]*fakeCursor
	nextID   int32
	opened   int
	closed   int
	lastTs   *int64
	lastCols []string
	getCalls []string
	// rows handed out by ScannerGetList, and the page sizes asked for
	served   int
	requests []int32

	// extra rows appended to every GetRows answer
	extra []*client.TRowResult
	// errors injected per method name
	fail map[string]error
}

type fakeCursor struct {
	rows []*client.TRowResult
	pos  int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		tables:  map[string][]*client.TRowResult{},
		cursors: map[int32]*fakeCursor{},
		fail:    map[string]error{},
	}
}

// put stores a row with every column at timestamp 1.
func (c *fakeConn) put(table, key string, cols map[string]string) {
	res := &client.TRowResult{Row: []byte(key), Columns: map[string]*client.TCell{}}
	for name, v := range cols {
		res.Columns[name] = &client.TCell{Value: []byte(v), Timestamp: 1}
	}
	c.putResult(table, res)
}

func (c *fakeConn) putResult(table string, res *client.TRowResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.tables[table]
	rows = append(rows, res)
	sort.Slice(rows, func(i, j int) bool { return string(rows[i].Row) < string(rows[j].Row) })
	c.tables[table] = rows
}

func matches(column string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if strings.HasSuffix(s, ":") && strings.HasPrefix(column, s) {
			return true
		}
		if column == s || column == s+":" || strings.HasPrefix(column, s+":") {
			return true
		}
	}
	return false
}

// project copies a row keeping the selected columns written before ts.
// nil is returned when nothing is left.
func project(res *client.TRowResult, selected []string, ts *int64) *client.TRowResult {
	out := &client.TRowResult{Row: res.Row, Columns: map[string]*client.TCell{}}
	for name, cell := range res.Columns {
		if !matches(name, selected) {
			continue
		}
		if ts != nil && cell.Timestamp >= *ts {
			continue
		}
		out.Columns[name] = cell
	}
	for _, col := range res.SortedColumns {
		if !matches(string(col.ColumnName), selected) {
			continue
		}
		if ts != nil && col.Cell.Timestamp >= *ts {
			continue
		}
		out.SortedColumns = append(out.SortedColumns, col)
	}
	if len(out.Columns) == 0 && len(out.SortedColumns) == 0 {
		return nil
	}
	return out
}

func (c *fakeConn) open(ctx context.Context, table string, startRow []byte, columns []string, ts *int64) (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := &fakeCursor{}
	for _, res := range c.tables[table] {
		if string(res.Row) < string(startRow) {
			continue
		}
		if row := project(res, columns, ts); row != nil {
			cur.rows = append(cur.rows, row)
		}
	}
	c.nextID++
	c.cursors[c.nextID] = cur
	c.opened++
	c.lastTs = ts
	c.lastCols = columns
	return c.nextID, nil
}

func (c *fakeConn) ScannerOpen(ctx context.Context, table string, startRow []byte, columns []string) (int32, error) {
	if err := c.fail["ScannerOpen"]; err != nil {
		return 0, err
	}
	return c.open(ctx, table, startRow, columns, nil)
}

func (c *fakeConn) ScannerOpenTs(ctx context.Context, table string, startRow []byte, columns []string, ts int64) (int32, error) {
	if err := c.fail["ScannerOpenTs"]; err != nil {
		return 0, err
	}
	return c.open(ctx, table, startRow, columns, &ts)
}

func (c *fakeConn) ScannerGetList(ctx context.Context, id int32, n int32) ([]*client.TRowResult, error) {
	if err := c.fail["ScannerGetList"]; err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.cursors[id]
	if !ok {
		return nil, &client.IllegalArgument{Message: "no such scanner"}
	}
	end := cur.pos + int(n)
	if end > len(cur.rows) {
		end = len(cur.rows)
	}
	page := cur.rows[cur.pos:end]
	cur.pos = end
	c.served += len(page)
	c.requests = append(c.requests, n)
	return page, nil
}

func (c *fakeConn) ScannerClose(ctx context.Context, id int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cursors[id]; !ok {
		return &client.IllegalArgument{Message: "no such scanner"}
	}
	delete(c.cursors, id)
	c.closed++
	return nil
}

func (c *fakeConn) get(table string, rows [][]byte, columns []string) ([]*client.TRowResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*client.TRowResult
	for _, key := range rows {
		c.getCalls = append(c.getCalls, string(key))
		for _, res := range c.tables[table] {
			if string(res.Row) != string(key) {
				continue
			}
			if row := project(res, columns, nil); row != nil {
				out = append(out, row)
			}
		}
	}
	return append(out, c.extra...), nil
}

func (c *fakeConn) GetRows(ctx context.Context, table string, rows [][]byte) ([]*client.TRowResult, error) {
	if err := c.fail["GetRows"]; err != nil {
		return nil, err
	}
	return c.get(table, rows, nil)
}

func (c *fakeConn) GetRowsWithColumns(ctx context.Context, table string, rows [][]byte, columns []string) ([]*client.TRowResult, error) {
	if err := c.fail["GetRowsWithColumns"]; err != nil {
		return nil, err
	}
	c.lastCols = columns
	return c.get(table, rows, columns)
}
