package hbrecord

import (
	"context"
	"math"

	"github.com/zeebo/errs"

	"github.com/challenai/hbrecord/logger"
)

// DefaultBatchSize is the number of rows fetched per scanner round trip by
// Table.All.
const DefaultBatchSize int32 = 1 << 6

// FindOptions narrow a lookup.
type FindOptions struct {
	// Select restricts the columns read, "family:" or "family:qualifier".
	// Scans always read whole families.
	Select []string
	// StartKey is the first row key of a scan.
	StartKey string
	// CreatedAt limits a scan to cells written before this timestamp.
	CreatedAt *int64
	// Limit caps the number of rows returned by a scan, 0 for no cap.
	Limit int
}

// Store is what a Finder reads rows from.
type Store interface {
	Find(ctx context.Context, ids []string, opts FindOptions) ([]*Row, error)
	First(ctx context.Context, opts FindOptions) (*Row, error)
	All(ctx context.Context, opts FindOptions) ([]*Row, error)
}

// Table reads the rows of one HBase table.
type Table struct {
	conn      Connection
	name      string
	families  []string
	batchSize int32
	log       logger.Logger
}

var _ Store = (*Table)(nil)

// NewTable returns a table reading the given column families.
func NewTable(conn Connection, name string, families []string, batchSize int32, log logger.Logger) *Table {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Table{conn: conn, name: name, families: families, batchSize: batchSize, log: log}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Find gets the rows with the given keys. Keys without a row are left out.
func (t *Table) Find(ctx context.Context, ids []string, opts FindOptions) (_ []*Row, err error) {
	defer mon.Task()(&ctx)(&err)
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([][]byte, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, []byte(id))
	}
	if len(opts.Select) > 0 {
		res, err := t.conn.GetRowsWithColumns(ctx, t.name, keys, opts.Select)
		if err != nil {
			return nil, err
		}
		return populateRows(t.name, res), nil
	}
	res, err := t.conn.GetRows(ctx, t.name, keys)
	if err != nil {
		return nil, err
	}
	return populateRows(t.name, res), nil
}

// All scans the table from opts.StartKey until it is exhausted or opts.Limit
// rows were read.
func (t *Table) All(ctx context.Context, opts FindOptions) (_ []*Row, err error) {
	defer mon.Task()(&ctx)(&err)
	families := t.families
	if len(opts.Select) > 0 {
		families = opts.Select
	}
	scanner := NewScanner(t.conn, t.name, families, ScanOptions{
		StartKey:  opts.StartKey,
		CreatedAt: opts.CreatedAt,
		Limit:     t.batchSize,
	})
	if err := scanner.Open(ctx); err != nil {
		return nil, err
	}
	defer func() { err = errs.Combine(err, scanner.Close(ctx)) }()

	var rows []*Row
	for {
		// ask for no more than the rows still missing
		size := t.batchSize
		if opts.Limit > 0 {
			size = getQuerySize(t.batchSize, clampInt32(opts.Limit-len(rows)))
			if size == 0 {
				break
			}
		}
		page, err := scanner.FetchN(ctx, size)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		rows = append(rows, page...)
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	t.log.Debugf("scanned %d rows of %s from %q", len(rows), t.name, opts.StartKey)
	return rows, nil
}

// First returns the first row of the scan described by opts, or nil.
func (t *Table) First(ctx context.Context, opts FindOptions) (*Row, error) {
	opts.Limit = 1
	rows, err := t.All(ctx, opts)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func clampInt32(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int32(n)
}

func getQuerySize(batchSz, diff int32) int32 {
	if diff <= 0 {
		return 0
	}
	if batchSz < diff {
		return batchSz
	}
	return diff
}
