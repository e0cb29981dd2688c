package hbrecord

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"

	"github.com/challenai/hbrecord/utils"
)

var mon = monkit.Package()

// DefaultScanLimit is the page size of a Scanner when none is given.
const DefaultScanLimit int32 = 10

// ScanOptions tune a Scanner.
type ScanOptions struct {
	// Columns replaces the family list reported by Families verbatim. It
	// does not change what is read: the gateway is always asked for the
	// prefixes built from the families given to NewScanner.
	Columns []string
	// StartKey is the first row key of the scan, empty for the table start.
	StartKey string
	// CreatedAt, when set, limits the scan to cells written before it.
	CreatedAt *int64
	// Limit is the number of rows returned by one Fetch.
	Limit int32
}

// Scanner pages through the rows of one table with a server side cursor.
// A Scanner must not be shared between goroutines.
type Scanner struct {
	conn      Connection
	table     string
	families  []string
	prefixes  []string
	startKey  string
	createdAt *int64
	limit     int32

	id     int32
	opened bool
}

// NewScanner prepares a scan over table restricted to the given column
// families. Qualifiers in the family names are ignored.
func NewScanner(conn Connection, table string, families []string, opts ScanOptions) *Scanner {
	s := &Scanner{
		conn:      conn,
		table:     table,
		families:  utils.Families(families),
		prefixes:  utils.FamilyPrefixes(families),
		startKey:  opts.StartKey,
		createdAt: opts.CreatedAt,
		limit:     opts.Limit,
	}
	if opts.Columns != nil {
		s.families = opts.Columns
	}
	if s.limit <= 0 {
		s.limit = DefaultScanLimit
	}
	return s
}

// Families returns the column families of the scan, or ScanOptions.Columns
// when set. Rows returned by Fetch are not filtered by it.
func (s *Scanner) Families() []string { return s.families }

// Prefixes returns the columns sent to the gateway, one "family:" per family.
func (s *Scanner) Prefixes() []string { return s.prefixes }

// Limit returns the page size.
func (s *Scanner) Limit() int32 { return s.limit }

// Open obtains a cursor from the gateway.
func (s *Scanner) Open(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	if s.opened {
		return InvalidState.New("scanner on %q is already open", s.table)
	}
	var id int32
	if s.createdAt == nil {
		id, err = s.conn.ScannerOpen(ctx, s.table, []byte(s.startKey), s.prefixes)
	} else {
		id, err = s.conn.ScannerOpenTs(ctx, s.table, []byte(s.startKey), s.prefixes, *s.createdAt)
	}
	if err != nil {
		return err
	}
	s.id, s.opened = id, true
	return nil
}

// Fetch returns the next page of at most Limit rows. An empty page means
// the scan is exhausted.
func (s *Scanner) Fetch(ctx context.Context) ([]*Row, error) {
	return s.FetchN(ctx, s.limit)
}

// FetchN is Fetch with a page size of n rows for this call only.
func (s *Scanner) FetchN(ctx context.Context, n int32) (_ []*Row, err error) {
	defer mon.Task()(&ctx)(&err)
	if !s.opened {
		return nil, InvalidState.New("fetch on scanner %q which is not open", s.table)
	}
	if n <= 0 {
		return nil, ArgumentError.New("fetch on scanner %q needs a positive page size, got %d", s.table, n)
	}
	results, err := s.conn.ScannerGetList(ctx, s.id, n)
	if err != nil {
		return nil, err
	}
	return populateRows(s.table, results), nil
}

// Close releases the cursor. The scanner may be opened again afterwards.
func (s *Scanner) Close(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	if !s.opened {
		return InvalidState.New("close on scanner %q which is not open", s.table)
	}
	s.opened = false
	return s.conn.ScannerClose(ctx, s.id)
}
