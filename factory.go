package hbrecord

import (
	"io"
	"sort"

	"github.com/challenai/hbrecord/client"
	"github.com/challenai/hbrecord/config"
	"github.com/challenai/hbrecord/logger"
)

// DB is a handle on an HBase gateway plus the schemas of the models read
// through it.
type DB struct {
	conn      Connection
	registry  *Registry
	log       logger.Logger
	batchSize int32
	scanLimit int32
	closer    io.Closer
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) { db.log = l }
}

// WithBatchSize sets the page size used by Table.All.
func WithBatchSize(n int32) Option {
	return func(db *DB) { db.batchSize = n }
}

// WithScanLimit sets the page size of scanners returned by DB.Scanner.
func WithScanLimit(n int32) Option {
	return func(db *DB) { db.scanLimit = n }
}

// NewDB wraps an established connection.
func NewDB(conn Connection, opts ...Option) *DB {
	db := &DB{
		conn:      conn,
		registry:  NewRegistry(),
		log:       logger.NewNopLogger(),
		batchSize: DefaultBatchSize,
		scanLimit: DefaultScanLimit,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// NewHBase connects to the gateway described by cfg.
func NewHBase(cfg *config.Config) (*DB, error) {
	headers := make([]client.Header, 0, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers = append(headers, client.Header{Key: k, Value: v})
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].Key < headers[j].Key })

	hb, trans, err := client.Dial(cfg.Addr, client.Options{Headers: headers, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	log := logger.NewStdLogger(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.File != "" {
		log = logger.NewFileLogger(logger.ParseLevel(cfg.Log.Level), cfg.Log.File)
	}
	db := NewDB(hb, WithLogger(log), WithBatchSize(cfg.BatchSize), WithScanLimit(cfg.ScanLimit))
	db.closer = trans
	log.Infof("connected to hbase gateway %s", cfg.Addr)
	return db, nil
}

// Registry returns the schema registry of this DB.
func (db *DB) Registry() *Registry { return db.registry }

// Logger returns the DB logger.
func (db *DB) Logger() logger.Logger { return db.log }

// Table returns a table reading the given families.
func (db *DB) Table(name string, families ...string) *Table {
	return NewTable(db.conn, name, families, db.batchSize, db.log)
}

// Scanner returns an unopened scanner using the configured page size unless
// opts sets one.
func (db *DB) Scanner(table string, families []string, opts ScanOptions) *Scanner {
	if opts.Limit <= 0 {
		opts.Limit = db.scanLimit
	}
	return NewScanner(db.conn, table, families, opts)
}

// Close releases the underlying transport.
func (db *DB) Close() error {
	if db.closer == nil {
		return nil
	}
	return db.closer.Close()
}

// Bind registers the schema of m and returns a finder for it.
func Bind[T any](db *DB, m Model[T]) (*Finder[T], error) {
	if existing, ok := db.registry.Lookup(m.Schema.Name()); !ok {
		if err := db.registry.Register(m.Schema); err != nil {
			return nil, err
		}
	} else if existing != m.Schema {
		return nil, ArgumentError.New("model %s: schema %q is already bound", m.Name, m.Schema.Name())
	}
	table := db.Table(m.Table, m.Schema.FamilyNames()...)
	return NewFinder(m, table, db.log), nil
}

// RecordModel is a Model building plain *Record values.
func RecordModel(name, table string, schema *Schema) Model[*Record] {
	return Model[*Record]{Name: name, Table: table, Schema: schema, Hydrate: HydrateRecord}
}
