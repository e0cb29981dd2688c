package hbrecord

import (
	"context"
	"fmt"
	"strings"

	"github.com/challenai/hbrecord/logger"
)

// Marker selects a scan based lookup instead of a lookup by id.
type Marker int

const (
	// First finds the first row of a scan.
	First Marker = iota + 1
	// All finds every row of a scan.
	All
)

// Kind is the resolved shape of a find request.
type Kind int

const (
	KindByID Kind = iota
	KindByIDs
	KindFirst
	KindAll
)

func (k Kind) String() string {
	switch k {
	case KindByIDs:
		return "by ids"
	case KindFirst:
		return "first"
	case KindAll:
		return "all"
	}
	return "by id"
}

// Request is a parsed find call.
type Request struct {
	Kind    Kind
	IDs     []string
	Options FindOptions
}

// Many reports whether the request resolves to a list of records.
func (r Request) Many() bool {
	return r.Kind == KindByIDs || r.Kind == KindAll
}

// ParseRequest turns loosely typed find arguments into a Request.
//
// Accepted forms, with an optional trailing FindOptions or *FindOptions:
//
//	First | All
//	"id"
//	[]string{"id1", "id2"}
//	"id1", "id2", ...
//
// Ids may also be given as []byte or fmt.Stringer.
func ParseRequest(args ...interface{}) (Request, error) {
	return parseRequest("record", args)
}

func parseRequest(model string, args []interface{}) (Request, error) {
	var req Request
	if len(args) == 0 {
		return req, ArgumentError.New("%s: at least one argument required", model)
	}
	if args[0] == nil {
		return req, RecordNotFound.New("couldn't find %s without an ID", model)
	}
	switch opts := args[len(args)-1].(type) {
	case FindOptions:
		req.Options = opts
		args = args[:len(args)-1]
	case *FindOptions:
		if opts != nil {
			req.Options = *opts
		}
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return req, ArgumentError.New("%s: at least one argument required besides options", model)
	}

	if marker, ok := args[0].(Marker); ok {
		if len(args) > 1 {
			return req, ArgumentError.New("%s: unexpected arguments after %s marker", model, marker.kind())
		}
		switch marker {
		case First:
			req.Kind = KindFirst
		case All:
			req.Kind = KindAll
		default:
			return req, ArgumentError.New("%s: unknown marker %d", model, int(marker))
		}
		return req, nil
	}

	if len(args) == 1 {
		if ids, ok := idList(args[0]); ok {
			req.Kind, req.IDs = KindByIDs, ids
			return req, nil
		}
		id, err := idOf(model, args[0])
		if err != nil {
			return req, err
		}
		req.Kind, req.IDs = KindByID, []string{id}
		return req, nil
	}

	req.Kind = KindByIDs
	for _, arg := range args {
		id, err := idOf(model, arg)
		if err != nil {
			return req, err
		}
		req.IDs = append(req.IDs, id)
	}
	return req, nil
}

func (m Marker) kind() Kind {
	if m == All {
		return KindAll
	}
	return KindFirst
}

func idList(arg interface{}) ([]string, bool) {
	switch v := arg.(type) {
	case []string:
		return append([]string(nil), v...), true
	case [][]byte:
		ids := make([]string, 0, len(v))
		for _, b := range v {
			ids = append(ids, string(b))
		}
		return ids, true
	}
	return nil, false
}

func idOf(model string, arg interface{}) (string, error) {
	switch v := arg.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case nil:
		return "", ArgumentError.New("%s: nil id among ids", model)
	}
	return "", ArgumentError.New("%s: unsupported id type %T", model, arg)
}

// Model binds a schema and a table to the Go type records are built as.
type Model[T any] struct {
	// Name is the human readable model name used in errors.
	Name   string
	Table  string
	Schema *Schema
	// Hydrate builds a record from stored attributes, without validation.
	Hydrate func(Attributes) T
}

// Result holds the records of a find call. Many tells whether the request
// asked for a list; otherwise Records holds at most one record.
type Result[T any] struct {
	Many    bool
	Records []T
}

// One returns the single record of a non-list result.
func (r Result[T]) One() (T, bool) {
	if len(r.Records) == 0 {
		var zero T
		return zero, false
	}
	return r.Records[0], true
}

// Finder resolves find requests for one model.
type Finder[T any] struct {
	model Model[T]
	store Store
	log   logger.Logger
}

// NewFinder returns a finder reading model records from store.
func NewFinder[T any](model Model[T], store Store, log logger.Logger) *Finder[T] {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Finder[T]{model: model, store: store, log: log}
}

// Find parses args (see ParseRequest) and runs the request.
func (f *Finder[T]) Find(ctx context.Context, args ...interface{}) (Result[T], error) {
	req, err := parseRequest(f.model.Name, args)
	if err != nil {
		return Result[T]{}, err
	}
	return f.Do(ctx, req)
}

// Do runs a parsed request.
//
// Lookups by id only keep rows whose key was asked for and fail with
// RecordNotFound unless every requested id was found. First and All trust
// the store and never fail for lack of rows.
func (f *Finder[T]) Do(ctx context.Context, req Request) (res Result[T], err error) {
	defer mon.Task()(&ctx)(&err)
	res.Many = req.Many()
	if err := f.validate(req); err != nil {
		return res, err
	}

	var rows []*Row
	switch req.Kind {
	case KindFirst:
		row, err := f.store.First(ctx, req.Options)
		if err != nil {
			return res, err
		}
		if row != nil {
			rows = []*Row{row}
		}
	case KindAll:
		rows, err = f.store.All(ctx, req.Options)
		if err != nil {
			return res, err
		}
	case KindByID, KindByIDs:
		rows, err = f.findByIDs(ctx, req)
		if err != nil {
			return res, err
		}
	default:
		return res, ArgumentError.New("%s: unknown request kind %d", f.model.Name, int(req.Kind))
	}

	res.Records = make([]T, 0, len(rows))
	for _, row := range rows {
		attrs, err := f.model.Schema.Transpose(row)
		if err != nil {
			return Result[T]{Many: res.Many}, err
		}
		res.Records = append(res.Records, f.model.Hydrate(attrs))
	}
	return res, nil
}

// validate rejects requests that ParseRequest never builds.
func (f *Finder[T]) validate(req Request) error {
	switch {
	case req.Kind == KindByID && len(req.IDs) != 1:
		return ArgumentError.New("%s: lookup by id needs exactly one id, got %d", f.model.Name, len(req.IDs))
	case req.Kind == KindByIDs && req.IDs == nil:
		return ArgumentError.New("%s: lookup by ids needs an id list", f.model.Name)
	}
	return nil
}

func (f *Finder[T]) findByIDs(ctx context.Context, req Request) ([]*Row, error) {
	ids := uniqueIDs(req.IDs)
	rows, err := f.store.Find(ctx, ids, req.Options)
	if err != nil {
		return nil, err
	}
	rows = f.keepRequested(rows, ids)

	if len(rows) == 0 {
		if req.Kind == KindByID {
			return nil, RecordNotFound.New("couldn't find %s with ID=%s", f.model.Name, ids[0])
		}
		return nil, RecordNotFound.New("couldn't find %s with IDs (%s)", f.model.Name, strings.Join(ids, ", "))
	}
	if req.Kind == KindByIDs && len(rows) != len(ids) {
		return nil, RecordNotFound.New("couldn't find all %s: expected to find %d records, but found only %d",
			f.model.Name, len(ids), len(rows))
	}
	return rows, nil
}

// keepRequested drops rows the store returned without being asked for, and
// duplicates, and orders the rest like ids.
func (f *Finder[T]) keepRequested(rows []*Row, ids []string) []*Row {
	byID := make(map[string]*Row, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	kept := make([]*Row, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			kept = append(kept, row)
			delete(byID, id)
		}
	}
	for id := range byID {
		f.log.Warnf("%s: store returned row %q which was not requested", f.model.Name, id)
	}
	return kept
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Get finds a single record by id.
func (f *Finder[T]) Get(ctx context.Context, id string, opts ...FindOptions) (T, error) {
	res, err := f.Do(ctx, Request{Kind: KindByID, IDs: []string{id}, Options: firstOptions(opts)})
	rec, _ := res.One()
	return rec, err
}

// GetMany finds exactly the records with the given ids.
func (f *Finder[T]) GetMany(ctx context.Context, ids []string, opts ...FindOptions) ([]T, error) {
	res, err := f.Do(ctx, Request{Kind: KindByIDs, IDs: ids, Options: firstOptions(opts)})
	return res.Records, err
}

// First returns the first record of a scan. ok is false on an empty scan.
func (f *Finder[T]) First(ctx context.Context, opts ...FindOptions) (rec T, ok bool, err error) {
	res, err := f.Do(ctx, Request{Kind: KindFirst, Options: firstOptions(opts)})
	if err != nil {
		return rec, false, err
	}
	rec, ok = res.One()
	return rec, ok, nil
}

// All returns every record of a scan.
func (f *Finder[T]) All(ctx context.Context, opts ...FindOptions) ([]T, error) {
	res, err := f.Do(ctx, Request{Kind: KindAll, Options: firstOptions(opts)})
	return res.Records, err
}

// Last is not supported, HBase offers no reverse scan through the gateway.
func (f *Finder[T]) Last(ctx context.Context, args ...interface{}) (T, error) {
	var zero T
	return zero, NotImplemented.New("%s: last is not supported, the store has no reverse scan", f.model.Name)
}

func firstOptions(opts []FindOptions) FindOptions {
	if len(opts) == 0 {
		return FindOptions{}
	}
	return opts[0]
}
