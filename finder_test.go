package hbrecord_test

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/challenai/hbrecord"
	"github.com/challenai/hbrecord/client"
)

func newPersonFinder(conn *fakeConn) *hbrecord.Finder[*hbrecord.Record] {
	info := hbrecord.NewColumnFamily("info").Field("name", hbrecord.TypeString)
	schema := hbrecord.NewSchema("Person", []*hbrecord.ColumnFamily{info})
	table := hbrecord.NewTable(conn, "people", schema.FamilyNames(), 4, nil)
	return hbrecord.NewFinder(hbrecord.RecordModel("Person", "people", schema), table, nil)
}

func ids(records []*hbrecord.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestParseRequest(t *testing.T) {
	opts := hbrecord.FindOptions{Select: []string{"info:"}}
	for _, tc := range []struct {
		name string
		args []interface{}
		want hbrecord.Request
	}{
		{"first", []interface{}{hbrecord.First}, hbrecord.Request{Kind: hbrecord.KindFirst}},
		{"all with options", []interface{}{hbrecord.All, opts}, hbrecord.Request{Kind: hbrecord.KindAll, Options: opts}},
		{"single id", []interface{}{"a"}, hbrecord.Request{Kind: hbrecord.KindByID, IDs: []string{"a"}}},
		{"bytes id", []interface{}{[]byte("a")}, hbrecord.Request{Kind: hbrecord.KindByID, IDs: []string{"a"}}},
		{"id list", []interface{}{[]string{"a"}}, hbrecord.Request{Kind: hbrecord.KindByIDs, IDs: []string{"a"}}},
		{"several ids", []interface{}{"a", "b", &opts}, hbrecord.Request{Kind: hbrecord.KindByIDs, IDs: []string{"a", "b"}, Options: opts}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := hbrecord.ParseRequest(tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRequestErrors(t *testing.T) {
	_, err := hbrecord.ParseRequest()
	assert.True(t, hbrecord.ArgumentError.Has(err))

	_, err = hbrecord.ParseRequest(hbrecord.FindOptions{})
	assert.True(t, hbrecord.ArgumentError.Has(err))

	_, err = hbrecord.ParseRequest(nil)
	assert.True(t, hbrecord.RecordNotFound.Has(err))

	_, err = hbrecord.ParseRequest(hbrecord.All, "a")
	assert.True(t, hbrecord.ArgumentError.Has(err))

	_, err = hbrecord.ParseRequest(42)
	assert.True(t, hbrecord.ArgumentError.Has(err))

	_, err = hbrecord.ParseRequest("a", []string{"b"})
	assert.True(t, hbrecord.ArgumentError.Has(err))
}

func TestFindArgumentErrors(t *testing.T) {
	ctx := context.Background()
	f := newPersonFinder(newFakeConn())

	_, err := f.Find(ctx)
	require.Error(t, err)
	assert.True(t, hbrecord.ArgumentError.Has(err))
	assert.Contains(t, err.Error(), "at least one argument required")

	_, err = f.Find(ctx, nil)
	require.Error(t, err)
	assert.True(t, hbrecord.RecordNotFound.Has(err))
	assert.Contains(t, err.Error(), "Person")
}

func TestFindSingleID(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	conn.put("people", "p1", map[string]string{"info:name": "Ada"})
	f := newPersonFinder(conn)

	res, err := f.Find(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, res.Many)
	rec, ok := res.One()
	require.True(t, ok)
	assert.Equal(t, "p1", rec.ID())
	assert.True(t, rec.Persisted())
	name, _ := rec.Get("name")
	assert.Equal(t, "Ada", name)

	rec, err = f.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", rec.ID())

	_, err = f.Find(ctx, "missing")
	require.Error(t, err)
	assert.True(t, hbrecord.RecordNotFound.Has(err))
	assert.Contains(t, err.Error(), "Person")

	_, err = f.Get(ctx, "missing")
	assert.True(t, hbrecord.RecordNotFound.Has(err))
}

func TestFindManyIDs(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	seedPeople(conn, 5)
	f := newPersonFinder(conn)

	res, err := f.Find(ctx, "person-003", "person-001")
	require.NoError(t, err)
	assert.True(t, res.Many)
	assert.Equal(t, []string{"person-003", "person-001"}, ids(res.Records))

	res, err = f.Find(ctx, []string{"person-000"})
	require.NoError(t, err)
	assert.True(t, res.Many)
	assert.Equal(t, []string{"person-000"}, ids(res.Records))

	records, err := f.GetMany(ctx, []string{"person-002", "person-002", "person-004"})
	require.NoError(t, err)
	assert.Equal(t, []string{"person-002", "person-004"}, ids(records))
}

func TestFindManyCountMismatch(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	seedPeople(conn, 2)
	f := newPersonFinder(conn)

	_, err := f.Find(ctx, "person-000", "person-001", "nope")
	require.Error(t, err)
	assert.True(t, hbrecord.RecordNotFound.Has(err))
	assert.Contains(t, err.Error(), "expected to find 3 records, but found only 2")

	_, err = f.Find(ctx, []string{"nope", "nada"})
	assert.True(t, hbrecord.RecordNotFound.Has(err))

	_, err = f.Find(ctx, []string{})
	assert.True(t, hbrecord.RecordNotFound.Has(err))
}

func TestFindDiscardsUnrequestedRows(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	seedPeople(conn, 3)
	conn.extra = []*client.TRowResult{{
		Row:     []byte("person-002"),
		Columns: map[string]*client.TCell{"info:name": {Value: []byte("neighbour"), Timestamp: 1}},
	}}
	f := newPersonFinder(conn)

	res, err := f.Find(ctx, "person-000", "person-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"person-000", "person-001"}, ids(res.Records))

	_, err = f.Find(ctx, "missing")
	assert.True(t, hbrecord.RecordNotFound.Has(err))
}

func TestFindMarkers(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	f := newPersonFinder(conn)

	res, err := f.Find(ctx, hbrecord.All)
	require.NoError(t, err)
	assert.True(t, res.Many)
	assert.Empty(t, res.Records)

	res, err = f.Find(ctx, hbrecord.First)
	require.NoError(t, err)
	assert.False(t, res.Many)
	_, ok := res.One()
	assert.False(t, ok)

	rec, ok, err := f.First(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)

	keys := seedPeople(conn, 9)
	all, err := f.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, keys, ids(all))

	rec, ok, err = f.First(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, keys[0], rec.ID())

	all, err = f.All(ctx, hbrecord.FindOptions{StartKey: "person-005", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"person-005", "person-006"}, ids(all))
	assert.Equal(t, conn.opened, conn.closed)
}

func TestFindWithSelect(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	conn.put("people", "p1", map[string]string{"info:name": "Ada", "addr:city": "London"})
	f := newPersonFinder(conn)

	rec, err := f.Get(ctx, "p1", hbrecord.FindOptions{Select: []string{"info:"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"info:"}, conn.lastCols)
	name, _ := rec.Get("name")
	assert.Equal(t, "Ada", name)
}

func TestFindPropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	conn := newFakeConn()
	conn.fail["GetRows"] = boom
	f := newPersonFinder(conn)

	_, err := f.Find(ctx, "p1")
	assert.Equal(t, boom, err)
}

func TestLastIsNotImplemented(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	seedPeople(conn, 2)
	f := newPersonFinder(conn)

	for _, args := range [][]interface{}{nil, {"person-000"}, {hbrecord.FindOptions{}}} {
		_, err := f.Last(ctx, args...)
		require.Error(t, err)
		assert.True(t, hbrecord.NotImplemented.Has(err))
	}
}

func TestFindManyReturnsExactlyRequestedSet(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	keys := seedPeople(conn, 30)
	f := newPersonFinder(conn)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		n := 1 + rng.Intn(len(keys))
		perm := rng.Perm(len(keys))[:n]
		want := make([]string, 0, n)
		for _, p := range perm {
			want = append(want, keys[p])
		}

		records, err := f.GetMany(ctx, want)
		require.NoError(t, err)
		got := ids(records)
		assert.Equal(t, want, got)

		sort.Strings(got)
		for j := 1; j < len(got); j++ {
			assert.NotEqual(t, got[j-1], got[j])
		}
	}
}

func TestDoRejectsMalformedRequests(t *testing.T) {
	ctx := context.Background()
	conn := newFakeConn()
	seedPeople(conn, 2)
	f := newPersonFinder(conn)

	for _, req := range []hbrecord.Request{
		{Kind: hbrecord.KindByID},
		{Kind: hbrecord.KindByID, IDs: []string{"person-000", "person-001"}},
		{Kind: hbrecord.KindByIDs},
		{Kind: hbrecord.Kind(99)},
	} {
		_, err := f.Do(ctx, req)
		require.Error(t, err)
		assert.True(t, hbrecord.ArgumentError.Has(err), err)
		assert.Contains(t, err.Error(), "Person")
	}
	assert.Empty(t, conn.getCalls)
}

func TestArgumentErrorsNameTheModel(t *testing.T) {
	ctx := context.Background()
	f := newPersonFinder(newFakeConn())

	for _, args := range [][]interface{}{
		nil,
		{hbrecord.FindOptions{}},
		{hbrecord.All, "a"},
		{42},
		{"a", nil},
	} {
		_, err := f.Find(ctx, args...)
		require.Error(t, err)
		assert.True(t, hbrecord.ArgumentError.Has(err), err)
		assert.Contains(t, err.Error(), "Person")
	}
}
