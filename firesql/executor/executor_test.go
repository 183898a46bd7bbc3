package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/storage"
)

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()

	store.Seed("Users", firesql.Documents{
		"u1": {"email": "alice@gmail.com", "state": "ACTIVE", "age": int64(30), "id": "a1"},
		"u2": {"email": "bob@yahoo.com", "state": "ACTIVE", "age": int64(25), "id": "a2"},
		"u3": {"email": "carol@gmail.com", "state": "INACTIVE", "age": int64(35), "id": "a3"},
		"u4": {"email": "dave@gmail.com", "state": "CLOSED", "id": "a4"},
	})
	store.Seed("Bookings", firesql.Documents{
		"b1": {"email": "alice@gmail.com", "total": 100.0, "state": "PAID", "id": "k1"},
		"b2": {"email": "bob@yahoo.com", "total": 250.0, "state": "PAID", "id": "k2"},
		"b3": {"email": "alice@gmail.com", "total": 75.0, "state": "OPEN", "id": "k3"},
		"b4": {"email": "nobody@none.com", "total": 10.0, "state": "PAID", "id": "k4"},
	})

	return NewEngine(store), store
}

func TestSelectWithPushdown(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `SELECT email FROM Users WHERE state = 'ACTIVE'`)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Rows arrive in docid order.
	require.Equal(t, "alice@gmail.com", rows[0]["email"])
	require.Equal(t, "bob@yahoo.com", rows[1]["email"])
	require.Equal(t, []string{"email"}, engine.SelectFields())
}

func TestSelectLikeFilter(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT email FROM Users WHERE state = 'ACTIVE' AND email LIKE '%@gmail.com'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "alice@gmail.com", rows[0]["email"])
}

func TestSelectNotLike(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT email FROM Users WHERE email NOT LIKE '%@gmail.com'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "bob@yahoo.com", rows[0]["email"])
}

func TestSelectDocid(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `SELECT docid, email FROM Users WHERE email = 'alice@gmail.com'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "u1", rows[0]["docid"])
	require.Equal(t, []string{"docid", "email"}, engine.SelectFields())
}

func TestSelectByDocidShortCircuit(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `SELECT email FROM Users WHERE docid = 'u3'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "carol@gmail.com", rows[0]["email"])

	// A docid nobody has matches nothing rather than failing.
	rows, err = engine.Execute(context.Background(), `SELECT email FROM Users WHERE docid = 'zzz'`)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestSelectStarExpansion(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `SELECT email, * FROM Users WHERE docid = 'u1'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Explicit column first, then docid, then the sampled keys in
	// sorted order.
	require.Equal(t, []string{"email", "docid", "age", "id", "state"}, engine.SelectFields())
	require.Equal(t, int64(30), rows[0]["age"])
}

func TestSelectStarIncludesDocid(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `SELECT * FROM Users WHERE docid = 'u1'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Equal(t, "u1", rows[0]["docid"])
	require.Equal(t, []string{"docid", "age", "email", "id", "state"}, engine.SelectFields())
}

func TestSelectMissingFieldReadsEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)

	// u4 has no age.
	rows, err := engine.Execute(context.Background(), `SELECT email, age FROM Users WHERE docid = 'u4'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "", rows[0]["age"])
}

func TestSelectIsNull(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `SELECT email FROM Users WHERE age IS NULL`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "dave@gmail.com", rows[0]["email"])
}

func TestSelectInList(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT email FROM Users WHERE state IN ('INACTIVE', 'CLOSED')`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestSelectDisjunctionAsIn(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT email FROM Users WHERE state = 'INACTIVE' OR state = 'CLOSED'`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestUnpushableDisjunctionFails(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Execute(context.Background(),
		`SELECT email FROM Users WHERE state = 'ACTIVE' OR age > 30`)
	require.Error(t, err)
	require.True(t, firesql.IsKind(err, firesql.PlanError))
}

func TestSelectJoin(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT u.email, b.total FROM Users u JOIN Bookings b ON u.email = b.email WHERE b.state = 'PAID'`)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// The unmatched booking (nobody@none.com) is dropped.
	emails := map[interface{}]bool{}
	for _, row := range rows {
		emails[row["email"]] = true
	}
	require.True(t, emails["alice@gmail.com"])
	require.True(t, emails["bob@yahoo.com"])
}

func TestSelectCommaJoin(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT u.email, b.total FROM Users u, Bookings b WHERE u.email = b.email`)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestJoinDuplicateColumnRename(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT u.id, b.id FROM Users u JOIN Bookings b ON u.email = b.email WHERE b.docid = 'b1'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Equal(t, []string{"u_id", "b_id"}, engine.SelectFields())
	require.Equal(t, "a1", rows[0]["u_id"])
	require.Equal(t, "k1", rows[0]["b_id"])
}

func TestJoinDocidRename(t *testing.T) {
	engine, _ := newTestEngine(t)

	// docid participates in duplicate renaming, so both sides' ids
	// survive the merge.
	rows, err := engine.Execute(context.Background(),
		`SELECT u.docid, b.docid FROM Users u JOIN Bookings b ON u.email = b.email WHERE b.docid = 'b1'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.Equal(t, []string{"u_docid", "b_docid"}, engine.SelectFields())
	require.Equal(t, "u1", rows[0]["u_docid"])
	require.Equal(t, "b1", rows[0]["b_docid"])
}

func TestMultipleFromsWithoutJoinFails(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Execute(context.Background(), `SELECT u.email FROM Users u, Bookings b`)
	require.True(t, firesql.IsKind(err, firesql.PlanError))
}

func TestAggregation(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT COUNT(*), SUM(total), AVG(total), MIN(total), MAX(total) FROM Bookings WHERE state = 'PAID'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, int64(3), row["count(*)"])
	require.Equal(t, 360.0, row["sum(total)"])
	require.Equal(t, 120.0, row["avg(total)"])
	require.Equal(t, 10.0, row["min(total)"])
	require.Equal(t, 250.0, row["max(total)"])
	require.Equal(t,
		[]string{"count(*)", "sum(total)", "avg(total)", "min(total)", "max(total)"},
		engine.SelectFields())
}

func TestCountField(t *testing.T) {
	engine, _ := newTestEngine(t)

	// count(col) is the row count; the column argument is ignored, so
	// the document without an age still counts.
	rows, err := engine.Execute(context.Background(), `SELECT COUNT(age) FROM Users`)
	require.NoError(t, err)
	require.Equal(t, int64(4), rows[0]["count(age)"])
}

func TestAggregationOverJoin(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Aggregates run over the joined rows: 4 users and 4 bookings
	// produce 3 matched pairs.
	rows, err := engine.Execute(context.Background(),
		`SELECT COUNT(*), SUM(b.total) FROM Users u JOIN Bookings b ON u.email = b.email`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(3), rows[0]["count(*)"])
	require.Equal(t, 425.0, rows[0]["sum(total)"])
}

func TestAvgOfNothingIsZero(t *testing.T) {
	engine, _ := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`SELECT AVG(total) FROM Bookings WHERE state = 'VOID'`)
	require.NoError(t, err)
	require.Equal(t, 0.0, rows[0]["avg(total)"])
}

func TestInsert(t *testing.T) {
	engine, store := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`INSERT INTO Users (email, state, signup) VALUES ('eve@gmail.com', 'ACTIVE', '2022-03-01T09:00:00')`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"docid", "email", "state", "signup"}, engine.SelectFields())

	docID, ok := rows[0]["docid"].(string)
	require.True(t, ok)
	require.NotEmpty(t, docID)

	stored, err := store.GetDocument(context.Background(), "Users", docID)
	require.NoError(t, err)
	require.Equal(t, "eve@gmail.com", stored["email"])
	_, isTime := stored["signup"].(time.Time)
	require.True(t, isTime, "ISO string should store as a timestamp")
}

func TestInsertJSONObject(t *testing.T) {
	engine, store := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`INSERT INTO Users (*) VALUES ('{"email": "frank@x.com", "age": 40}')`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"docid", "age", "email"}, engine.SelectFields())

	docID := rows[0]["docid"].(string)
	stored, err := store.GetDocument(context.Background(), "Users", docID)
	require.NoError(t, err)
	require.Equal(t, "frank@x.com", stored["email"])
}

func TestInsertArityMismatch(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Execute(context.Background(), `INSERT INTO Users (a, b) VALUES ('x')`)
	require.True(t, firesql.IsKind(err, firesql.PlanError))
}

func TestUpdate(t *testing.T) {
	engine, store := newTestEngine(t)

	rows, err := engine.Execute(context.Background(),
		`UPDATE Users SET state = 'SUSPENDED' WHERE state = 'ACTIVE'`)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Rows report the post-update view including docid.
	require.Equal(t, "u1", rows[0]["docid"])
	require.Equal(t, "SUSPENDED", rows[0]["state"])

	stored, err := store.GetDocument(context.Background(), "Users", "u1")
	require.NoError(t, err)
	require.Equal(t, "SUSPENDED", stored["state"])
	// Untouched fields survive the merge.
	require.Equal(t, "alice@gmail.com", stored["email"])

	// Unmatched documents are untouched.
	stored, err = store.GetDocument(context.Background(), "Users", "u3")
	require.NoError(t, err)
	require.Equal(t, "INACTIVE", stored["state"])
}

func TestDelete(t *testing.T) {
	engine, store := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `DELETE FROM Users WHERE state = 'CLOSED'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "u4", rows[0]["docid"])

	_, err = store.GetDocument(context.Background(), "Users", "u4")
	require.True(t, firesql.IsKind(err, firesql.NotFound))

	remaining, err := store.GetCollectionDocuments(context.Background(), "Users")
	require.NoError(t, err)
	require.Len(t, remaining, 3)
}

func TestDeleteWithoutWhereDeletesAll(t *testing.T) {
	engine, store := newTestEngine(t)

	rows, err := engine.Execute(context.Background(), `DELETE FROM Bookings`)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	remaining, err := store.GetCollectionDocuments(context.Background(), "Bookings")
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestParseErrorSurfaces(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Execute(context.Background(), `SELEKT * FROM Users`)
	require.Error(t, err)
	require.True(t, firesql.IsKind(err, firesql.ParseError))
}

func TestContextCancellation(t *testing.T) {
	engine, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Execute(ctx, `SELECT * FROM Users`)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTimestampComparison(t *testing.T) {
	engine, store := newTestEngine(t)

	early, _ := firesql.ParseTime("2022-01-01T00:00:00")
	late, _ := firesql.ParseTime("2022-06-01T00:00:00")
	store.Seed("Events", firesql.Documents{
		"e1": {"name": "early", "start": early},
		"e2": {"name": "late", "start": late},
	})

	rows, err := engine.Execute(context.Background(),
		`SELECT name FROM Events WHERE start > '2022-03-01T00:00:00'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "late", rows[0]["name"])
}

func TestNestedFieldSelect(t *testing.T) {
	engine, store := newTestEngine(t)

	store.Seed("Profiles", firesql.Documents{
		"p1": {"name": "x", "address": map[string]interface{}{"city": "NYC"}},
		"p2": {"name": "y", "address": map[string]interface{}{"city": "SF"}},
	})

	rows, err := engine.Execute(context.Background(),
		`SELECT name FROM Profiles WHERE address.city = 'SF'`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "y", rows[0]["name"])
}
