package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Store{DB: db}, mock
}

func TestEnsureSessionCreatesRow(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sessions (session_id, client_id) VALUES ($1,$2)`)).
		WithArgs("s1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "client_id", "turn_count", "email_provided", "created_at", "updated_at"}).
			AddRow("s1", "c1", 0, false, now, now))

	sess, err := st.EnsureSession(context.Background(), "s1", "c1")
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if sess.SessionID != "s1" || sess.TurnCount != 0 || sess.EmailProvided {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestIncrementTurnReturnsNewCount(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE sessions SET turn_count = turn_count + 1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"turn_count"}).AddRow(4))

	count, err := st.IncrementTurn(context.Background(), "s1")
	if err != nil {
		t.Fatalf("IncrementTurn: %v", err)
	}
	if count != 4 {
		t.Fatalf("count: want 4 got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkEmailProvidedFirstFlip(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET email_provided = TRUE`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	first, err := st.MarkEmailProvided(context.Background(), "s1")
	if err != nil {
		t.Fatalf("MarkEmailProvided: %v", err)
	}
	if !first {
		t.Fatal("first flip should report true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkEmailProvidedAlreadySet(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET email_provided = TRUE`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := st.MarkEmailProvided(context.Background(), "s1")
	if err != nil {
		t.Fatalf("MarkEmailProvided: %v", err)
	}
	if first {
		t.Fatal("repeat flip should report false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestRecentMessagesChronologicalOrder(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	// the query reads newest-first; the store must reverse it
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id DESC LIMIT $2`)).
		WithArgs("s1", 6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "role", "content", "created_at"}).
			AddRow(3, "s1", "user", "third", now).
			AddRow(2, "s1", "assistant", "second", now).
			AddRow(1, "s1", "user", "first", now))

	msgs, err := st.RecentMessages(context.Background(), "s1", 6)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages: want 3 got %d", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[2].Content != "third" {
		t.Fatalf("not chronological: %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateLeadNullsEmptyFields(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO leads`)).
		WithArgs(sqlmock.AnyArg(), "jane", "jane@acme.com", "", "", "from chat").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := st.CreateLead(context.Background(), "jane", "jane@acme.com", "", "", "from chat")
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated lead id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpsertSourceReturnsID(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO sources`)).
		WithArgs(sqlmock.AnyArg(), "c1", "https://x.example", "@daily").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("src-1"))

	id, err := st.UpsertSource(context.Background(), "c1", "https://x.example", "@daily")
	if err != nil {
		t.Fatalf("UpsertSource: %v", err)
	}
	if id != "src-1" {
		t.Fatalf("id: want src-1 got %s", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
