package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stafflink/portal_backend/models"
)

func newRepoWithMock(t *testing.T) (*PostgresNotificationRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewNotificationRepository(db), mock, db
}

func notificationRows(t *testing.T, notifications ...*models.Notification) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "recipient_email", "message", "entity_id", "module", "created_at", "updated_at", "read_at",
	})
	for _, n := range notifications {
		rows.AddRow(n.ID, n.RecipientEmail, n.Message, n.EntityID, string(n.Module), n.CreatedAt, n.UpdatedAt, n.ReadAt)
	}
	return rows
}

func TestCreate_InsertsUnread(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	stamped := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO notifications .* VALUES .*now\(\), now\(\), NULL.*RETURNING created_at, updated_at`).
		WithArgs(sqlmock.AnyArg(), "a@x.com", "Leave approved", nil, "Leaves").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(stamped, stamped))

	n, err := repo.Create(context.Background(), "a@x.com", "Leave approved", models.ModuleLeaves, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected a generated id")
	}
	if n.ReadAt != nil {
		t.Fatal("a freshly created notification must be unread")
	}
	// The timestamps are whatever the database clock said, not the app clock.
	if !n.CreatedAt.Equal(stamped) || !n.UpdatedAt.Equal(stamped) {
		t.Fatalf("timestamps not adopted from the insert: %v / %v", n.CreatedAt, n.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_NormalizesRecipientEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	stamped := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), "a@x.com", "hi", nil, "Company").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(stamped, stamped))

	n, err := repo.Create(context.Background(), "  A@X.com ", "hi", models.ModuleCompany, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.RecipientEmail != "a@x.com" {
		t.Fatalf("want normalized email, got %q", n.RecipientEmail)
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	tests := []struct {
		name   string
		email  string
		text   string
		module models.Module
	}{
		{"bad email", "not-an-email", "hello", models.ModuleLeaves},
		{"empty text", "a@x.com", "   ", models.ModuleLeaves},
		{"unknown module", "a@x.com", "hello", models.Module("NotARealModule")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), tc.email, tc.text, tc.module, nil)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
	// None of the rejected inputs may reach the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database traffic: %v", err)
	}
}

func TestCreate_WrapsDBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.Create(context.Background(), "a@x.com", "hello", models.ModuleLeaves, nil)
	if !errors.Is(err, models.ErrPersistence) {
		t.Fatalf("want ErrPersistence, got %v", err)
	}
}

func TestList_FilterClauses(t *testing.T) {
	tests := []struct {
		filter  models.NotificationFilter
		pattern string
	}{
		{models.FilterAll, `SELECT .* FROM notifications WHERE recipient_email = \$1 ORDER BY created_at DESC`},
		{models.FilterUnread, `WHERE recipient_email = \$1 AND read_at IS NULL ORDER BY`},
		{models.FilterRead, `WHERE recipient_email = \$1 AND read_at IS NOT NULL ORDER BY`},
	}
	for _, tc := range tests {
		t.Run(string(tc.filter), func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(tc.pattern).
				WithArgs("a@x.com").
				WillReturnRows(notificationRows(t))

			list, err := repo.List(context.Background(), "a@x.com", tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(list) != 0 {
				t.Fatalf("want empty list, got %d", len(list))
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestList_ScansRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	read := now.Add(-time.Minute)
	entity := "leave-42"
	rows := notificationRows(t,
		&models.Notification{ID: "n2", RecipientEmail: "a@x.com", Message: "newer", Module: models.ModuleCompany, CreatedAt: now, UpdatedAt: now},
		&models.Notification{ID: "n1", RecipientEmail: "a@x.com", Message: "older", EntityID: &entity, Module: models.ModuleLeaves, CreatedAt: now.Add(-time.Hour), UpdatedAt: read, ReadAt: &read},
	)
	mock.ExpectQuery(`SELECT .* FROM notifications`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), "a@x.com", models.FilterAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 rows, got %d", len(list))
	}
	if list[0].ID != "n2" || list[0].IsRead() {
		t.Fatalf("first row wrong: %+v", list[0])
	}
	if list[1].EntityID == nil || *list[1].EntityID != "leave-42" {
		t.Fatalf("entity id not scanned: %+v", list[1])
	}
	if !list[1].IsRead() {
		t.Fatal("second row should be read")
	}
}

func TestMarkRead_ScopesToRecipient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := notificationRows(t, &models.Notification{
		ID: "n1", RecipientEmail: "a@x.com", Message: "hi",
		Module: models.ModuleLeaves, CreatedAt: now.Add(-time.Hour), UpdatedAt: now, ReadAt: &now,
	})
	mock.ExpectQuery(`UPDATE notifications\s+SET read_at = COALESCE\(read_at, now\(\)\).*WHERE id = \$1 AND recipient_email = \$2`).
		WithArgs("n1", "a@x.com").
		WillReturnRows(rows)

	n, err := repo.MarkRead(context.Background(), "n1", "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ReadAt == nil {
		t.Fatal("read_at must be set after MarkRead")
	}
	if n.ReadAt.Before(n.CreatedAt) {
		t.Fatalf("read_at %v precedes created_at %v", n.ReadAt, n.CreatedAt)
	}
}

func TestMarkRead_ForeignRecordLooksAbsent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	// The row exists but belongs to someone else: the WHERE clause matches
	// nothing and the caller cannot tell the difference from a bad id.
	mock.ExpectQuery(`UPDATE notifications`).
		WithArgs("n1", "b@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkRead(context.Background(), "n1", "b@x.com")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestMarkAllRead_ReturnsCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE notifications\s+SET read_at = now\(\).*WHERE recipient_email = \$1 AND read_at IS NULL`).
		WithArgs("a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.MarkAllRead(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("want 3 rows updated, got %d", count)
	}
}
