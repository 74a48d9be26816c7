package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stafflink/portal_backend/models"
	"github.com/stafflink/portal_backend/utils"
)

// NotificationRepository is the query surface of the notification store.
type NotificationRepository interface {
	Create(ctx context.Context, email, text string, module models.Module, entityID *string) (*models.Notification, error)
	List(ctx context.Context, email string, filter models.NotificationFilter) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, email string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, email string) (int64, error)
}

// PostgresNotificationRepository implements NotificationRepository over an
// *sql.DB (pgx stdlib driver).
type PostgresNotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository constructs a repository bound to the given DB.
func NewNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

const notificationColumns = "id, recipient_email, message, entity_id, module, created_at, updated_at, read_at"

// Create inserts a new unread notification. Input is checked here so every
// entry point (internal route, public route, CRUD glue) shares the same
// guard: email shape, non-empty message, known module tag.
func (r *PostgresNotificationRepository) Create(ctx context.Context, email, text string, module models.Module, entityID *string) (*models.Notification, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid recipient email", models.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", models.ErrValidation)
	}
	if !module.IsValid() {
		return nil, fmt.Errorf("%w: unknown module %q", models.ErrValidation, module)
	}

	n := &models.Notification{
		ID:             uuid.NewString(),
		RecipientEmail: email,
		Message:        text,
		EntityID:       entityID,
		Module:         module,
	}

	// Timestamps come from the database clock, the same clock MarkRead
	// stamps read_at with, so read_at can never precede created_at.
	query := `
		INSERT INTO notifications (id, recipient_email, message, entity_id, module, created_at, updated_at, read_at)
		VALUES ($1, $2, $3, $4, $5, now(), now(), NULL)
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRowContext(ctx, query,
		n.ID, n.RecipientEmail, n.Message, n.EntityID, string(n.Module)).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return n, nil
}

// List returns every notification for the recipient, newest first. The
// filter narrows by read state; there is no pagination.
func (r *PostgresNotificationRepository) List(ctx context.Context, email string, filter models.NotificationFilter) ([]*models.Notification, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid recipient email", models.ErrValidation)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_email = $1`
	switch filter {
	case models.FilterRead:
		query += ` AND read_at IS NOT NULL`
	case models.FilterUnread:
		query += ` AND read_at IS NULL`
	case models.FilterAll, "":
		// no extra clause
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", models.ErrValidation, filter)
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	result := []*models.Notification{}
	for rows.Next() {
		var item models.Notification
		if err := rows.Scan(
			&item.ID, &item.RecipientEmail, &item.Message, &item.EntityID,
			&item.Module, &item.CreatedAt, &item.UpdatedAt, &item.ReadAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return result, nil
}

// MarkRead stamps the read timestamp with the server clock, but only on a
// row owned by email. A missing row and a row owned by someone else are the
// same ErrNotFound, so ids cannot be enumerated across recipients. Re-marking an
// already-read row succeeds and keeps the original timestamp.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, email string) (*models.Notification, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	query := `
		UPDATE notifications
		SET read_at = COALESCE(read_at, now()), updated_at = now()
		WHERE id = $1 AND recipient_email = $2
		RETURNING ` + notificationColumns + `;
	`
	var item models.Notification
	err := r.db.QueryRowContext(ctx, query, id, email).Scan(
		&item.ID, &item.RecipientEmail, &item.Message, &item.EntityID,
		&item.Module, &item.CreatedAt, &item.UpdatedAt, &item.ReadAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: notification not found", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return &item, nil
}

// MarkAllRead stamps every unread notification of the recipient and returns
// how many rows changed.
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, email string) (int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	query := `
		UPDATE notifications
		SET read_at = now(), updated_at = now()
		WHERE recipient_email = $1 AND read_at IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrPersistence, err)
	}
	return n, nil
}
