package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alem-hub/wellness-hub/internal/domain/notification"
	"github.com/alem-hub/wellness-hub/pkg/retry"
)

// Execer is satisfied by *Connection, *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const insertNotificationSQL = `
INSERT INTO notification_archive
    (id, profile_id, seq, kind, priority, signature, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT DO NOTHING`

// NotificationArchive appends delivered notifications to notification_archive.
// Redelivery of the same notification is a no-op.
type NotificationArchive struct {
	db Execer
}

// NewNotificationArchive creates the archive channel.
func NewNotificationArchive(db Execer) *NotificationArchive {
	return &NotificationArchive{db: db}
}

// Type implements notification.NotificationChannel.
func (a *NotificationArchive) Type() notification.ChannelType {
	return notification.ChannelTypeArchive
}

// Deliver implements notification.NotificationChannel. Transient database
// errors are marked retryable.
func (a *NotificationArchive) Deliver(ctx context.Context, n notification.Notification) error {
	_, err := a.db.Exec(ctx, insertNotificationSQL,
		n.ID.String(),
		n.ProfileID,
		int64(n.Seq),
		string(n.Kind),
		n.Priority.String(),
		n.Signature,
		n.Message,
		n.CreatedAt,
	)
	if err == nil {
		return nil
	}

	err = fmt.Errorf("archive notification %s: %w", n.ID, err)
	if IsTransient(err) {
		return retry.Retryable(err)
	}
	return err
}
