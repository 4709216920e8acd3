package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bookline/apiserver/types"
)

// AttachmentRepository handles the metadata rows for reservation
// attachments. File contents live in object storage; access control comes
// from scoping through the owning reservation.
type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, att types.Attachment) (types.Attachment, error) {
	att.CreatedAt = time.Now()

	const query = `
		INSERT INTO attachments (reservation_id, file_name, content_type, size_bytes, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		att.ReservationID,
		att.FileName,
		att.ContentType,
		att.SizeBytes,
		att.ObjectKey,
		att.CreatedAt,
	).Scan(&att.ID); err != nil {
		return types.Attachment{}, err
	}
	return att, nil
}

func (r *AttachmentRepository) Get(ctx context.Context, id, reservationID int) (types.Attachment, error) {
	const query = `
		SELECT id, reservation_id, file_name, content_type, size_bytes, object_key, created_at
		FROM attachments
		WHERE id = $1 AND reservation_id = $2`
	var att types.Attachment
	err := r.db.QueryRowContext(ctx, query, id, reservationID).Scan(
		&att.ID,
		&att.ReservationID,
		&att.FileName,
		&att.ContentType,
		&att.SizeBytes,
		&att.ObjectKey,
		&att.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Attachment{}, ErrNotFound
		}
		return types.Attachment{}, err
	}
	return att, nil
}

func (r *AttachmentRepository) ListByReservation(ctx context.Context, reservationID int) ([]types.Attachment, error) {
	const query = `
		SELECT id, reservation_id, file_name, content_type, size_bytes, object_key, created_at
		FROM attachments
		WHERE reservation_id = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]types.Attachment, 0)
	for rows.Next() {
		var att types.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.ReservationID,
			&att.FileName,
			&att.ContentType,
			&att.SizeBytes,
			&att.ObjectKey,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id, reservationID int) error {
	const query = `DELETE FROM attachments WHERE id = $1 AND reservation_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, reservationID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
