package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bookline/apiserver/types"
)

const reservationColumns = `id, name, email, phone, item_type, item_name, item_description,
		start_at, end_at, status, notes, created_by, created_at, updated_at`

// ReservationRepository handles persistence for reservations. Every read
// and mutation is scoped by the owning user.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func scanReservation(row interface{ Scan(...any) error }) (types.Reservation, error) {
	var res types.Reservation
	err := row.Scan(
		&res.ID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.ItemType,
		&res.ItemName,
		&res.ItemDescription,
		&res.StartAt,
		&res.EndAt,
		&res.Status,
		&res.Notes,
		&res.CreatedBy,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	return res, err
}

// List runs the filtered, sorted, paginated read plus a count over the same
// filter. The returned total backs the page metadata.
func (r *ReservationRepository) List(ctx context.Context, filter ListFilter) ([]types.Reservation, int, error) {
	where, args := filter.whereClause()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reservations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := filter.pageLimit()
	listQuery := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE ` + where + `
		ORDER BY ` + filter.orderClause() + `
		LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reservations := make([]types.Reservation, 0, limit)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// Get fetches a reservation scoped by (id, owner).
func (r *ReservationRepository) Get(ctx context.Context, id, ownerID int) (types.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1 AND created_by = $2`
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reservation{}, ErrNotFound
		}
		return types.Reservation{}, err
	}
	return res, nil
}

// Create inserts a reservation. CreatedBy must already be stamped by the
// caller from the authenticated identity.
func (r *ReservationRepository) Create(ctx context.Context, res types.Reservation) (types.Reservation, error) {
	now := time.Now()
	res.CreatedAt = now
	res.UpdatedAt = now

	const query = `
		INSERT INTO reservations (name, email, phone, item_type, item_name, item_description,
			start_at, end_at, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		res.Name,
		res.Email,
		res.Phone,
		res.ItemType,
		res.ItemName,
		res.ItemDescription,
		res.StartAt,
		res.EndAt,
		res.Status,
		res.Notes,
		res.CreatedBy,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID); err != nil {
		return types.Reservation{}, err
	}
	return res, nil
}

// Update writes the merged record scoped by (id, owner). The caller merges
// the patch and re-checks the window invariant before calling.
func (r *ReservationRepository) Update(ctx context.Context, res types.Reservation) (types.Reservation, error) {
	res.UpdatedAt = time.Now()

	const query = `
		UPDATE reservations
		SET name = $1,
			email = $2,
			phone = $3,
			item_type = $4,
			item_name = $5,
			item_description = $6,
			start_at = $7,
			end_at = $8,
			status = $9,
			notes = $10,
			updated_at = $11
		WHERE id = $12 AND created_by = $13`
	result, err := r.db.ExecContext(
		ctx,
		query,
		res.Name,
		res.Email,
		res.Phone,
		res.ItemType,
		res.ItemName,
		res.ItemDescription,
		res.StartAt,
		res.EndAt,
		res.Status,
		res.Notes,
		res.UpdatedAt,
		res.ID,
		res.CreatedBy,
	)
	if err != nil {
		return types.Reservation{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Reservation{}, err
	}
	if affected == 0 {
		return types.Reservation{}, ErrNotFound
	}
	return res, nil
}

// Delete removes a reservation scoped by (id, owner). Deletion is permanent.
func (r *ReservationRepository) Delete(ctx context.Context, id, ownerID int) error {
	const query = `DELETE FROM reservations WHERE id = $1 AND created_by = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
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
