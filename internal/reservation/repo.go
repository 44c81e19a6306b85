package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Reserve claims one unit of stock and records the reservation in a single
// transaction. The decrement is conditional (stock > 0), so two racing
// callers can never drive stock negative; the loser simply matches no row.
func (r *Repo) Reserve(ctx context.Context, userID, miniatureID string) (*Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockUpdate, err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE miniatures SET stock = stock - 1, updated_at = now()
		WHERE id = $1 AND stock > 0`, miniatureID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockUpdate, err)
	}
	if ct.RowsAffected() == 0 {
		// No row matched: either the miniature is gone or stock is zero.
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM miniatures WHERE id = $1`, miniatureID).Scan(&stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStockCheck, err)
		}
		return nil, ErrOutOfStock
	}

	var snap Snapshot
	err = tx.QueryRow(ctx, `
		SELECT name, image, price_cents FROM miniatures WHERE id = $1`, miniatureID).
		Scan(&snap.Name, &snap.Image, &snap.PriceCents)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockCheck, err)
	}

	res := &Reservation{
		ID:          uuid.NewString(),
		UserID:      userID,
		MiniatureID: &miniatureID,
		Status:      StatusReserved,
		Snapshot:    snap,
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO reservations(id, user_id, miniature_id, status, snapshot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		res.ID, res.UserID, miniatureID, res.Status, snapJSON).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		// Rollback undoes the decrement; no compensating write needed.
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStockUpdate, err)
	}
	return res, nil
}

// Cancel removes the caller's reservation, restocking by one unless the
// reservation had already been cancelled or its miniature no longer exists.
func (r *Repo) Cancel(ctx context.Context, userID, reservationID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var owner string
	var miniatureID *string
	var status Status
	err = tx.QueryRow(ctx, `
		SELECT user_id, miniature_id, status FROM reservations
		WHERE id = $1 FOR UPDATE`, reservationID).
		Scan(&owner, &miniatureID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if owner != userID {
		// Do not reveal other users' reservations.
		return false, ErrNotFound
	}

	restocked := false
	if status != StatusCancelled && miniatureID != nil {
		ct, err := tx.Exec(ctx, `
			UPDATE miniatures SET stock = stock + 1, updated_at = now()
			WHERE id = $1`, *miniatureID)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStockUpdate, err)
		}
		restocked = ct.RowsAffected() == 1
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, reservationID); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return restocked, nil
}

// SetStatus applies an admin status transition. Stock is restored exactly
// once, on the first transition into Cancelled, inside the same transaction
// as the status write.
func (r *Repo) SetStatus(ctx context.Context, reservationID string, to Status) (Status, bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback(ctx)

	var from Status
	var miniatureID *string
	err = tx.QueryRow(ctx, `
		SELECT status, miniature_id FROM reservations
		WHERE id = $1 FOR UPDATE`, reservationID).
		Scan(&from, &miniatureID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, ErrNotFound
	}
	if err != nil {
		return "", false, err
	}

	if from == to {
		// Repeated transition is a no-op; in particular no second restock.
		return from, false, nil
	}
	if !CanTransition(from, to) {
		return from, false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	restocked := false
	if to == StatusCancelled && miniatureID != nil {
		ct, err := tx.Exec(ctx, `
			UPDATE miniatures SET stock = stock + 1, updated_at = now()
			WHERE id = $1`, *miniatureID)
		if err != nil {
			return from, false, fmt.Errorf("%w: %v", ErrStockUpdate, err)
		}
		restocked = ct.RowsAffected() == 1
	}

	if _, err := tx.Exec(ctx, `
		UPDATE reservations SET status = $2, updated_at = now()
		WHERE id = $1`, reservationID, to); err != nil {
		return from, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return from, false, err
	}
	return from, restocked, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]OwnReservation, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.status, r.created_at, r.miniature_id, r.snapshot,
		       m.name, m.image, m.price_cents
		FROM reservations r
		LEFT JOIN miniatures m ON m.id = r.miniature_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OwnReservation
	for rows.Next() {
		var v OwnReservation
		var snapJSON []byte
		var liveName, liveImage *string
		var livePrice *int
		if err := rows.Scan(&v.ID, &v.Status, &v.CreatedAt, &v.MiniatureID, &snapJSON,
			&liveName, &liveImage, &livePrice); err != nil {
			return nil, err
		}
		var snap Snapshot
		_ = json.Unmarshal(snapJSON, &snap)
		v.Name = firstOf(snap.Name, liveName, "Item indisponível")
		v.Image = firstOf(snap.Image, liveImage, "")
		v.PriceCents = snap.PriceCents
		if v.PriceCents == 0 && livePrice != nil {
			v.PriceCents = *livePrice
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) ListAll(ctx context.Context) ([]AdminReservation, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.user_id, u.email, r.miniature_id, r.snapshot, r.status, r.created_at,
		       m.name
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		LEFT JOIN miniatures m ON m.id = r.miniature_id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminReservation
	for rows.Next() {
		var v AdminReservation
		var snapJSON []byte
		var liveName *string
		if err := rows.Scan(&v.ID, &v.UserID, &v.UserEmail, &v.MiniatureID, &snapJSON,
			&v.Status, &v.CreatedAt, &liveName); err != nil {
			return nil, err
		}
		var snap Snapshot
		_ = json.Unmarshal(snapJSON, &snap)
		v.MiniatureName = firstOf(snap.Name, liveName, "Item excluído")
		out = append(out, v)
	}
	return out, rows.Err()
}

func firstOf(snap string, live *string, fallback string) string {
	if snap != "" {
		return snap
	}
	if live != nil && *live != "" {
		return *live
	}
	return fallback
}
