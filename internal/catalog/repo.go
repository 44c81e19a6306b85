package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, created_at FROM categories ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListMiniatures(ctx context.Context) ([]Miniature, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, image, price_cents, stock, scale, category_id, created_at, updated_at
		FROM miniatures ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Miniature
	for rows.Next() {
		var m Miniature
		if err := rows.Scan(&m.ID, &m.Name, &m.Image, &m.PriceCents, &m.Stock,
			&m.Scale, &m.CategoryID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) InsertCategory(ctx context.Context, name string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO categories(id, name) VALUES ($1, $2)`, uuid.NewString(), name)
	return err
}

func (r *Repo) UpdateCategory(ctx context.Context, id, name string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE categories SET name=$2 WHERE id=$1`, id, name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes the category only; miniatures keep existing with
// their category reference detached by the FK (ON DELETE SET NULL).
func (r *Repo) DeleteCategory(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) InsertMiniature(ctx context.Context, in MiniatureInput) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO miniatures(id, name, image, price_cents, stock, scale, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), in.Name, in.Image, in.PriceCents, in.Stock, in.Scale, in.CategoryID)
	return err
}

func (r *Repo) UpdateMiniature(ctx context.Context, id string, in MiniatureInput) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE miniatures
		SET name=$2, image=$3, price_cents=$4, stock=$5, scale=$6, category_id=$7, updated_at=now()
		WHERE id=$1`,
		id, in.Name, in.Image, in.PriceCents, in.Stock, in.Scale, in.CategoryID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteMiniature(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM miniatures WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
