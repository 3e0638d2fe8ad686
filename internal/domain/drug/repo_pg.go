package drug

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

type repoPG struct{ pool db.Querier }

// NewRepoPG returns a Repository backed by the drug table. pool is usually a
// *pgxpool.Pool; transactions started with db.WithTx are picked up from the
// context.
func NewRepoPG(pool db.Querier) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const drugCols = `id, maker, brand_name, generic_name, created_date, updated_date`

func (r *repoPG) scan(row pgx.Row) (*models.Drug, error) {
	var d models.Drug
	err := row.Scan(&d.ID, &d.Maker, &d.BrandName, &d.GenericName, &d.CreatedDate, &d.UpdatedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, crud.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *models.Drug) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO drug (maker, brand_name, generic_name, created_date, updated_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.Maker, d.BrandName, d.GenericName, d.CreatedDate, d.UpdatedDate,
	).Scan(&d.ID)
}

func (r *repoPG) Update(ctx context.Context, d *models.Drug) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE drug SET maker=$2, brand_name=$3, generic_name=$4, created_date=$5, updated_date=$6
		WHERE id = $1`,
		d.ID, d.Maker, d.BrandName, d.GenericName, d.CreatedDate, d.UpdatedDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*models.Drug, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+drugCols+` FROM drug WHERE id = $1`, id))
}

func (r *repoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM drug WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *repoPG) List(ctx context.Context, params pagination.Params) ([]*models.Drug, error) {
	order, err := params.OrderBy(sortColumns, "id")
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+drugCols+` FROM drug `+order+` LIMIT $1 OFFSET $2`,
		params.Limit(), params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Drug{}
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drug: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM drug`).Scan(&n)
	return n, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM drug WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}
