package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

type repoPG struct{ pool db.Querier }

func NewRepoPG(pool db.Querier) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, first_name, last_name, birthdate, created_date, updated_date`

func (r *repoPG) scan(row pgx.Row) (*models.Patient, error) {
	var p models.Patient
	var birth *time.Time
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &birth, &p.CreatedDate, &p.UpdatedDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, crud.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Birthdate = dateOf(birth)
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *models.Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (first_name, last_name, birthdate, created_date, updated_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.FirstName, p.LastName, birthdateArg(p.Birthdate), p.CreatedDate, p.UpdatedDate,
	).Scan(&p.ID)
}

func (r *repoPG) Update(ctx context.Context, p *models.Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, birthdate=$4,
			created_date=$5, updated_date=$6
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, birthdateArg(p.Birthdate), p.CreatedDate, p.UpdatedDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *repoPG) List(ctx context.Context, params pagination.Params) ([]*models.Patient, error) {
	order, err := params.OrderBy(sortColumns, "id")
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient `+order+` LIMIT $1 OFFSET $2`,
		params.Limit(), params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Patient{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&n)
	return n, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}
