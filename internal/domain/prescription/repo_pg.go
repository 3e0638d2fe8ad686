package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

type repoPG struct{ pool db.Querier }

// NewRepoPG returns a Repository over the prescription table. Reads join the
// referenced drug, patient and doctor to fill their display fields.
func NewRepoPG(pool db.Querier) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const selectPrescription = `
	SELECT p.id, p.dosage_amount, p.dosage_interval, p.created_date, p.updated_date,
		dr.id, dr.brand_name, dr.generic_name,
		pa.id, pa.first_name, pa.last_name,
		dc.id, dc.first_name, dc.last_name
	FROM prescription p
	LEFT JOIN drug dr ON dr.id = p.drug_id
	LEFT JOIN patient pa ON pa.id = p.patient_id
	LEFT JOIN doctor dc ON dc.id = p.doctor_id`

func (r *repoPG) scan(row pgx.Row) (*models.Prescription, error) {
	var (
		p  models.Prescription
		dr models.Drug
		pa models.Patient
		dc models.Doctor
	)
	err := row.Scan(&p.ID, &p.DosageAmount, &p.DosageInterval, &p.CreatedDate, &p.UpdatedDate,
		&dr.ID, &dr.BrandName, &dr.GenericName,
		&pa.ID, &pa.FirstName, &pa.LastName,
		&dc.ID, &dc.FirstName, &dc.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, crud.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if dr.ID != nil {
		p.Drug = &dr
	}
	if pa.ID != nil {
		p.Patient = &pa
	}
	if dc.ID != nil {
		p.Doctor = &dc
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *models.Prescription) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (dosage_amount, dosage_interval, drug_id, patient_id, doctor_id,
			created_date, updated_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.DosageAmount, p.DosageInterval, p.DrugID(), p.PatientID(), p.DoctorID(),
		p.CreatedDate, p.UpdatedDate,
	).Scan(&p.ID)
	return referenceError(err, p)
}

func (r *repoPG) Update(ctx context.Context, p *models.Prescription) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET dosage_amount=$2, dosage_interval=$3,
			drug_id=$4, patient_id=$5, doctor_id=$6,
			created_date=$7, updated_date=$8
		WHERE id = $1`,
		p.ID, p.DosageAmount, p.DosageInterval, p.DrugID(), p.PatientID(), p.DoctorID(),
		p.CreatedDate, p.UpdatedDate)
	if err != nil {
		return referenceError(err, p)
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

// referenceError turns a foreign key violation, raised when a referenced row
// disappears after validation, into a crud.ReferenceError.
func referenceError(err error, p *models.Prescription) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return err
	}
	var (
		field string
		id    *int64
	)
	switch pgErr.ConstraintName {
	case "prescription_drug_id_fkey":
		field, id = "drug", p.DrugID()
	case "prescription_patient_id_fkey":
		field, id = "patient", p.PatientID()
	case "prescription_doctor_id_fkey":
		field, id = "doctor", p.DoctorID()
	default:
		return fmt.Errorf("%w: %s", crud.ErrReferenceNotFound, pgErr.Message)
	}
	ref := &crud.ReferenceError{Entity: models.EntityPrescription, Field: field}
	if id != nil {
		ref.ID = *id
	}
	return ref
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*models.Prescription, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, selectPrescription+` WHERE p.id = $1`, id))
}

func (r *repoPG) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM prescription WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *repoPG) List(ctx context.Context, params pagination.Params) ([]*models.Prescription, error) {
	order, err := params.OrderBy(sortColumns, "p.id")
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		selectPrescription+` `+order+` LIMIT $1 OFFSET $2`,
		params.Limit(), params.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Prescription{}
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription`).Scan(&n)
	return n, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return crud.ErrNotFound
	}
	return nil
}
