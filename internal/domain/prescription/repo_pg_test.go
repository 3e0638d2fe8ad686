package prescription

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
)

func TestReferenceError_ForeignKeyViolation(t *testing.T) {
	p := models.SamplePrescriptionFull()

	tests := []struct {
		constraint string
		field      string
		id         int64
	}{
		{"prescription_drug_id_fkey", "drug", *p.Drug.ID},
		{"prescription_patient_id_fkey", "patient", *p.Patient.ID},
		{"prescription_doctor_id_fkey", "doctor", *p.Doctor.ID},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: tt.constraint}
			err := referenceError(fmt.Errorf("insert: %w", pgErr), p)

			var ref *crud.ReferenceError
			if !errors.As(err, &ref) {
				t.Fatalf("expected *crud.ReferenceError, got %v", err)
			}
			if ref.Field != tt.field || ref.ID != tt.id || ref.Entity != models.EntityPrescription {
				t.Errorf("unexpected reference error %+v", ref)
			}
			if !errors.Is(err, crud.ErrReferenceNotFound) {
				t.Error("expected ErrReferenceNotFound")
			}
		})
	}
}

func TestReferenceError_UnknownConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "some_other_fkey", Message: "violates foreign key"}
	if err := referenceError(pgErr, &models.Prescription{}); !errors.Is(err, crud.ErrReferenceNotFound) {
		t.Errorf("expected ErrReferenceNotFound, got %v", err)
	}
}

func TestReferenceError_PassesOtherErrors(t *testing.T) {
	if referenceError(nil, &models.Prescription{}) != nil {
		t.Error("expected nil to pass through")
	}
	other := &pgconn.PgError{Code: "23502"}
	if err := referenceError(other, &models.Prescription{}); err != other {
		t.Errorf("expected the original error, got %v", err)
	}
}
