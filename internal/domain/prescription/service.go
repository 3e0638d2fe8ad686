// Package prescription serves prescriptions and checks that the drug,
// patient and doctor they point at exist.
package prescription

import (
	"context"
	"fmt"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/internal/platform/db"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Service = crud.Service[models.Prescription, *models.Prescription]

// Lookup reports whether a referenced record exists. The drug, patient and
// doctor services satisfy it.
type Lookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// References resolves the three relationships. A nil Lookup skips the
// existence check for that relationship.
type References struct {
	Drugs    Lookup
	Patients Lookup
	Doctors  Lookup
}

// NewService builds the prescription service. Writes are re-read so
// responses carry the display fields of the referenced records.
func NewService(repo Repository, refs References, tx db.Beginner) *Service {
	return crud.NewService[models.Prescription](repo, crud.Config[models.Prescription, *models.Prescription]{
		Entity:   models.EntityPrescription,
		Validate: refs.Validate,
		Merge:    Merge,
		Reload:   true,
		Tx:       tx,
	})
}

// Validate checks the required dosage fields, then that every reference
// carries an id of an existing record.
func (refs References) Validate(ctx context.Context, p *models.Prescription) error {
	c := crud.NewChecker(models.EntityPrescription)
	c.Required("dosageAmount", p.DosageAmount != nil)
	c.Required("dosageInterval", p.DosageInterval != nil)
	if p.Drug != nil {
		c.Required("drug.id", p.Drug.ID != nil)
	}
	if p.Patient != nil {
		c.Required("patient.id", p.Patient.ID != nil)
	}
	if p.Doctor != nil {
		c.Required("doctor.id", p.Doctor.ID != nil)
	}
	if err := c.Err(); err != nil {
		return err
	}

	checks := []struct {
		field  string
		id     *int64
		lookup Lookup
	}{
		{"drug", p.DrugID(), refs.Drugs},
		{"patient", p.PatientID(), refs.Patients},
		{"doctor", p.DoctorID(), refs.Doctors},
	}
	for _, ch := range checks {
		if ch.id == nil || ch.lookup == nil {
			continue
		}
		ok, err := ch.lookup.Exists(ctx, *ch.id)
		if err != nil {
			return fmt.Errorf("look up %s %d: %w", ch.field, *ch.id, err)
		}
		if !ok {
			return &crud.ReferenceError{Entity: models.EntityPrescription, Field: ch.field, ID: *ch.id}
		}
	}
	return nil
}

// Merge copies the fields set in patch onto dst. References in the patch
// replace the stored ones.
func Merge(dst, patch *models.Prescription) {
	if patch.DosageAmount != nil {
		dst.DosageAmount = patch.DosageAmount
	}
	if patch.DosageInterval != nil {
		dst.DosageInterval = patch.DosageInterval
	}
	if patch.Drug != nil {
		dst.Drug = patch.Drug
	}
	if patch.Patient != nil {
		dst.Patient = patch.Patient
	}
	if patch.Doctor != nil {
		dst.Doctor = patch.Doctor
	}
}
