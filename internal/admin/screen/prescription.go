package screen

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/internal/admin/form"
	"github.com/pharmascript/pharmascript/pkg/entity"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

// PrescriptionUpdate is the update screen plus the option lists for the
// drug, patient and doctor selectors. The current references are always
// present in their lists.
type PrescriptionUpdate struct {
	*Update[models.Prescription, *models.Prescription]
	Form *form.PrescriptionForm

	drugs    Resource[*models.Drug]
	patients Resource[*models.Patient]
	doctors  Resource[*models.Doctor]

	DrugsSharedCollection    []*models.Drug
	PatientsSharedCollection []*models.Patient
	DoctorsSharedCollection  []*models.Doctor
}

// Lookups are the collections a prescription can reference.
type Lookups struct {
	Drugs    Resource[*models.Drug]
	Patients Resource[*models.Patient]
	Doctors  Resource[*models.Doctor]
}

func NewPrescriptionUpdate(res Resource[*models.Prescription], f *form.PrescriptionForm, lookups Lookups, history History, logger zerolog.Logger) *PrescriptionUpdate {
	return &PrescriptionUpdate{
		Update:   NewUpdate[models.Prescription](res, Editor[*models.Prescription](f), history, logger),
		Form:     f,
		drugs:    lookups.Drugs,
		patients: lookups.Patients,
		doctors:  lookups.Doctors,
	}
}

// Init shows record and loads the selector options.
func (u *PrescriptionUpdate) Init(ctx context.Context, record *models.Prescription) error {
	u.Update.Init(record)
	if record != nil {
		u.DrugsSharedCollection = entity.AddToCollectionIfMissing(u.DrugsSharedCollection, record.Drug)
		u.PatientsSharedCollection = entity.AddToCollectionIfMissing(u.PatientsSharedCollection, record.Patient)
		u.DoctorsSharedCollection = entity.AddToCollectionIfMissing(u.DoctorsSharedCollection, record.Doctor)
	}
	return u.LoadRelationshipsOptions(ctx)
}

func (u *PrescriptionUpdate) current() *models.Prescription {
	if u.Record != nil {
		return u.Record
	}
	return &models.Prescription{}
}

// LoadRelationshipsOptions replaces the three option lists with the first
// page of each collection, merged with the current references. Each list is
// loaded on its own; a list whose query fails keeps its previous options and
// the failures are returned together.
func (u *PrescriptionUpdate) LoadRelationshipsOptions(ctx context.Context) error {
	cur := u.current()
	params := pagination.Default()

	return errors.Join(
		loadOptions(ctx, u.drugs, params, &u.DrugsSharedCollection, cur.Drug),
		loadOptions(ctx, u.patients, params, &u.PatientsSharedCollection, cur.Patient),
		loadOptions(ctx, u.doctors, params, &u.DoctorsSharedCollection, cur.Doctor),
	)
}

func loadOptions[E any, P entity.Ref[E]](ctx context.Context, res Resource[P], params pagination.Params, dst *[]P, current P) error {
	page, err := res.Query(ctx, params)
	if err != nil {
		return err
	}
	*dst = entity.AddToCollectionIfMissing(page.Items, current)
	return nil
}

func (u *PrescriptionUpdate) CompareDrug(a, b *models.Drug) bool {
	return entity.Compare(a, b)
}

func (u *PrescriptionUpdate) ComparePatient(a, b *models.Patient) bool {
	return entity.Compare(a, b)
}

func (u *PrescriptionUpdate) CompareDoctor(a, b *models.Doctor) bool {
	return entity.Compare(a, b)
}
