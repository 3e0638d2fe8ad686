package form

import (
	"github.com/pharmascript/pharmascript/pkg/entity"
	"github.com/pharmascript/pharmascript/pkg/models"
)

// idControl is disabled in every form: ids are assigned by the server.
func idControl[T any](field func(v *T) any) Control[T] {
	return Control[T]{Name: "id", Required: true, ReadOnly: true, Field: field}
}

func required[T any](name string, field func(v *T) any) Control[T] {
	return Control[T]{Name: name, Required: true, Field: field}
}

var doctorControls = []Control[models.Doctor]{
	idControl(func(d *models.Doctor) any { return &d.ID }),
	required("firstName", func(d *models.Doctor) any { return &d.FirstName }),
	required("lastName", func(d *models.Doctor) any { return &d.LastName }),
	required("licenseNumber", func(d *models.Doctor) any { return &d.LicenseNumber }),
	required("createdDate", func(d *models.Doctor) any { return &d.CreatedDate }),
	required("updatedDate", func(d *models.Doctor) any { return &d.UpdatedDate }),
}

var drugControls = []Control[models.Drug]{
	idControl(func(d *models.Drug) any { return &d.ID }),
	required("maker", func(d *models.Drug) any { return &d.Maker }),
	required("brandName", func(d *models.Drug) any { return &d.BrandName }),
	required("genericName", func(d *models.Drug) any { return &d.GenericName }),
	required("createdDate", func(d *models.Drug) any { return &d.CreatedDate }),
	required("updatedDate", func(d *models.Drug) any { return &d.UpdatedDate }),
}

var patientControls = []Control[models.Patient]{
	idControl(func(p *models.Patient) any { return &p.ID }),
	required("firstName", func(p *models.Patient) any { return &p.FirstName }),
	required("lastName", func(p *models.Patient) any { return &p.LastName }),
	required("birthdate", func(p *models.Patient) any { return &p.Birthdate }),
	required("createdDate", func(p *models.Patient) any { return &p.CreatedDate }),
	required("updatedDate", func(p *models.Patient) any { return &p.UpdatedDate }),
}

var prescriptionControls = []Control[models.Prescription]{
	idControl(func(p *models.Prescription) any { return &p.ID }),
	required("dosageAmount", func(p *models.Prescription) any { return &p.DosageAmount }),
	required("dosageInterval", func(p *models.Prescription) any { return &p.DosageInterval }),
	required("createdDate", func(p *models.Prescription) any { return &p.CreatedDate }),
	required("updatedDate", func(p *models.Prescription) any { return &p.UpdatedDate }),
}

func NewDoctorForm(d *models.Doctor, opts ...Option) *Form[models.Doctor] {
	return New(doctorControls, d, opts...)
}

func NewDrugForm(d *models.Drug, opts ...Option) *Form[models.Drug] {
	return New(drugControls, d, opts...)
}

func NewPatientForm(p *models.Patient, opts ...Option) *Form[models.Patient] {
	return New(patientControls, p, opts...)
}

// PrescriptionForm adds the three optional relationship selections to the
// scalar controls. Selections hold references, not raw strings.
type PrescriptionForm struct {
	*Form[models.Prescription]
	Drug    *models.Drug
	Patient *models.Patient
	Doctor  *models.Doctor
}

func NewPrescriptionForm(p *models.Prescription, opts ...Option) *PrescriptionForm {
	f := &PrescriptionForm{Form: New(prescriptionControls, nil, opts...)}
	f.Reset(p)
	return f
}

// Reset replaces the raw values and the selections.
func (f *PrescriptionForm) Reset(p *models.Prescription) {
	f.Form.Reset(p)
	f.Drug, f.Patient, f.Doctor = nil, nil, nil
	if p != nil {
		f.Drug, f.Patient, f.Doctor = p.Drug, p.Patient, p.Doctor
	}
}

// Value extracts the prescription with its selected references.
func (f *PrescriptionForm) Value() (*models.Prescription, error) {
	p, err := f.Form.Value()
	if err != nil {
		return nil, err
	}
	p.Drug, p.Patient, p.Doctor = f.Drug.Ref(), f.Patient.Ref(), f.Doctor.Ref()
	return p, nil
}

// Select picks the option matching the current selection, so a selector
// shows it as chosen even when the option list holds a different copy.
func Select[E any, P entity.Ref[E]](options []P, current P) P {
	for _, o := range options {
		if entity.Compare[E](o, current) {
			return o
		}
	}
	return current
}
