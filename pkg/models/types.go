// Package models holds the wire and domain shapes shared by the pharmascript
// server and its admin client.
package models

import (
	"time"
)

// Entity names, used in alert headers, problem bodies and audit logs.
const (
	EntityDoctor       = "doctor"
	EntityDrug         = "drug"
	EntityPatient      = "patient"
	EntityPrescription = "prescription"
)

// Resource paths relative to the server root.
const (
	DoctorsPath       = "api/doctors"
	DrugsPath         = "api/drugs"
	PatientsPath      = "api/patients"
	PrescriptionsPath = "api/prescriptions"
)

// Doctor is a prescribing physician.
type Doctor struct {
	ID            *int64     `json:"id"`
	FirstName     *string    `json:"firstName,omitempty"`
	LastName      *string    `json:"lastName,omitempty"`
	LicenseNumber *string    `json:"licenseNumber,omitempty"`
	CreatedDate   *time.Time `json:"createdDate,omitempty"`
	UpdatedDate   *time.Time `json:"updatedDate,omitempty"`
}

func (d *Doctor) Identifier() (int64, bool) { return idOf(d.ID) }

// ToWire returns a copy with timestamps normalised to UTC.
func (d *Doctor) ToWire() *Doctor {
	out := *d
	out.CreatedDate = utc(d.CreatedDate)
	out.UpdatedDate = utc(d.UpdatedDate)
	return &out
}

// Ref returns the non-owning reference form used inside a Prescription.
func (d *Doctor) Ref() *Doctor {
	if d == nil {
		return nil
	}
	return &Doctor{ID: d.ID, FirstName: d.FirstName, LastName: d.LastName}
}

// Drug is a catalogued medication.
type Drug struct {
	ID          *int64     `json:"id"`
	Maker       *string    `json:"maker,omitempty"`
	BrandName   *string    `json:"brandName,omitempty"`
	GenericName *string    `json:"genericName,omitempty"`
	CreatedDate *time.Time `json:"createdDate,omitempty"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
}

func (d *Drug) Identifier() (int64, bool) { return idOf(d.ID) }

func (d *Drug) ToWire() *Drug {
	out := *d
	out.CreatedDate = utc(d.CreatedDate)
	out.UpdatedDate = utc(d.UpdatedDate)
	return &out
}

func (d *Drug) Ref() *Drug {
	if d == nil {
		return nil
	}
	return &Drug{ID: d.ID, BrandName: d.BrandName, GenericName: d.GenericName}
}

// Patient is a person prescriptions are written for.
type Patient struct {
	ID          *int64     `json:"id"`
	FirstName   *string    `json:"firstName,omitempty"`
	LastName    *string    `json:"lastName,omitempty"`
	Birthdate   *Date      `json:"birthdate,omitempty"`
	CreatedDate *time.Time `json:"createdDate,omitempty"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
}

func (p *Patient) Identifier() (int64, bool) { return idOf(p.ID) }

func (p *Patient) ToWire() *Patient {
	out := *p
	out.CreatedDate = utc(p.CreatedDate)
	out.UpdatedDate = utc(p.UpdatedDate)
	return &out
}

func (p *Patient) Ref() *Patient {
	if p == nil {
		return nil
	}
	return &Patient{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
}

// Prescription joins a Drug, a Patient and a Doctor. The three references are
// lookups by id; only the id and display fields are populated.
type Prescription struct {
	ID             *int64     `json:"id"`
	DosageAmount   *int       `json:"dosageAmount,omitempty"`
	DosageInterval *int       `json:"dosageInterval,omitempty"`
	CreatedDate    *time.Time `json:"createdDate,omitempty"`
	UpdatedDate    *time.Time `json:"updatedDate,omitempty"`
	Drug           *Drug      `json:"drug,omitempty"`
	Patient        *Patient   `json:"patient,omitempty"`
	Doctor         *Doctor    `json:"doctor,omitempty"`
}

func (p *Prescription) Identifier() (int64, bool) { return idOf(p.ID) }

func (p *Prescription) ToWire() *Prescription {
	out := *p
	out.CreatedDate = utc(p.CreatedDate)
	out.UpdatedDate = utc(p.UpdatedDate)
	out.Drug = p.Drug.Ref()
	out.Patient = p.Patient.Ref()
	out.Doctor = p.Doctor.Ref()
	return &out
}

// DrugID returns the referenced drug id, if any.
func (p *Prescription) DrugID() *int64 {
	if p.Drug == nil {
		return nil
	}
	return p.Drug.ID
}

func (p *Prescription) PatientID() *int64 {
	if p.Patient == nil {
		return nil
	}
	return p.Patient.ID
}

func (p *Prescription) DoctorID() *int64 {
	if p.Doctor == nil {
		return nil
	}
	return p.Doctor.ID
}

func idOf(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T { return &v }
