package prescription

import (
	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
)

type Repository = crud.Repository[models.Prescription, *models.Prescription]

var sortColumns = map[string]string{
	"id":             "p.id",
	"dosageAmount":   "p.dosage_amount",
	"dosageInterval": "p.dosage_interval",
	"createdDate":    "p.created_date",
	"updatedDate":    "p.updated_date",
	"drug.id":        "p.drug_id",
	"patient.id":     "p.patient_id",
	"doctor.id":      "p.doctor_id",
}
