package models

import "time"

// Fixture values for tests. Each call returns fresh copies so callers may
// mutate them freely.

func sampleTime(s string) *time.Time {
	t, err := time.Parse(DateTimeFormat, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleDate(s string) *Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// SampleDoctor returns the doctor with every required field set.
func SampleDoctor() *Doctor {
	return &Doctor{
		ID:            Ptr(int64(47308)),
		FirstName:     Ptr("Kendall"),
		LastName:      Ptr("Koch"),
		LicenseNumber: Ptr("Investment reinvent Guernsey"),
		CreatedDate:   sampleTime("2023-03-06T08:52"),
		UpdatedDate:   sampleTime("2023-03-07T00:17"),
	}
}

// SampleDoctorPartial returns a second persisted doctor.
func SampleDoctorPartial() *Doctor {
	return &Doctor{
		ID:            Ptr(int64(37126)),
		FirstName:     Ptr("Claude"),
		LastName:      Ptr("Dicki"),
		LicenseNumber: Ptr("Investment"),
		CreatedDate:   sampleTime("2023-03-06T21:28"),
		UpdatedDate:   sampleTime("2023-03-06T11:02"),
	}
}

// NewSampleDoctor returns a doctor that has not been saved yet.
func NewSampleDoctor() *Doctor {
	return &Doctor{
		FirstName:     Ptr("Burnice"),
		LastName:      Ptr("Osinski"),
		LicenseNumber: Ptr("Dynamic"),
		CreatedDate:   sampleTime("2023-03-06T07:17"),
		UpdatedDate:   sampleTime("2023-03-06T15:35"),
	}
}

func SampleDrug() *Drug {
	return &Drug{
		ID:          Ptr(int64(4801)),
		Maker:       Ptr("Games"),
		BrandName:   Ptr("Buckinghamshire"),
		GenericName: Ptr("system"),
		CreatedDate: sampleTime("2023-03-07T01:11"),
		UpdatedDate: sampleTime("2023-03-06T10:34"),
	}
}

func SampleDrugPartial() *Drug {
	return &Drug{
		ID:          Ptr(int64(28644)),
		Maker:       Ptr("optimal"),
		BrandName:   Ptr("connecting Savings"),
		GenericName: Ptr("Cambridgeshire action-items"),
		CreatedDate: sampleTime("2023-03-06T17:16"),
		UpdatedDate: sampleTime("2023-03-07T02:44"),
	}
}

func NewSampleDrug() *Drug {
	return &Drug{
		Maker:       Ptr("reintermediate Florida"),
		BrandName:   Ptr("Tools Frozen Ramp"),
		GenericName: Ptr("Loan cross-platform"),
		CreatedDate: sampleTime("2023-03-06T18:04"),
		UpdatedDate: sampleTime("2023-03-06T15:15"),
	}
}

func SamplePatient() *Patient {
	return &Patient{
		ID:          Ptr(int64(39843)),
		FirstName:   Ptr("Briana"),
		LastName:    Ptr("Stehr"),
		Birthdate:   sampleDate("2023-03-06"),
		CreatedDate: sampleTime("2023-03-06T13:17"),
		UpdatedDate: sampleTime("2023-03-06T22:57"),
	}
}

func SamplePatientPartial() *Patient {
	return &Patient{
		ID:          Ptr(int64(51891)),
		FirstName:   Ptr("Leone"),
		LastName:    Ptr("Emmerich"),
		Birthdate:   sampleDate("2023-03-06"),
		CreatedDate: sampleTime("2023-03-06T15:50"),
		UpdatedDate: sampleTime("2023-03-06T03:47"),
	}
}

func NewSamplePatient() *Patient {
	return &Patient{
		FirstName:   Ptr("Nicole"),
		LastName:    Ptr("Anderson"),
		Birthdate:   sampleDate("2023-03-06"),
		CreatedDate: sampleTime("2023-03-06T03:19"),
		UpdatedDate: sampleTime("2023-03-06T17:10"),
	}
}

// SamplePrescription returns a persisted prescription without references.
func SamplePrescription() *Prescription {
	return &Prescription{
		ID:             Ptr(int64(33612)),
		DosageAmount:   Ptr(79691),
		DosageInterval: Ptr(47803),
		CreatedDate:    sampleTime("2023-03-06T12:23"),
		UpdatedDate:    sampleTime("2023-03-06T11:37"),
	}
}

// SamplePrescriptionFull returns a persisted prescription referencing the
// sample drug, patient and doctor.
func SamplePrescriptionFull() *Prescription {
	return &Prescription{
		ID:             Ptr(int64(45004)),
		DosageAmount:   Ptr(13584),
		DosageInterval: Ptr(58875),
		CreatedDate:    sampleTime("2023-03-07T01:43"),
		UpdatedDate:    sampleTime("2023-03-06T13:35"),
		Drug:           SampleDrug().Ref(),
		Patient:        SamplePatient().Ref(),
		Doctor:         SampleDoctor().Ref(),
	}
}

func NewSamplePrescription() *Prescription {
	return &Prescription{
		DosageAmount:   Ptr(61859),
		DosageInterval: Ptr(82258),
		CreatedDate:    sampleTime("2023-03-06T09:23"),
		UpdatedDate:    sampleTime("2023-03-06T10:57"),
	}
}
