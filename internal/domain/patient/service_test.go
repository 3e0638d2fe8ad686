package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmascript/pharmascript/internal/platform/crud"
	"github.com/pharmascript/pharmascript/pkg/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.Patient)
		fields []string
	}{
		{"complete", func(p *models.Patient) {}, nil},
		{"missing birthdate", func(p *models.Patient) { p.Birthdate = nil }, []string{"birthdate"}},
		{"blank names", func(p *models.Patient) {
			p.FirstName = models.Ptr("")
			p.LastName = nil
		}, []string{"firstName", "lastName"}},
		{"future birthdate", func(p *models.Patient) {
			d := models.DateOf(time.Now().AddDate(1, 0, 0))
			p.Birthdate = &d
		}, []string{"birthdate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewSamplePatient()
			tt.mutate(p)
			err := Validate(context.Background(), p)
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *crud.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(ve.Fields) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %+v", tt.fields, ve.Fields)
			}
			for i, f := range tt.fields {
				if ve.Fields[i].Field != f {
					t.Errorf("field %d: expected %s, got %s", i, f, ve.Fields[i].Field)
				}
			}
		})
	}
}

func TestMerge_Birthdate(t *testing.T) {
	dst := models.SamplePatient()
	d := models.NewDate(1990, time.July, 4)
	Merge(dst, &models.Patient{Birthdate: &d})

	if dst.Birthdate.String() != "1990-07-04" {
		t.Errorf("expected merged birthdate, got %s", dst.Birthdate)
	}
	if *dst.FirstName != "Briana" {
		t.Errorf("expected first name to be kept, got %s", *dst.FirstName)
	}
}

func TestDateConversion(t *testing.T) {
	if birthdateArg(nil) != nil || dateOf(nil) != nil {
		t.Error("expected nil to stay nil")
	}
	in := time.Date(1985, time.March, 2, 0, 0, 0, 0, time.UTC)
	out := dateOf(&in)
	if out.String() != "1985-03-02" {
		t.Errorf("unexpected date %s", out)
	}
	if !birthdateArg(out).Equal(in) {
		t.Errorf("expected round trip to midnight UTC, got %v", birthdateArg(out))
	}
}
