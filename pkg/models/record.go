package models

import "time"

// The methods below let generic storage code assign server-owned fields
// without knowing the concrete type.

func (d *Doctor) SetID(id int64)       { d.ID = &id }
func (d *Drug) SetID(id int64)         { d.ID = &id }
func (p *Patient) SetID(id int64)      { p.ID = &id }
func (p *Prescription) SetID(id int64) { p.ID = &id }

func (d *Doctor) Created() *time.Time       { return d.CreatedDate }
func (d *Drug) Created() *time.Time         { return d.CreatedDate }
func (p *Patient) Created() *time.Time      { return p.CreatedDate }
func (p *Prescription) Created() *time.Time { return p.CreatedDate }

func (d *Doctor) Stamp(created, updated time.Time) {
	d.CreatedDate, d.UpdatedDate = &created, &updated
}

func (d *Drug) Stamp(created, updated time.Time) {
	d.CreatedDate, d.UpdatedDate = &created, &updated
}

func (p *Patient) Stamp(created, updated time.Time) {
	p.CreatedDate, p.UpdatedDate = &created, &updated
}

func (p *Prescription) Stamp(created, updated time.Time) {
	p.CreatedDate, p.UpdatedDate = &created, &updated
}
