package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pharmascript/pharmascript/pkg/entity"
	"github.com/pharmascript/pharmascript/pkg/models"
	"github.com/pharmascript/pharmascript/pkg/pagination"
)

// Model is a pointer to a record type the API serves.
type Model[T any] interface {
	*T
	entity.Identifiable
	ToWire() *T
}

// Page is one page of a collection query.
type Page[P any] struct {
	Items []P
	// Total is the X-Total-Count of the collection, or len(Items) when the
	// server did not send it.
	Total int64
}

// Resource is the client for one collection, e.g. "api/doctors".
type Resource[T any, P Model[T]] struct {
	c    *Client
	path string
}

func NewResource[T any, P Model[T]](c *Client, path string) *Resource[T, P] {
	return &Resource[T, P]{c: c, path: path}
}

func Doctors(c *Client) *Resource[models.Doctor, *models.Doctor] {
	return NewResource[models.Doctor](c, models.DoctorsPath)
}

func Drugs(c *Client) *Resource[models.Drug, *models.Drug] {
	return NewResource[models.Drug](c, models.DrugsPath)
}

func Patients(c *Client) *Resource[models.Patient, *models.Patient] {
	return NewResource[models.Patient](c, models.PatientsPath)
}

func Prescriptions(c *Client) *Resource[models.Prescription, *models.Prescription] {
	return NewResource[models.Prescription](c, models.PrescriptionsPath)
}

// Path returns the collection path the resource is bound to.
func (r *Resource[T, P]) Path() string { return r.path }

func (r *Resource[T, P]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// send writes v in its wire form and decodes the echoed record.
func (r *Resource[T, P]) send(ctx context.Context, method, path, contentType string, v P) (P, error) {
	out := P(new(T))
	_, ok, err := r.c.do(ctx, method, path, nil, contentType, v.ToWire(), out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return out, nil
}

// Create POSTs a new record and returns it as stored by the server.
func (r *Resource[T, P]) Create(ctx context.Context, v P) (P, error) {
	return r.send(ctx, http.MethodPost, r.path, "application/json", v)
}

// Update PUTs v over the record with the same id.
func (r *Resource[T, P]) Update(ctx context.Context, v P) (P, error) {
	id, ok := v.Identifier()
	if !ok {
		return nil, ErrMissingID
	}
	return r.send(ctx, http.MethodPut, r.item(id), "application/json", v)
}

// PartialUpdate PATCHes the fields set on v as a JSON merge patch.
func (r *Resource[T, P]) PartialUpdate(ctx context.Context, v P) (P, error) {
	id, ok := v.Identifier()
	if !ok {
		return nil, ErrMissingID
	}
	return r.send(ctx, http.MethodPatch, r.item(id), MergePatchJSON, v)
}

// Find fetches one record. A 404 is an *Error matching ErrNotFound; a
// successful response without a body yields a nil record and no error.
func (r *Resource[T, P]) Find(ctx context.Context, id int64) (P, error) {
	out := P(new(T))
	_, ok, err := r.c.do(ctx, http.MethodGet, r.item(id), nil, "", nil, out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return out, nil
}

// Query fetches one page of the collection.
func (r *Resource[T, P]) Query(ctx context.Context, params pagination.Params) (Page[P], error) {
	var items []P
	hdr, _, err := r.c.do(ctx, http.MethodGet, r.path, params.Values(), "", nil, &items)
	if err != nil {
		return Page[P]{}, err
	}
	if items == nil {
		items = []P{}
	}
	total := int64(len(items))
	if n, err := strconv.ParseInt(hdr.Get(pagination.TotalCountHeader), 10, 64); err == nil {
		total = n
	}
	return Page[P]{Items: items, Total: total}, nil
}

// Delete removes the record with id.
func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	_, _, err := r.c.do(ctx, http.MethodDelete, r.item(id), nil, "", nil, nil)
	return err
}
