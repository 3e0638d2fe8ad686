// Package form turns records into editable raw values and back. Every form
// starts from defaults (no id, both timestamps set to now) with the record's
// own fields laid over them.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pharmascript/pharmascript/pkg/models"
)

// Layouts of the raw date values.
const (
	DateTimeFormat = models.DateTimeFormat
	DateFormat     = models.DateFormat
)

var (
	ErrReadOnly       = errors.New("control is read-only")
	ErrUnknownControl = errors.New("unknown control")
)

// InvalidError lists the required controls left empty.
type InvalidError struct {
	Controls []string
}

func (e *InvalidError) Error() string {
	return "required: " + strings.Join(e.Controls, ", ")
}

// Control binds one named raw value to a field of T. Field returns a pointer
// to the record field: **string, **int, **int64, **models.Date or
// **time.Time.
type Control[T any] struct {
	Name     string
	Required bool
	ReadOnly bool
	Field    func(v *T) any
}

type options struct {
	now func() time.Time
	loc *time.Location
}

type Option func(*options)

// WithClock sets the source of the default timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone raw date-times are rendered and parsed in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// Form holds the raw values of one record.
type Form[T any] struct {
	controls []Control[T]
	values   map[string]string
	opts     options
}

// New builds a form over controls populated from v. v may be nil for a new
// record.
func New[T any](controls []Control[T], v *T, opts ...Option) *Form[T] {
	f := &Form[T]{
		controls: controls,
		values:   make(map[string]string, len(controls)),
		opts:     options{now: time.Now, loc: time.Local},
	}
	for _, opt := range opts {
		opt(&f.opts)
	}
	f.Reset(v)
	return f
}

// Reset replaces every raw value with the defaults overlaid by v.
func (f *Form[T]) Reset(v *T) {
	rec := f.withDefaults(v)
	for _, c := range f.controls {
		f.values[c.Name] = f.format(c.Field(rec))
	}
}

func (f *Form[T]) withDefaults(v *T) *T {
	rec := new(T)
	if v != nil {
		*rec = *v
	}
	now := f.opts.now()
	for _, c := range f.controls {
		if p, ok := c.Field(rec).(**time.Time); ok && *p == nil {
			t := now
			*p = &t
		}
	}
	return rec
}

func (f *Form[T]) control(name string) (Control[T], bool) {
	for _, c := range f.controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control[T]{}, false
}

// Get returns the raw value of a control, or "" when it does not exist.
func (f *Form[T]) Get(name string) string {
	return f.values[name]
}

// Set edits a raw value. The value is checked only when Value is called.
func (f *Form[T]) Set(name, raw string) error {
	c, ok := f.control(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}
	if c.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	f.values[name] = raw
	return nil
}

// Names lists the controls in display order.
func (f *Form[T]) Names() []string {
	names := make([]string, len(f.controls))
	for i, c := range f.controls {
		names[i] = c.Name
	}
	return names
}

// Control reports whether name is read-only and required.
func (f *Form[T]) Control(name string) (readOnly, required, ok bool) {
	c, ok := f.control(name)
	return c.ReadOnly, c.Required, ok
}

// Missing lists the editable required controls that are empty. Read-only
// controls are not validated.
func (f *Form[T]) Missing() []string {
	var out []string
	for _, c := range f.controls {
		if c.Required && !c.ReadOnly && strings.TrimSpace(f.values[c.Name]) == "" {
			out = append(out, c.Name)
		}
	}
	return out
}

func (f *Form[T]) Valid() bool {
	return len(f.Missing()) == 0
}

// Value parses the raw values into a new record. It fails with an
// *InvalidError when a required control is empty.
func (f *Form[T]) Value() (*T, error) {
	if missing := f.Missing(); len(missing) > 0 {
		return nil, &InvalidError{Controls: missing}
	}
	rec := new(T)
	for _, c := range f.controls {
		if err := f.parse(c.Field(rec), f.values[c.Name]); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return rec, nil
}

func (f *Form[T]) format(field any) string {
	switch p := field.(type) {
	case **string:
		if *p != nil {
			return **p
		}
	case **int:
		if *p != nil {
			return strconv.Itoa(**p)
		}
	case **int64:
		if *p != nil {
			return strconv.FormatInt(**p, 10)
		}
	case **models.Date:
		if *p != nil {
			return (*p).Format(DateFormat)
		}
	case **time.Time:
		if *p != nil {
			return (*p).In(f.opts.loc).Format(DateTimeFormat)
		}
	default:
		panic(fmt.Sprintf("form: unsupported field type %T", field))
	}
	return ""
}

func (f *Form[T]) parse(field any, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch p := field.(type) {
	case **string:
		*p = &raw
	case **int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("not a whole number: %q", raw)
		}
		*p = &n
	case **int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("not a whole number: %q", raw)
		}
		*p = &n
	case **models.Date:
		d, err := models.ParseDate(raw)
		if err != nil {
			return err
		}
		*p = &d
	case **time.Time:
		t, err := time.ParseInLocation(DateTimeFormat, raw, f.opts.loc)
		if err != nil {
			return fmt.Errorf("expected %s: %q", DateTimeFormat, raw)
		}
		*p = &t
	default:
		panic(fmt.Sprintf("form: unsupported field type %T", field))
	}
	return nil
}
