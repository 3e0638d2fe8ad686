package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultSize = 20
	MaxSize     = 100

	// MaxPage keeps Page*MaxSize within an int. Larger pages are clamped,
	// which still lands past the last row.
	MaxPage = math.MaxInt / MaxSize
)

// ErrInvalidSort is wrapped by every sort parsing and ordering error.
var ErrInvalidSort = errors.New("invalid sort")

// Order is one sort criterion, e.g. "lastName,desc".
type Order struct {
	Property string
	Desc     bool
}

func (o Order) String() string {
	if o.Desc {
		return o.Property + ",desc"
	}
	return o.Property + ",asc"
}

// ParseOrder parses "property[,asc|desc]".
func ParseOrder(s string) (Order, error) {
	parts := strings.Split(s, ",")
	o := Order{Property: strings.TrimSpace(parts[0])}
	if o.Property == "" {
		return Order{}, fmt.Errorf("%w: empty sort property", ErrInvalidSort)
	}
	if len(parts) > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc", "":
		case "desc":
			o.Desc = true
		default:
			return Order{}, fmt.Errorf("%w: invalid sort direction %q", ErrInvalidSort, parts[1])
		}
	}
	return o, nil
}

// Params holds page request parameters. Page is zero-based.
type Params struct {
	Page int
	Size int
	Sort []Order
}

// Default returns the first page with the default size and no sort.
func Default() Params {
	return Params{Page: 0, Size: DefaultSize}
}

// FromContext extracts page, size and sort from the query string. Invalid
// numbers fall back to defaults; malformed sort criteria are an error.
func FromContext(c echo.Context) (Params, error) {
	return FromValues(c.QueryParams())
}

// FromValues is FromContext for a plain url.Values.
func FromValues(q url.Values) (Params, error) {
	p := Default()

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		p.Page = min(page, MaxPage)
	}
	if size, err := strconv.Atoi(q.Get("size")); err == nil && size > 0 {
		p.Size = size
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}

	for _, s := range q["sort"] {
		o, err := ParseOrder(s)
		if err != nil {
			return Params{}, err
		}
		p.Sort = append(p.Sort, o)
	}
	return p, nil
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Limit returns the maximum number of rows on the page.
func (p Params) Limit() int {
	return p.Size
}

// Values encodes p back into query parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("size", strconv.Itoa(p.Size))
	for _, o := range p.Sort {
		v.Add("sort", o.String())
	}
	return v
}

// OrderBy renders an ORDER BY clause. columns maps sortable properties to
// SQL column expressions; unknown properties are rejected. The id column is
// always appended as a tiebreaker so paging is stable.
func (p Params) OrderBy(columns map[string]string, idColumn string) (string, error) {
	clauses := make([]string, 0, len(p.Sort)+1)
	hasID := false
	for _, o := range p.Sort {
		col, ok := columns[o.Property]
		if !ok {
			return "", fmt.Errorf("%w: unknown sort property %q", ErrInvalidSort, o.Property)
		}
		if col == idColumn {
			hasID = true
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, col+" "+dir)
	}
	if !hasID {
		clauses = append(clauses, idColumn+" ASC")
	}
	return "ORDER BY " + strings.Join(clauses, ", "), nil
}

// TotalPages returns the number of pages needed for total rows.
func (p Params) TotalPages(total int) int {
	if p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Page+1 < p.TotalPages(total)
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Page > 0
}

const TotalCountHeader = "X-Total-Count"

// SetHeaders writes X-Total-Count and an RFC 5988 Link header with next,
// prev, last and first relations for the collection at base.
func (p Params) SetHeaders(h http.Header, base *url.URL, total int) {
	h.Set(TotalCountHeader, strconv.Itoa(total))

	var links []string
	link := func(page int, rel string) {
		u := *base
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		q.Set("size", strconv.Itoa(p.Size))
		u.RawQuery = q.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="%s"`, u.String(), rel))
	}

	last := p.TotalPages(total) - 1
	if last < 0 {
		last = 0
	}
	if p.HasNext(total) {
		link(p.Page+1, "next")
	}
	if p.HasPrevious() {
		link(p.Page-1, "prev")
	}
	link(last, "last")
	link(0, "first")

	h.Set("Link", strings.Join(links, ","))
}
