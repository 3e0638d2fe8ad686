package route

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/pkg/client"
	"github.com/pharmascript/pharmascript/pkg/models"
)

func TestMatch(t *testing.T) {
	routes := Table()
	tests := []struct {
		path   string
		screen Screen
		params Params
	}{
		{"", ScreenList, Params{}},
		{"/", ScreenList, Params{}},
		{"12/view", ScreenDetail, Params{"id": "12"}},
		{"new", ScreenUpdate, Params{}},
		{"/12/edit/", ScreenUpdate, Params{"id": "12"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, params, ok := Match(routes, tt.path)
			if !ok {
				t.Fatal("expected a match")
			}
			if r.Screen != tt.screen {
				t.Errorf("expected %s, got %s", tt.screen, r.Screen)
			}
			if !reflect.DeepEqual(params, tt.params) {
				t.Errorf("expected params %v, got %v", tt.params, params)
			}
		})
	}

	if _, _, ok := Match(routes, "12/delete"); ok {
		t.Error("expected no match for unknown path")
	}
}

func TestTable_ListDefaultSort(t *testing.T) {
	r, _, _ := Match(Table(), "")
	if r.DefaultSort != "id,asc" || r.Resolve {
		t.Errorf("unexpected list route %+v", r)
	}
}

type findFunc func(ctx context.Context, id int64) (*models.Drug, error)

func (f findFunc) Find(ctx context.Context, id int64) (*models.Drug, error) { return f(ctx, id) }

type recorder struct{ paths [][]string }

func (r *recorder) Navigate(path ...string) { r.paths = append(r.paths, path) }

func TestResolve_Found(t *testing.T) {
	var gotID int64
	finder := findFunc(func(_ context.Context, id int64) (*models.Drug, error) {
		gotID = id
		return &models.Drug{ID: &id}, nil
	})
	nav := &recorder{}
	r := NewResolver[models.Drug](finder, nav, zerolog.Nop())

	v, ok, err := r.Resolve(context.Background(), Params{"id": "123"})
	if err != nil || !ok {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
	if gotID != 123 || *v.ID != 123 {
		t.Errorf("unexpected lookup id=%d record=%+v", gotID, v)
	}
	if len(nav.paths) != 0 {
		t.Errorf("expected no navigation, got %v", nav.paths)
	}
}

func TestResolve_NoID(t *testing.T) {
	called := false
	finder := findFunc(func(context.Context, int64) (*models.Drug, error) {
		called = true
		return nil, nil
	})
	r := NewResolver[models.Drug](finder, &recorder{}, zerolog.Nop())

	v, ok, err := r.Resolve(context.Background(), Params{})
	if v != nil || !ok || err != nil {
		t.Errorf("expected nil record, got %+v ok=%v err=%v", v, ok, err)
	}
	if called {
		t.Error("expected no lookup without an id")
	}
}

func TestResolve_NotFound(t *testing.T) {
	cases := map[string]findFunc{
		"empty body": func(context.Context, int64) (*models.Drug, error) { return nil, nil },
		"404": func(context.Context, int64) (*models.Drug, error) {
			return nil, &client.Error{StatusCode: http.StatusNotFound}
		},
	}
	for name, finder := range cases {
		t.Run(name, func(t *testing.T) {
			nav := &recorder{}
			r := NewResolver[models.Drug](finder, nav, zerolog.Nop())

			v, ok, err := r.Resolve(context.Background(), Params{"id": "123"})
			if v != nil || ok || err != nil {
				t.Errorf("expected a miss, got %+v ok=%v err=%v", v, ok, err)
			}
			if !reflect.DeepEqual(nav.paths, [][]string{{NotFound}}) {
				t.Errorf("expected navigation to 404, got %v", nav.paths)
			}
		})
	}
}

func TestResolve_BadID(t *testing.T) {
	nav := &recorder{}
	r := NewResolver[models.Drug](findFunc(func(context.Context, int64) (*models.Drug, error) {
		t.Fatal("unexpected lookup")
		return nil, nil
	}), nav, zerolog.Nop())

	if _, ok, _ := r.Resolve(context.Background(), Params{"id": "abc"}); ok {
		t.Error("expected a miss")
	}
	if len(nav.paths) != 1 {
		t.Errorf("expected navigation to 404, got %v", nav.paths)
	}
}

func TestResolve_TransportError(t *testing.T) {
	boom := errors.New("connection refused")
	nav := &recorder{}
	r := NewResolver[models.Drug](findFunc(func(context.Context, int64) (*models.Drug, error) {
		return nil, boom
	}), nav, zerolog.Nop())

	_, ok, err := r.Resolve(context.Background(), Params{"id": "1"})
	if ok || !errors.Is(err, boom) {
		t.Errorf("expected transport error, got ok=%v err=%v", ok, err)
	}
	if len(nav.paths) != 0 {
		t.Errorf("expected no navigation, got %v", nav.paths)
	}
}
