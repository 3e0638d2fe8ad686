package problem

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	p := New(http.StatusBadRequest, "A new drug cannot already have an ID", "drug", KeyIDExists)

	if p.Type != TypeWithMessage {
		t.Errorf("expected type %s, got %s", TypeWithMessage, p.Type)
	}
	if p.Message != "error.idexists" {
		t.Errorf("expected error.idexists, got %s", p.Message)
	}
	if p.EntityName != "drug" || p.Params != "drug" {
		t.Errorf("unexpected entity fields %+v", p)
	}
	if p.Status != 400 {
		t.Errorf("expected 400, got %d", p.Status)
	}
}

func TestNew_WithoutEntity(t *testing.T) {
	p := New(http.StatusTooManyRequests, "Too Many Requests", "", KeyTooManyRequests)
	if p.Type != DefaultType {
		t.Errorf("expected %s, got %s", DefaultType, p.Type)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "entityName") {
		t.Errorf("expected entityName omitted, got %s", b)
	}
}

func TestProblem_Error(t *testing.T) {
	p := New(http.StatusBadRequest, "Invalid id", "doctor", KeyIDInvalid)
	if got := p.Error(); got != "400 Invalid id (error.idinvalid)" {
		t.Errorf("unexpected error string %q", got)
	}

	p = &Problem{Status: 500, Title: "Internal Server Error"}
	if got := p.Error(); got != "500 Internal Server Error" {
		t.Errorf("unexpected error string %q", got)
	}
}
