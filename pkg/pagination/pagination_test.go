package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(newContext("/api/v1/notifications"))
	if p.Limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", p.Limit, DefaultLimit)
	}
	if p.Offset != 0 {
		t.Errorf("offset = %d, want 0", p.Offset)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := FromContext(newContext("/api/v1/notifications?limit=5&offset=10"))
	if p.Limit != 5 {
		t.Errorf("limit = %d, want 5", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("offset = %d, want 10", p.Offset)
	}
}

func TestFromContext_CapsLimit(t *testing.T) {
	p := FromContext(newContext("/api/v1/notifications?limit=5000"))
	if p.Limit != MaxLimit {
		t.Errorf("limit = %d, want %d", p.Limit, MaxLimit)
	}
}

func TestFromContext_NegativeValues(t *testing.T) {
	p := FromContext(newContext("/api/v1/notifications?limit=-1&offset=-5"))
	if p.Limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", p.Limit, DefaultLimit)
	}
	if p.Offset != 0 {
		t.Errorf("offset = %d, want 0", p.Offset)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected HasMore with 50 total and first page of 20")
	}

	r = NewResponse(nil, 50, 20, 40)
	if r.HasMore {
		t.Error("did not expect HasMore on the last page")
	}
}

func TestParams_NextOffset(t *testing.T) {
	p := Params{Limit: 20, Offset: 40}
	if got := p.NextOffset(); got != 60 {
		t.Errorf("NextOffset() = %d, want 60", got)
	}
	if !p.HasNext(100) {
		t.Error("expected HasNext with total 100")
	}
	if p.HasNext(60) {
		t.Error("did not expect HasNext with total 60")
	}
}
