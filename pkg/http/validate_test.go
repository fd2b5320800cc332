package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type sampleRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=5"`
	Days   int    `query:"days" json:"days" default:"30" validate:"lte=100"`
}

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	c, _ := newContext("/x?symbol=AAPL")
	req := &sampleRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		t.Fatalf("unexpected validation error %v", verr)
	}
	if req.Symbol != "AAPL" || req.Days != 30 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestReadAndValidateRequestErrors(t *testing.T) {
	c, _ := newContext("/x?days=500")
	verr := ReadAndValidateRequest(c, &sampleRequest{})
	errs, ok := verr.([]ValidationError)
	if !ok || len(errs) != 2 {
		t.Fatalf("expected two validation errors, got %#v", verr)
	}
	if errs[0].Field != "symbol" || errs[0].Code != "ERR_REQUIRED" {
		t.Fatalf("unexpected first error %+v", errs[0])
	}
	if errs[1].Field != "days" || errs[1].Params["max"] != "100" {
		t.Fatalf("unexpected second error %+v", errs[1])
	}
}

func TestAppErrorResponse(t *testing.T) {
	c, rec := newContext("/x")
	err := NotFoundErrorf("instrument %q not found", "ZZZ").WithError(errors.New("inner"))
	if werr := AppErrorResponse(c, err); werr != nil {
		t.Fatalf("write: %v", werr)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != 404 || len(body.Data) != 1 || body.Data[0].Code != CodeNotFound {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	c, rec = newContext("/x")
	_ = AppErrorResponse(c, errors.New("plain"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain errors, got %d", rec.Code)
	}
}

func TestParseSeedParam(t *testing.T) {
	if s, err := ParseSeedParam(""); s != nil || err != nil {
		t.Fatalf("empty seed means none")
	}
	if s, err := ParseSeedParam("42"); err != nil || *s != 42 {
		t.Fatalf("unexpected %v %v", s, err)
	}
	if _, err := ParseSeedParam("x"); err == nil {
		t.Fatalf("expected error")
	}
}
