package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/output"
	"github.com/gompdf/offerpdf/internal/store"
	"github.com/gompdf/offerpdf/pkg/api"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := api.DefaultOptions()
	opts.Logger = logger

	dir := t.TempDir()
	return New(api.NewWithOptions(opts), store.NewMemory(), output.NewDir(dir, false), logger), dir
}

func offerJSON(t *testing.T, number string, n int) []byte {
	t.Helper()
	items := make([]lineitem.Raw, n)
	for i := range items {
		items[i] = lineitem.Raw{Name: "Chair", Quantity: "2", UnitPrice: "100"}
	}
	data, err := json.Marshal(document.Request{
		Number: number,
		Seller: document.Party{Name: "Seller"},
		Buyer:  document.Party{Name: "Buyer"},
		Items:  items,
	})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func do(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(s, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPlan(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/plan", offerJSON(t, "1/2026", 8))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var plan document.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if len(plan.Pages) != 2 {
		t.Errorf("pages = %d, want 2", len(plan.Pages))
	}
}

func TestPlan_ValidationIs422(t *testing.T) {
	s, _ := newTestServer(t)
	body := []byte(`{"products":[{"name":"A","qty":"1","price":"1"},{"name":"","qty":"x","price":"1"}]}`)
	rec := do(s, http.MethodPost, "/api/plan", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Kind != "validation" || len(resp.Issues) != 1 || resp.Issues[0].Index != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestPlan_EmptyAndMalformed(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(s, http.MethodPost, "/api/plan", []byte(`{"products":[]}`)); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty: status = %d", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/api/plan", []byte(`{"products":`)); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed: status = %d", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/api/plan", []byte(`{"orientation":"sideways","products":[{"name":"A","qty":"1","price":"1"}]}`)); rec.Code != http.StatusBadRequest {
		t.Errorf("layout: status = %d", rec.Code)
	}
}

func TestPDF(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/pdf", offerJSON(t, "OF/1", 2))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Offer_OF-1.pdf"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestPreview(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/preview", offerJSON(t, "OF/2", 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "PRICE OFFER No. OF/2") {
		t.Error("preview lacks heading")
	}
}

func TestOffers_Lifecycle(t *testing.T) {
	s, dir := newTestServer(t)

	rec := do(s, http.MethodPut, "/api/offers/acme-1?profile=sales", offerJSON(t, "OF/9", 3))
	if rec.Code != http.StatusOK {
		t.Fatalf("put: status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = do(s, http.MethodGet, "/api/offers?profile=sales", nil)
	var list []store.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "acme-1" || list[0].Products != 3 {
		t.Errorf("list = %+v", list)
	}

	rec = do(s, http.MethodGet, "/api/offers/acme-1", nil)
	var got store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Request.Number != "OF/9" {
		t.Errorf("number = %q", got.Request.Number)
	}

	rec = do(s, http.MethodPost, "/api/offers/acme-1/pdf", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("render: status = %d, body = %s", rec.Code, rec.Body)
	}
	var res renderResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.File != "Offer_OF-9.pdf" {
		t.Errorf("file = %q", res.File)
	}
	if _, err := os.Stat(filepath.Join(dir, res.File)); err != nil {
		t.Errorf("rendered file missing: %v", err)
	}

	// a second render must not overwrite
	if rec := do(s, http.MethodPost, "/api/offers/acme-1/pdf", nil); rec.Code != http.StatusConflict {
		t.Errorf("re-render: status = %d", rec.Code)
	}

	if rec := do(s, http.MethodDelete, "/api/offers/acme-1", nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rec.Code)
	}
	if rec := do(s, http.MethodGet, "/api/offers/acme-1", nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d", rec.Code)
	}
}

func TestCreateOffer_GeneratesID(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodPost, "/api/offers", offerJSON(t, "OF/10/2026", 1))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var got store.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "OF-10-2026" {
		t.Errorf("ID = %q", got.ID)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	if rec := do(s, http.MethodGet, "/api/pdf", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestEstimate(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/estimate?count=7&orientation=landscape", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"totalPages":2`) {
		t.Errorf("body = %s", rec.Body)
	}
	if rec := do(s, http.MethodGet, "/api/estimate?count=x", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"net": math.Inf(1)})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to encode response") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestPlan_OverflowingAmountIs422(t *testing.T) {
	s, _ := newTestServer(t)
	body := []byte(`{"products":[{"name":"A","qty":"1e200","price":"1e200"}]}`)
	if rec := do(s, http.MethodPost, "/api/plan", body); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body)
	}
}
