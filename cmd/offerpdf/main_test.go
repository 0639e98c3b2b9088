package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{
  "number": "OF/3/2026",
  "seller": {"name": "Seller"},
  "buyer": {"name": "Buyer"},
  "products": [
    {"name": "Desk", "qty": 2, "price": "100"},
    {"name": "Chair", "qty": "4", "price": 50, "discount": 10}
  ]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offer.json")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlanCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	if err := app.Run([]string{"offerpdf", "plan", "-i", writeSample(t)}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var s planSummary
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out.String())
	}
	// 200 + 180 net, 23% VAT
	if s.Net != "380.00" || s.VAT != "87.40" || s.Gross != "467.40" {
		t.Errorf("totals = %s/%s/%s", s.Net, s.VAT, s.Gross)
	}
	if len(s.Pages) != 1 || len(s.Pages[0].Items) != 2 {
		t.Errorf("pages = %+v", s.Pages)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t)

	pdfPath := filepath.Join(dir, "offer.pdf")
	if err := newApp().Run([]string{"offerpdf", "render", "-i", in, "-o", pdfPath}); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("pdf output invalid: %v", err)
	}

	htmlPath := filepath.Join(dir, "preview", "offer.html")
	if err := newApp().Run([]string{"offerpdf", "render", "-i", in, "-o", htmlPath, "--html", "--template", "quote"}); err != nil {
		t.Fatalf("render html: %v", err)
	}
	page, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "QUOTE No. OF/3/2026") {
		t.Error("preview lacks the quote heading")
	}
}

func TestPlanCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"products":[{"name":"","qty":"1","price":"1"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	app := newApp()
	app.Writer = &bytes.Buffer{}
	if err := app.Run([]string{"offerpdf", "plan", "-i", path}); err == nil {
		t.Error("expected validation error")
	}
}
