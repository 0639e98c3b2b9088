package lineitem

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func validRaw(name string) Raw {
	return Raw{Name: name, Quantity: "2", UnitPrice: "10"}
}

func TestNormalize_Enriches(t *testing.T) {
	raws := []Raw{
		{Name: "  Desk ", Quantity: "2", UnitPrice: "100", Discount: "10", Description: "oak\r\nmatte  "},
		{Name: "Chair", Quantity: "4", UnitPrice: "25.5"},
	}

	items, err := Normalize(raws)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	desk := items[0]
	if desk.Index != 1 || desk.Name != "Desk" {
		t.Errorf("desk = %+v", desk)
	}
	if math.Abs(desk.LineTotal-180) > 1e-9 {
		t.Errorf("desk.LineTotal = %v, want 180", desk.LineTotal)
	}
	if desk.Description != "oak\nmatte  " {
		t.Errorf("desk.Description = %q", desk.Description)
	}
	if got := desk.DescriptionLines(); !reflect.DeepEqual(got, []string{"oak", "matte"}) {
		t.Errorf("DescriptionLines() = %v", got)
	}

	chair := items[1]
	if chair.Index != 2 || chair.LineTotal != 102 {
		t.Errorf("chair = %+v", chair)
	}
	if chair.HasDescription() {
		t.Error("chair should have no description")
	}
}

func TestNormalize_CollectsAllIssues(t *testing.T) {
	raws := []Raw{
		validRaw("a"),
		{Name: "   ", Quantity: "1", UnitPrice: "1"},
		validRaw("c"),
		validRaw("d"),
		{Name: "e", Quantity: "1", UnitPrice: "-3"},
		validRaw("f"),
	}

	items, err := Normalize(raws)
	if items != nil {
		t.Errorf("expected no partial output, got %d items", len(items))
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if got := verr.Indexes(); !reflect.DeepEqual(got, []int{2, 5}) {
		t.Errorf("Indexes() = %v, want [2 5]", got)
	}
	if !reflect.DeepEqual(verr.Issues[0].Fields, []string{"name"}) {
		t.Errorf("issue 2 fields = %v", verr.Issues[0].Fields)
	}
	if !reflect.DeepEqual(verr.Issues[1].Fields, []string{"unitPrice"}) {
		t.Errorf("issue 5 fields = %v", verr.Issues[1].Fields)
	}
}

func TestNormalize_NegativeQuantity(t *testing.T) {
	_, err := Normalize([]Raw{validRaw("a"), {Name: "b", Quantity: "-1", UnitPrice: "5"}})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Issues) != 1 || verr.Issues[0].Index != 2 {
		t.Fatalf("issues = %+v", verr.Issues)
	}
	if !strings.Contains(verr.Issues[0].Message, "quantity") {
		t.Errorf("message %q does not mention quantity", verr.Issues[0].Message)
	}
	if !strings.Contains(err.Error(), "item 2") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNormalize_OneIssuePerItem(t *testing.T) {
	_, err := Normalize([]Raw{{Name: "", Quantity: "x", UnitPrice: ""}})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v", err)
	}
	if len(verr.Issues) != 1 {
		t.Fatalf("len(Issues) = %d, want 1", len(verr.Issues))
	}
	want := []string{"name", "quantity", "unitPrice"}
	if !reflect.DeepEqual(verr.Issues[0].Fields, want) {
		t.Errorf("Fields = %v, want %v", verr.Issues[0].Fields, want)
	}
}

func TestNormalize_NumericPolicy(t *testing.T) {
	tests := []struct {
		name     string
		raw      Raw
		wantErr  bool
		discount float64
		total    float64
	}{
		{"zero quantity allowed", Raw{Name: "a", Quantity: "0", UnitPrice: "5"}, false, 0, 0},
		{"decimal comma", Raw{Name: "a", Quantity: "2", UnitPrice: "12,50"}, false, 0, 25},
		{"missing discount", Raw{Name: "a", Quantity: "1", UnitPrice: "10"}, false, 0, 10},
		{"garbage discount", Raw{Name: "a", Quantity: "1", UnitPrice: "10", Discount: "abc"}, false, 0, 10},
		{"discount over 100", Raw{Name: "a", Quantity: "1", UnitPrice: "10", Discount: "150"}, false, 0, 10},
		{"negative discount", Raw{Name: "a", Quantity: "1", UnitPrice: "10", Discount: "-5"}, false, 0, 10},
		{"full discount", Raw{Name: "a", Quantity: "1", UnitPrice: "10", Discount: "100"}, false, 100, 0},
		{"missing quantity", Raw{Name: "a", UnitPrice: "10"}, true, 0, 0},
		{"garbage price", Raw{Name: "a", Quantity: "1", UnitPrice: "ten"}, true, 0, 0},
		{"nan price", Raw{Name: "a", Quantity: "1", UnitPrice: "NaN"}, true, 0, 0},
		{"infinite quantity", Raw{Name: "a", Quantity: "Inf", UnitPrice: "1"}, true, 0, 0},
		{"overflowing product", Raw{Name: "a", Quantity: "1e200", UnitPrice: "1e200"}, true, 0, 0},
		{"line total over bound", Raw{Name: "a", Quantity: "1e8", UnitPrice: "1e8"}, true, 0, 0},
		{"discount brings total into range", Raw{Name: "a", Quantity: "2e15", UnitPrice: "1", Discount: "50"}, false, 50, 1e15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Normalize([]Raw{tt.raw})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", items)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if items[0].Discount != tt.discount {
				t.Errorf("Discount = %v, want %v", items[0].Discount, tt.discount)
			}
			if math.Abs(items[0].LineTotal-tt.total) > 1e-9 {
				t.Errorf("LineTotal = %v, want %v", items[0].LineTotal, tt.total)
			}
		})
	}
}

func TestNormalize_DescriptionKeepsEveryLine(t *testing.T) {
	tests := []struct {
		desc  string
		lines int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 2},
		{"\n\na", 3},
		{"   ", 1},
		{"a\r\nb\rc", 3},
	}
	for _, tt := range tests {
		items, err := Normalize([]Raw{{Name: "x", Quantity: "1", UnitPrice: "1", Description: tt.desc}})
		if err != nil {
			t.Fatalf("Normalize(%q) error = %v", tt.desc, err)
		}
		if got := len(items[0].DescriptionLines()); got != tt.lines {
			t.Errorf("description %q: %d lines, want %d", tt.desc, got, tt.lines)
		}
	}
}

func TestNormalize_OutOfRangeTotalNamesBothFields(t *testing.T) {
	_, err := Normalize([]Raw{
		{Name: "ok", Quantity: "1", UnitPrice: "1"},
		{Name: "huge", Quantity: "1e200", UnitPrice: "1e200"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Issues) != 1 || verr.Issues[0].Index != 2 {
		t.Fatalf("issues = %+v", verr.Issues)
	}
	if !reflect.DeepEqual(verr.Issues[0].Fields, []string{"quantity", "unitPrice"}) {
		t.Errorf("fields = %v", verr.Issues[0].Fields)
	}
}

func TestField_UnmarshalJSON(t *testing.T) {
	var raw Raw
	data := `{"name":"x","qty":3,"price":"4.5","discount":null}`
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if raw.Quantity != "3" || raw.UnitPrice != "4.5" || raw.Discount != "" {
		t.Errorf("raw = %+v", raw)
	}
}
