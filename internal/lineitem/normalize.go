package lineitem

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Issue describes every violation found on one submitted item.
type Issue struct {
	Index   int      `json:"index"`
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// ValidationError lists the offending items in submission order.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("item %d: %s", is.Index, is.Message))
	}
	return fmt.Sprintf("invalid line items: %s", strings.Join(parts, ", "))
}

// Indexes returns the 1-based positions of the offending items.
func (e *ValidationError) Indexes() []int {
	out := make([]int, len(e.Issues))
	for i, is := range e.Issues {
		out[i] = is.Index
	}
	return out
}

// MaxLineTotal bounds a single item's net total. Any number of bounded
// lines sums to a finite amount.
const MaxLineTotal = 1e15

// Normalize validates raw items and resolves their totals.
//
// All items are checked before failing. Name, quantity and unit price are
// required; quantity and unit price must be finite and non-negative, and
// their product must not exceed MaxLineTotal. An unusable discount is not an
// error and becomes 0.
func Normalize(raws []Raw) ([]Item, error) {
	var issues []Issue
	items := make([]Item, 0, len(raws))

	for i, raw := range raws {
		index := i + 1
		var fields, problems []string

		name := norm.NFC.String(strings.TrimSpace(raw.Name))
		if name == "" {
			fields = append(fields, "name")
			problems = append(problems, "name is required")
		}

		qty, ok := parseAmount(raw.Quantity)
		if !ok {
			fields = append(fields, "quantity")
			problems = append(problems, fmt.Sprintf("invalid quantity %q", string(raw.Quantity)))
		}

		price, ok := parseAmount(raw.UnitPrice)
		if !ok {
			fields = append(fields, "unitPrice")
			problems = append(problems, fmt.Sprintf("invalid unit price %q", string(raw.UnitPrice)))
		}

		discount := parseDiscount(raw.Discount)
		total := qty * price * (1 - discount/100)
		if len(problems) == 0 && (math.IsInf(total, 0) || math.IsNaN(total) || total > MaxLineTotal) {
			fields = append(fields, "quantity", "unitPrice")
			problems = append(problems, fmt.Sprintf("line total of %s x %s is out of range", string(raw.Quantity), string(raw.UnitPrice)))
		}

		if len(problems) > 0 {
			issues = append(issues, Issue{
				Index:   index,
				Fields:  fields,
				Message: strings.Join(problems, "; "),
			})
			continue
		}

		items = append(items, Item{
			Index:       index,
			Name:        name,
			Code:        norm.NFC.String(strings.TrimSpace(raw.Code)),
			Quantity:    qty,
			UnitPrice:   price,
			Discount:    discount,
			Description: cleanDescription(raw.Description),
			ImageRef:    strings.TrimSpace(raw.ImageRef),
			LineTotal:   total,
		})
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return items, nil
}

func parseAmount(f Field) (float64, bool) {
	v, ok := parseNumber(string(f))
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func parseDiscount(f Field) float64 {
	v, ok := parseNumber(string(f))
	if !ok || math.IsNaN(v) || v < 0 || v > 100 {
		return 0
	}
	return v
}

// cleanDescription unifies line endings. It does not trim: every line the
// caller sent, blank or not, counts toward the row height.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}
