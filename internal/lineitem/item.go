package lineitem

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Field is a numeric form value kept as text until normalization.
// It unmarshals from JSON strings, numbers and null.
type Field string

// UnmarshalJSON accepts "12.5", 12.5 and null.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = Field(n.String())
	return nil
}

// Raw is a line item as submitted by the caller.
type Raw struct {
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Quantity    Field  `json:"qty"`
	UnitPrice   Field  `json:"price"`
	Discount    Field  `json:"discount,omitempty"`
	Description string `json:"desc,omitempty"`
	ImageRef    string `json:"image,omitempty"`
}

// Item is a validated line item with its resolved total.
type Item struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Code        string  `json:"code,omitempty"`
	Quantity    float64 `json:"qty"`
	UnitPrice   float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Description string  `json:"desc,omitempty"`
	ImageRef    string  `json:"image,omitempty"`
	LineTotal   float64 `json:"total"`
}

// HasDescription reports whether the item carries description text.
func (it Item) HasDescription() bool {
	return it.Description != ""
}

// DescriptionLines splits the description on line feeds, trimming trailing
// blanks from each line. Blank lines are kept.
func (it Item) DescriptionLines() []string {
	if it.Description == "" {
		return nil
	}
	lines := strings.Split(it.Description, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// parseNumber parses form text, accepting a single decimal comma.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
