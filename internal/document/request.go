package document

import (
	"strings"

	"github.com/gompdf/offerpdf/internal/lineitem"
)

// Party describes a seller or buyer
type Party struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName,omitempty"`
	TaxID       string `json:"nip,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Website     string `json:"website,omitempty"`
	Logo        string `json:"logo,omitempty"`
	BankName    string `json:"bankName,omitempty"`
	BankAccount string `json:"bankAccount,omitempty"`
}

// DisplayName returns the full name when set, the short name otherwise
func (p Party) DisplayName() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return p.Name
}

// Terms are the commercial terms printed in the footer
type Terms struct {
	Payment        string `json:"payment,omitempty"`
	Delivery       string `json:"delivery,omitempty"`
	DeliveryMethod string `json:"deliveryMethod,omitempty"`
	Warranty       string `json:"warranty,omitempty"`
}

// Default term texts
const (
	DefaultPaymentTerms   = "as agreed"
	DefaultDeliveryTime   = "up to 14 days"
	DefaultDeliveryMethod = "free of charge"
	DefaultWarranty       = "24 months"
)

// WithDefaults fills empty terms with the default texts
func (t Terms) WithDefaults() Terms {
	t.Payment = orDefault(t.Payment, DefaultPaymentTerms)
	t.Delivery = orDefault(t.Delivery, DefaultDeliveryTime)
	t.DeliveryMethod = orDefault(t.DeliveryMethod, DefaultDeliveryMethod)
	t.Warranty = orDefault(t.Warranty, DefaultWarranty)
	return t
}

// Request is everything needed to plan one document
type Request struct {
	ID          string         `json:"id,omitempty"`
	Items       []lineitem.Raw `json:"products"`
	Orientation string         `json:"orientation,omitempty"`
	Template    TemplateType   `json:"template,omitempty"`
	Seller      Party          `json:"seller"`
	Buyer       Party          `json:"buyer"`
	Number      string         `json:"number,omitempty"`
	Date        string         `json:"date,omitempty"`
	ValidUntil  string         `json:"validUntil,omitempty"`
	Currency    string         `json:"currency,omitempty"`
	Terms       Terms          `json:"terms"`
	Notes       string         `json:"notes,omitempty"`
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
