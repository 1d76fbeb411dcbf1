package checkout

import (
	"sort"
	"strings"
)

// Field names a form field of the order draft.
type Field string

const (
	FieldName    Field = "name"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
	FieldCity    Field = "city"
	FieldNote    Field = "note"
)

// Draft is the contact and delivery form filled in at checkout.
type Draft struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Note    string `json:"note"`
}

// Set assigns value to field. Unknown fields are ignored.
func (d *Draft) Set(field Field, value string) {
	switch field {
	case FieldName:
		d.Name = value
	case FieldPhone:
		d.Phone = value
	case FieldAddress:
		d.Address = value
	case FieldCity:
		d.City = value
	case FieldNote:
		d.Note = value
	}
}

// FieldErrors marks fields that failed validation.
type FieldErrors map[Field]bool

// Fields lists the failing fields in a stable order.
func (fe FieldErrors) Fields() []Field {
	out := make([]Field, 0, len(fe))
	for f, bad := range fe {
		if bad {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidationError is returned by Submit when the draft is incomplete.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		names = append(names, string(f))
	}
	return "invalid order details: " + strings.Join(names, ", ")
}

// Validate checks required fields and the phone format.
func (d Draft) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(d.Name) == "" {
		errs[FieldName] = true
	}
	if strings.TrimSpace(d.Phone) == "" || !ValidPhone(d.Phone) {
		errs[FieldPhone] = true
	}
	if strings.TrimSpace(d.Address) == "" {
		errs[FieldAddress] = true
	}
	if strings.TrimSpace(d.City) == "" {
		errs[FieldCity] = true
	}
	return errs
}

// ValidPhone accepts numbers with 8 to 12 digits once everything else is
// stripped, which covers local (067 123 456) and international
// (+382 67 123 456) forms.
func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8 && digits <= 12
}
