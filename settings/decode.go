package settings

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// rawInput keeps every field undecoded so type mismatches can be reported
// per field instead of failing the whole document.
type rawInput struct {
	MandayRate     json.RawMessage `json:"mandayRate"`
	Currency       json.RawMessage `json:"currency"`
	VATRate        json.RawMessage `json:"vatRate"`
	Country        json.RawMessage `json:"country"`
	TimeZone       json.RawMessage `json:"timeZone"`
	WorkHoursStart json.RawMessage `json:"workHoursStart"`
	WorkHoursEnd   json.RawMessage `json:"workHoursEnd"`
}

// ParseJSON decodes and validates a settings document in one step.
//
// Values are taken exactly as sent: a number given as a string ("7600") or a
// work hour given as a number (9) is a field error, never converted. Unknown
// fields are ignored. Type errors and rule violations are reported together
// in one *ValidationError.
func ParseJSON(data []byte, supported CountryCheck) (UserSettings, error) {
	var raw rawInput
	if err := json.Unmarshal(data, &raw); err != nil {
		return UserSettings{}, &ValidationError{Fields: []FieldError{
			{Field: "body", Message: "request body must be a JSON object"},
		}}
	}

	var typed validator
	var in Input
	in.MandayRate = number(&typed, "mandayRate", raw.MandayRate)
	in.VATRate = number(&typed, "vatRate", raw.VATRate)
	in.Currency = str(&typed, "currency", raw.Currency)
	in.Country = str(&typed, "country", raw.Country)
	in.TimeZone = str(&typed, "timeZone", raw.TimeZone)
	in.WorkHoursStart = str(&typed, "workHoursStart", raw.WorkHoursStart)
	in.WorkHoursEnd = str(&typed, "workHoursEnd", raw.WorkHoursEnd)

	s, err := in.Parse(supported)
	if len(typed.fields) == 0 {
		return s, err
	}

	// A field with a type error also fails its rules; report it once.
	fields := typed.fields
	var verr *ValidationError
	if errors.As(err, &verr) {
		bad := &ValidationError{Fields: typed.fields}
		for _, f := range verr.Fields {
			if !bad.Has(f.Field) {
				fields = append(fields, f)
			}
		}
	}
	return UserSettings{}, &ValidationError{Fields: fields}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func number(v *validator, field string, raw json.RawMessage) *decimal.Decimal {
	if isNull(raw) {
		return nil
	}
	// JSON numbers start with a digit or minus; anything else is another type.
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		v.add(field, field+" must be a number")
		return nil
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		v.add(field, field+" must be a number")
		return nil
	}
	return &d
}

func str(v *validator, field string, raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		v.add(field, field+" must be a string")
		return ""
	}
	return s
}
