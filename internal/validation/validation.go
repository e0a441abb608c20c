// Package validation turns raw, string-valued form input into typed target data.
//
// Every rule is applied independently and all violations are reported together.
// The functions here are pure: the same draft always yields the same result.
package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/sebasr/target-manager/internal/models"
)

// Field names a form field. Values match the JSON field names of a target.
type Field string

// Form fields, in display order.
const (
	FieldLatitude  Field = "latitude"
	FieldLongitude Field = "longitude"
	FieldAltitude  Field = "altitude"
	FieldFrequency Field = "frequency"
	FieldSpeed     Field = "speed"
	FieldBearing   Field = "bearing"
	FieldIPAddress Field = "ip_address"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldLatitude,
	FieldLongitude,
	FieldAltitude,
	FieldFrequency,
	FieldSpeed,
	FieldBearing,
	FieldIPAddress,
}

// Variant selects between the full form (free frequency input) and the simple
// form (frequency picked from FrequencyOptions).
type Variant int

const (
	Full Variant = iota
	Simple
)

// Error messages shown next to a field.
const (
	MsgLatitude         = "Must be between -90 and 90"
	MsgLongitude        = "Must be between -180 and 180"
	MsgAltitude         = "Must be a valid number"
	MsgFrequency        = "Must be a positive number"
	MsgFrequencyOption  = "Must be one of the listed frequencies"
	MsgSpeedNonNegative = "Must be a non-negative number"
	MsgSpeedPositive    = "Must be a positive number"
	MsgBearing          = "Must be between 0 and 360"
	MsgIPAddress        = "Must be a valid IPv4 address"
)

// FrequencyOptions are the common frequencies offered by the simple form.
var FrequencyOptions = []float64{433, 915, 2.4, 5.2, 5.8}

// DefaultFrequency pre-fills the simple form on create.
const DefaultFrequency = "2.4"

// IsValidField reports whether f names a form field.
func IsValidField(f Field) bool {
	for _, known := range Fields {
		if known == f {
			return true
		}
	}
	return false
}

// Message returns the message reported for an invalid value of f.
func Message(f Field, variant Variant) string {
	switch f {
	case FieldLatitude:
		return MsgLatitude
	case FieldLongitude:
		return MsgLongitude
	case FieldAltitude:
		return MsgAltitude
	case FieldFrequency:
		if variant == Simple {
			return MsgFrequencyOption
		}
		return MsgFrequency
	case FieldSpeed:
		if variant == Simple {
			return MsgSpeedPositive
		}
		return MsgSpeedNonNegative
	case FieldBearing:
		return MsgBearing
	case FieldIPAddress:
		return MsgIPAddress
	}
	return ""
}

// Validated is a parsed draft, ready to be sent to the API.
type Validated = models.TargetCreate

// Validate checks every field of the draft. When the returned FieldErrors is
// empty the returned Validated holds the parsed values.
func Validate(d Draft, variant Variant) (Validated, FieldErrors) {
	errs := FieldErrors{}
	var out Validated

	for _, f := range Fields {
		if msg := ValidateField(f, d.Get(f), variant); msg != "" {
			errs[f] = msg
		}
	}
	if len(errs) > 0 {
		return Validated{}, errs
	}

	// All numeric fields parsed above, so errors cannot occur here.
	out.Latitude, _ = parseNumber(d.Latitude)
	out.Longitude, _ = parseNumber(d.Longitude)
	out.Altitude, _ = parseNumber(d.Altitude)
	out.Frequency, _ = parseNumber(d.Frequency)
	out.Speed, _ = parseNumber(d.Speed)
	out.Bearing, _ = parseNumber(d.Bearing)
	out.IPAddress = d.IPAddress

	return out, nil
}

// ValidateField checks a single raw value and returns the error message, or ""
// when the value is acceptable.
func ValidateField(f Field, raw string, variant Variant) string {
	if ok := fieldValid(f, raw, variant); !ok {
		return Message(f, variant)
	}
	return ""
}

func fieldValid(f Field, raw string, variant Variant) bool {
	if f == FieldIPAddress {
		return models.IsDottedQuad(raw)
	}

	v, ok := parseNumber(raw)
	if !ok {
		return false
	}

	switch f {
	case FieldLatitude:
		return v >= models.MinLatitude && v <= models.MaxLatitude
	case FieldLongitude:
		return v >= models.MinLongitude && v <= models.MaxLongitude
	case FieldAltitude:
		return true
	case FieldFrequency:
		if variant == Simple {
			return isFrequencyOption(v)
		}
		return v > 0
	case FieldSpeed:
		return v >= 0
	case FieldBearing:
		return v >= models.MinBearing && v <= models.MaxBearing
	}
	return false
}

func isFrequencyOption(v float64) bool {
	for _, opt := range FrequencyOptions {
		if opt == v {
			return true
		}
	}
	return false
}

// parseNumber parses a finite number in plain decimal notation, ignoring
// surrounding spaces. Hex floats, "Inf", "NaN" and trailing text are rejected.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.IndexFunc(s, notDecimalRune) >= 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func notDecimalRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return false
	case r == '.', r == '+', r == '-', r == 'e', r == 'E':
		return false
	}
	return true
}
