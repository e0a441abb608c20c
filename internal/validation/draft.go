package validation

import (
	"sort"
	"strconv"

	"github.com/sebasr/target-manager/internal/models"
)

// Draft is the string-valued form representation of a target. Values are kept
// exactly as typed, including partial or invalid input.
type Draft struct {
	ID        string // set only when editing
	Latitude  string
	Longitude string
	Altitude  string
	Frequency string
	Speed     string
	Bearing   string
	IPAddress string
}

// EmptyDraft returns the draft used when opening the create form.
func EmptyDraft(variant Variant) Draft {
	if variant == Simple {
		return Draft{Frequency: DefaultFrequency}
	}
	return Draft{}
}

// DraftFromTarget stringifies every numeric field of t. Formatting uses the
// shortest representation that parses back to the same value.
func DraftFromTarget(t models.Target) Draft {
	return Draft{
		ID:        t.ID,
		Latitude:  formatNumber(t.Latitude),
		Longitude: formatNumber(t.Longitude),
		Altitude:  formatNumber(t.Altitude),
		Frequency: formatNumber(t.Frequency),
		Speed:     formatNumber(t.Speed),
		Bearing:   formatNumber(t.Bearing),
		IPAddress: t.IPAddress,
	}
}

// Get returns the raw value of a field.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldLatitude:
		return d.Latitude
	case FieldLongitude:
		return d.Longitude
	case FieldAltitude:
		return d.Altitude
	case FieldFrequency:
		return d.Frequency
	case FieldSpeed:
		return d.Speed
	case FieldBearing:
		return d.Bearing
	case FieldIPAddress:
		return d.IPAddress
	}
	return ""
}

// Set stores the raw value of a field. Unknown fields are ignored and reported
// with false.
func (d *Draft) Set(f Field, value string) bool {
	switch f {
	case FieldLatitude:
		d.Latitude = value
	case FieldLongitude:
		d.Longitude = value
	case FieldAltitude:
		d.Altitude = value
	case FieldFrequency:
		d.Frequency = value
	case FieldSpeed:
		d.Speed = value
	case FieldBearing:
		d.Bearing = value
	case FieldIPAddress:
		d.IPAddress = value
	default:
		return false
	}
	return true
}

// IsEditing reports whether the draft belongs to an existing target.
func (d Draft) IsEditing() bool {
	return d.ID != ""
}

// FieldErrors maps a field to its error message.
type FieldErrors map[Field]string

// Empty reports whether there are no errors.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Clone returns an independent copy.
func (e FieldErrors) Clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Strings converts the errors into a plain map keyed by field name.
func (e FieldErrors) Strings() map[string]string {
	out := make(map[string]string, len(e))
	for k, v := range e {
		out[string(k)] = v
	}
	return out
}

// Sorted returns the fields with errors in display order.
func (e FieldErrors) Sorted() []Field {
	out := make([]Field, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return fieldIndex(out[i]) < fieldIndex(out[j]) })
	return out
}

func fieldIndex(f Field) int {
	for i, known := range Fields {
		if known == f {
			return i
		}
	}
	return len(Fields)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
