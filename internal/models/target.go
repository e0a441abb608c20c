// Package models defines the domain types shared by the backend and the client.
package models

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Domain bounds for target fields.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinBearing   = 0.0
	MaxBearing   = 360.0

	// MHzThreshold separates frequencies expressed in MHz (>=) from GHz (<).
	MHzThreshold = 100.0
)

// ErrInvalidTarget is wrapped by every domain validation failure.
var ErrInvalidTarget = errors.New("invalid target")

var dottedQuadPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// Target represents a geolocated radio emitter
type Target struct {
	ID        string  `json:"id" yaml:"id" db:"id"`
	Latitude  float64 `json:"latitude" yaml:"latitude" db:"latitude"`    // degrees
	Longitude float64 `json:"longitude" yaml:"longitude" db:"longitude"` // degrees
	Altitude  float64 `json:"altitude" yaml:"altitude" db:"altitude"`    // meters
	Frequency float64 `json:"frequency" yaml:"frequency" db:"frequency"` // MHz when >= 100, GHz otherwise
	Speed     float64 `json:"speed" yaml:"speed" db:"speed"`             // m/s
	Bearing   float64 `json:"bearing" yaml:"bearing" db:"bearing"`       // degrees
	IPAddress string  `json:"ip_address" yaml:"ip_address" db:"ip_address"`
}

// TargetCreate holds the fields of a target before the server assigns an ID
type TargetCreate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Frequency float64 `json:"frequency"`
	Speed     float64 `json:"speed"`
	Bearing   float64 `json:"bearing"`
	IPAddress string  `json:"ip_address"`
}

// TargetUpdate holds a partial update. Nil fields keep their stored value.
type TargetUpdate struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Bearing   *float64 `json:"bearing,omitempty"`
	IPAddress *string  `json:"ip_address,omitempty"`
}

// NewTarget builds a Target from create data and a server-assigned ID
func NewTarget(id string, data TargetCreate) *Target {
	return &Target{
		ID:        id,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
		Altitude:  data.Altitude,
		Frequency: data.Frequency,
		Speed:     data.Speed,
		Bearing:   data.Bearing,
		IPAddress: data.IPAddress,
	}
}

// Fields returns the target without its ID
func (t *Target) Fields() TargetCreate {
	return TargetCreate{
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		Altitude:  t.Altitude,
		Frequency: t.Frequency,
		Speed:     t.Speed,
		Bearing:   t.Bearing,
		IPAddress: t.IPAddress,
	}
}

// Validate checks every domain constraint and reports all violations
func (t *Target) Validate() error {
	return t.Fields().Validate()
}

// Validate checks every domain constraint and reports all violations
func (c TargetCreate) Validate() error {
	var problems []string

	if !finite(c.Latitude) || c.Latitude < MinLatitude || c.Latitude > MaxLatitude {
		problems = append(problems, fmt.Sprintf("latitude must be between -90 and 90, got %v", c.Latitude))
	}
	if !finite(c.Longitude) || c.Longitude < MinLongitude || c.Longitude > MaxLongitude {
		problems = append(problems, fmt.Sprintf("longitude must be between -180 and 180, got %v", c.Longitude))
	}
	if !finite(c.Altitude) {
		problems = append(problems, fmt.Sprintf("altitude must be a finite number, got %v", c.Altitude))
	}
	if !finite(c.Frequency) || c.Frequency <= 0 {
		problems = append(problems, fmt.Sprintf("frequency must be positive, got %v", c.Frequency))
	}
	if !finite(c.Speed) || c.Speed < 0 {
		problems = append(problems, fmt.Sprintf("speed must be non-negative, got %v", c.Speed))
	}
	if !finite(c.Bearing) || c.Bearing < MinBearing || c.Bearing > MaxBearing {
		problems = append(problems, fmt.Sprintf("bearing must be between 0 and 360, got %v", c.Bearing))
	}
	if !IsDottedQuad(c.IPAddress) {
		problems = append(problems, fmt.Sprintf("ip_address must be a valid IPv4 address, got %q", c.IPAddress))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidTarget, strings.Join(problems, "; "))
}

// Update converts create data into an update that sets every field
func (c TargetCreate) Update() TargetUpdate {
	ip := c.IPAddress
	return TargetUpdate{
		Latitude:  float64Ptr(c.Latitude),
		Longitude: float64Ptr(c.Longitude),
		Altitude:  float64Ptr(c.Altitude),
		Frequency: float64Ptr(c.Frequency),
		Speed:     float64Ptr(c.Speed),
		Bearing:   float64Ptr(c.Bearing),
		IPAddress: &ip,
	}
}

// HasUpdates reports whether any field is set
func (u TargetUpdate) HasUpdates() bool {
	return u.Latitude != nil || u.Longitude != nil || u.Altitude != nil ||
		u.Frequency != nil || u.Speed != nil || u.Bearing != nil || u.IPAddress != nil
}

// Apply returns a copy of t with the set fields of u merged in
func (u TargetUpdate) Apply(t Target) Target {
	if u.Latitude != nil {
		t.Latitude = *u.Latitude
	}
	if u.Longitude != nil {
		t.Longitude = *u.Longitude
	}
	if u.Altitude != nil {
		t.Altitude = *u.Altitude
	}
	if u.Frequency != nil {
		t.Frequency = *u.Frequency
	}
	if u.Speed != nil {
		t.Speed = *u.Speed
	}
	if u.Bearing != nil {
		t.Bearing = *u.Bearing
	}
	if u.IPAddress != nil {
		t.IPAddress = *u.IPAddress
	}
	return t
}

// IsDottedQuad reports whether s is four dot-separated groups of 1-3 digits,
// each no greater than 255. Leading zeros are accepted.
func IsDottedQuad(s string) bool {
	if !dottedQuadPattern.MatchString(s) {
		return false
	}
	for _, octet := range strings.Split(s, ".") {
		n, err := strconv.Atoi(octet)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}

// FrequencyUnit returns "MHz" or "GHz" for a frequency value
func FrequencyUnit(f float64) string {
	if f >= MHzThreshold {
		return "MHz"
	}
	return "GHz"
}

// FormatFrequency renders a frequency with its implied unit, e.g. "915 MHz" or "2.4 GHz"
func FormatFrequency(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + " " + FrequencyUnit(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func float64Ptr(f float64) *float64 {
	return &f
}
