package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreate() TargetCreate {
	return TargetCreate{
		Latitude:  32.0853,
		Longitude: 34.7818,
		Altitude:  150.5,
		Frequency: 2.4,
		Speed:     25,
		Bearing:   180,
		IPAddress: "192.168.1.1",
	}
}

func TestTargetCreate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *TargetCreate)
		wantErr string
	}{
		{name: "valid target", mutate: func(_ *TargetCreate) {}},
		{name: "latitude lower bound", mutate: func(c *TargetCreate) { c.Latitude = -90 }},
		{name: "latitude upper bound", mutate: func(c *TargetCreate) { c.Latitude = 90 }},
		{name: "bearing bounds", mutate: func(c *TargetCreate) { c.Bearing = 360 }},
		{name: "zero speed", mutate: func(c *TargetCreate) { c.Speed = 0 }},
		{name: "negative altitude", mutate: func(c *TargetCreate) { c.Altitude = -420 }},
		{
			name:    "latitude out of range",
			mutate:  func(c *TargetCreate) { c.Latitude = 90.0001 },
			wantErr: "latitude must be between -90 and 90",
		},
		{
			name:    "longitude out of range",
			mutate:  func(c *TargetCreate) { c.Longitude = -180.5 },
			wantErr: "longitude must be between -180 and 180",
		},
		{
			name:    "infinite altitude",
			mutate:  func(c *TargetCreate) { c.Altitude = math.Inf(1) },
			wantErr: "altitude must be a finite number",
		},
		{
			name:    "zero frequency",
			mutate:  func(c *TargetCreate) { c.Frequency = 0 },
			wantErr: "frequency must be positive",
		},
		{
			name:    "negative speed",
			mutate:  func(c *TargetCreate) { c.Speed = -1 },
			wantErr: "speed must be non-negative",
		},
		{
			name:    "bearing over 360",
			mutate:  func(c *TargetCreate) { c.Bearing = 360.1 },
			wantErr: "bearing must be between 0 and 360",
		},
		{
			name:    "bad ip",
			mutate:  func(c *TargetCreate) { c.IPAddress = "1.2.3.256" },
			wantErr: "ip_address must be a valid IPv4 address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCreate()
			tt.mutate(&c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTarget))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTargetCreate_ValidateReportsAllViolations(t *testing.T) {
	c := TargetCreate{Latitude: 100, Longitude: 200, Frequency: -1, Speed: -1, Bearing: 400, IPAddress: "x"}

	err := c.Validate()
	require.Error(t, err)
	for _, field := range []string{"latitude", "longitude", "frequency", "speed", "bearing", "ip_address"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestIsDottedQuad(t *testing.T) {
	valid := []string{"192.168.1.1", "0.0.0.0", "255.255.255.255", "01.02.03.04", "00.0.0.00"}
	for _, ip := range valid {
		assert.True(t, IsDottedQuad(ip), ip)
	}

	invalid := []string{"", "1.2.3", "1.2.3.4.5", "1.2.3.256", "abc.def.gha.bcd", "1.2.3.4 ", "1..2.3", "1234.1.1.1", "-1.2.3.4"}
	for _, ip := range invalid {
		assert.False(t, IsDottedQuad(ip), ip)
	}
}

func TestTargetUpdate_Apply(t *testing.T) {
	original := *NewTarget("abc", validCreate())
	ip := "10.10.10.10"

	updated := TargetUpdate{IPAddress: &ip}.Apply(original)

	assert.Equal(t, "10.10.10.10", updated.IPAddress)
	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, original.Latitude, updated.Latitude)
	assert.Equal(t, original.Bearing, updated.Bearing)
	assert.Equal(t, "192.168.1.1", original.IPAddress, "original must not be mutated")
}

func TestTargetUpdate_HasUpdates(t *testing.T) {
	assert.False(t, TargetUpdate{}.HasUpdates())

	speed := 3.0
	assert.True(t, TargetUpdate{Speed: &speed}.HasUpdates())
	assert.True(t, validCreate().Update().HasUpdates())
}

func TestTargetCreate_UpdateSetsEveryField(t *testing.T) {
	c := validCreate()
	target := TargetUpdate{}.Apply(Target{ID: "id"})

	got := c.Update().Apply(target)

	assert.Equal(t, c, got.Fields())
	assert.Equal(t, "id", got.ID)
}

func TestFormatFrequency(t *testing.T) {
	assert.Equal(t, "915 MHz", FormatFrequency(915))
	assert.Equal(t, "100 MHz", FormatFrequency(100))
	assert.Equal(t, "2.4 GHz", FormatFrequency(2.4))
	assert.Equal(t, "5.8 GHz", FormatFrequency(5.8))
}
