// Package factory generates random but valid targets for seeding and tests.
package factory

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/sebasr/target-manager/internal/models"
)

// CommonFrequencies are picked most of the time to keep data realistic.
var CommonFrequencies = []float64{433, 915, 2.4, 5.2, 5.8}

// Factory produces targets. It is safe for concurrent use.
type Factory struct {
	mu     sync.Mutex
	source *rand.ChaCha8
	rng    *rand.Rand
}

// New creates a factory. A zero seed yields a non-deterministic sequence.
func New(seed uint64) *Factory {
	var key [32]byte
	if seed == 0 {
		seed = rand.Uint64()
	}
	binary.LittleEndian.PutUint64(key[:8], seed)

	source := rand.NewChaCha8(key)
	return &Factory{source: source, rng: rand.New(source)}
}

// Target returns a random target with a fresh UUID.
func (f *Factory) Target() models.Target {
	f.mu.Lock()
	defer f.mu.Unlock()

	return *models.NewTarget(f.newID(), f.create())
}

// Targets returns n random targets.
func (f *Factory) Targets(n int) []models.Target {
	out := make([]models.Target, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Target())
	}
	return out
}

// Create returns random create data.
func (f *Factory) Create() models.TargetCreate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.create()
}

// Update returns an update. When partial is true each field is set with
// probability one half, and at least one field is always set.
func (f *Factory) Update(partial bool) models.TargetUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	full := f.create()
	if !partial {
		return full.Update()
	}

	all := full.Update()
	var u models.TargetUpdate
	if f.rng.IntN(2) == 0 {
		u.Latitude = all.Latitude
	}
	if f.rng.IntN(2) == 0 {
		u.Longitude = all.Longitude
	}
	if f.rng.IntN(2) == 0 {
		u.Altitude = all.Altitude
	}
	if f.rng.IntN(2) == 0 {
		u.Frequency = all.Frequency
	}
	if f.rng.IntN(2) == 0 {
		u.Speed = all.Speed
	}
	if f.rng.IntN(2) == 0 {
		u.Bearing = all.Bearing
	}
	if f.rng.IntN(2) == 0 {
		u.IPAddress = all.IPAddress
	}
	if !u.HasUpdates() {
		u.Speed = all.Speed
	}
	return u
}

func (f *Factory) create() models.TargetCreate {
	return models.TargetCreate{
		Latitude:  round(f.between(models.MinLatitude, models.MaxLatitude), 6),
		Longitude: round(f.between(models.MinLongitude, models.MaxLongitude), 6),
		Altitude:  round(f.between(-500, 50000), 2),
		Frequency: f.frequency(),
		Speed:     round(f.between(0, 1000), 2),
		Bearing:   round(f.between(models.MinBearing, models.MaxBearing), 2),
		IPAddress: f.ipv4(),
	}
}

func (f *Factory) frequency() float64 {
	if f.rng.Float64() < 0.7 {
		return CommonFrequencies[f.rng.IntN(len(CommonFrequencies))]
	}
	return round(f.between(0.1, 100), 2)
}

func (f *Factory) ipv4() string {
	return fmt.Sprintf("%d.%d.%d.%d", f.rng.IntN(256), f.rng.IntN(256), f.rng.IntN(256), f.rng.IntN(256))
}

func (f *Factory) newID() string {
	id, err := uuid.NewRandomFromReader(f.source)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// between returns a value in [lo, hi]
func (f *Factory) between(lo, hi float64) float64 {
	v := lo + f.rng.Float64()*(hi-lo)
	return math.Min(math.Max(v, lo), hi)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
