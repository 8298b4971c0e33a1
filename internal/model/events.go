// Package model holds the canonical event types every analytics component
// operates on. Events are plain values: constructed once, validated at the
// boundary, never mutated afterwards.
package model

import (
	"errors"
	"fmt"
	"time"
)

// DeviceType identifies the exporting device family of a data batch.
type DeviceType string

const (
	DeviceDexcom    DeviceType = "dexcom"
	DeviceLibreView DeviceType = "libreview"
	DeviceTandem    DeviceType = "tandem"
	DeviceMedtronic DeviceType = "medtronic"
	DeviceGlooko    DeviceType = "glooko"
	DeviceOmnipod   DeviceType = "omnipod"
	DeviceUnknown   DeviceType = "unknown"
)

// Clinical safety bounds. Values outside these ranges are sensor errors,
// not domain objects; they are rejected at construction.
const (
	GlucoseMinMgDL  = 20.0
	GlucoseMaxMgDL  = 600.0
	InsulinMaxUnits = 100.0
	CarbMaxGrams    = 500.0
)

var (
	ErrGlucoseOutOfRange = errors.New("glucose value outside clinical bounds")
	ErrInsulinOutOfRange = errors.New("insulin units outside clinical bounds")
	ErrCarbsOutOfRange   = errors.New("carbohydrate grams outside clinical bounds")
	ErrInvalidInsulin    = errors.New("insulin kind must be bolus or basal")
)

// GlucoseReading is a single sensor or meter glucose sample in mg/dL.
type GlucoseReading struct {
	Timestamp time.Time  `json:"timestamp"`
	Value     float64    `json:"value"`
	Device    DeviceType `json:"device"`
}

// NewGlucoseReading validates the clinical bounds [20, 600] mg/dL.
func NewGlucoseReading(ts time.Time, value float64, device DeviceType) (GlucoseReading, error) {
	if value < GlucoseMinMgDL || value > GlucoseMaxMgDL {
		return GlucoseReading{}, fmt.Errorf("%w: %.1f mg/dL", ErrGlucoseOutOfRange, value)
	}
	if device == "" {
		device = DeviceUnknown
	}
	return GlucoseReading{Timestamp: ts, Value: value, Device: device}, nil
}

// When implements the correlate.Timestamped constraint.
func (g GlucoseReading) When() time.Time { return g.Timestamp }

// InsulinKind distinguishes rapid-acting meal insulin from background insulin.
type InsulinKind string

const (
	InsulinBolus InsulinKind = "bolus"
	InsulinBasal InsulinKind = "basal"
)

// InsulinEvent is one insulin administration.
type InsulinEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Kind      InsulinKind `json:"kind"`
	Units     float64     `json:"units"`
}

// NewInsulinEvent validates kind and the [0, 100] unit bound.
func NewInsulinEvent(ts time.Time, kind InsulinKind, units float64) (InsulinEvent, error) {
	if kind != InsulinBolus && kind != InsulinBasal {
		return InsulinEvent{}, fmt.Errorf("%w: %q", ErrInvalidInsulin, kind)
	}
	if units < 0 || units > InsulinMaxUnits {
		return InsulinEvent{}, fmt.Errorf("%w: %.1f units", ErrInsulinOutOfRange, units)
	}
	return InsulinEvent{Timestamp: ts, Kind: kind, Units: units}, nil
}

// When implements the correlate.Timestamped constraint.
func (i InsulinEvent) When() time.Time { return i.Timestamp }

// CarbEvent is one carbohydrate intake, optionally tagged with a meal name.
type CarbEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Grams     float64   `json:"grams"`
	MealTag   string    `json:"mealTag,omitempty"`
}

// NewCarbEvent validates the [0, 500] gram bound.
func NewCarbEvent(ts time.Time, grams float64, mealTag string) (CarbEvent, error) {
	if grams < 0 || grams > CarbMaxGrams {
		return CarbEvent{}, fmt.Errorf("%w: %.1f g", ErrCarbsOutOfRange, grams)
	}
	return CarbEvent{Timestamp: ts, Grams: grams, MealTag: mealTag}, nil
}

// When implements the correlate.Timestamped constraint.
func (c CarbEvent) When() time.Time { return c.Timestamp }
