package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// VolumetricDivisor converts cubic centimetres to chargeable kilograms.
const VolumetricDivisor = 5000.0

// Dimensions are the outer box size in centimetres.
type Dimensions struct {
	LengthCm float64
	WidthCm  float64
	HeightCm float64
}

// Measurements are the pricing inputs of a parcel: declared weight and,
// optionally, dimensions.
type Measurements struct {
	weightKg   float64
	dimensions *Dimensions
}

// NewMeasurements validates that weight and every dimension are positive.
// dimensions may be nil.
func NewMeasurements(weightKg float64, dimensions *Dimensions) (Measurements, error) {
	var errList []error
	if weightKg <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%v is not greater than 0", weightKg)))
	}

	if dimensions != nil {
		for name, v := range map[string]float64{
			"length": dimensions.LengthCm,
			"width":  dimensions.WidthCm,
			"height": dimensions.HeightCm,
		} {
			if v <= 0 {
				errList = append(errList, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%v is not greater than 0", v)))
			}
		}
	}

	if err := errors.Join(errList...); err != nil {
		return Measurements{}, err
	}

	m := Measurements{weightKg: weightKg}
	if dimensions != nil {
		d := *dimensions
		m.dimensions = &d
	}
	return m, nil
}

func (m Measurements) WeightKg() float64 {
	return m.weightKg
}

// Dimensions returns a copy, or nil when none were declared.
func (m Measurements) Dimensions() *Dimensions {
	if m.dimensions == nil {
		return nil
	}
	d := *m.dimensions
	return &d
}

// VolumetricWeightKg is length x width x height / 5000, or zero without dimensions.
func (m Measurements) VolumetricWeightKg() float64 {
	if m.dimensions == nil {
		return 0
	}
	return m.dimensions.LengthCm * m.dimensions.WidthCm * m.dimensions.HeightCm / VolumetricDivisor
}
