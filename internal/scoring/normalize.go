package scoring

import "math"

// Reference ceilings used to bring each measurement onto [0, 1]. These
// differ from the acceptance bounds in limits; values between the two are
// absorbed by the clamp.
var ceilings = [featureCount]float64{
	Age:                        80,
	Albumin:                    5.5,
	AlkalinePhosphatase:        120,
	AlamiNotransaminase:        65,
	AspartateAminotransaminase: 65,
	Bilirubin:                  1.2,
	Cholesterol:                200,
	AlbuminGlobulinRatio:       2.0,
	PlateletsCount:             400,
	ProthrombinTime:            13,
}

// NormalizedFeatureVector holds one value in [0, 1] per feature.
type NormalizedFeatureVector [featureCount]float64

func (v NormalizedFeatureVector) Get(f Feature) float64 {
	return v[f]
}

// Normalize divides each raw value by its reference ceiling and caps the
// quotient at 1. The record must already have passed Validate.
func Normalize(record PatientLabRecord) NormalizedFeatureVector {
	var v NormalizedFeatureVector
	for f := Feature(0); f < featureCount; f++ {
		v[f] = math.Min(record.Value(f)/ceilings[f], 1)
	}
	return v
}

// Ceiling returns the reference ceiling for f.
func Ceiling(f Feature) float64 {
	return ceilings[f]
}
