package scoring

import "fmt"

// Feature identifies one of the ten lab measurements the engine scores.
type Feature int

const (
	Age Feature = iota
	Albumin
	AlkalinePhosphatase
	AlamiNotransaminase
	AspartateAminotransaminase
	Bilirubin
	Cholesterol
	AlbuminGlobulinRatio
	PlateletsCount
	ProthrombinTime

	featureCount
)

var featureNames = [featureCount]string{
	Age:                        "age",
	Albumin:                    "albumin",
	AlkalinePhosphatase:        "alkalinePhosphatase",
	AlamiNotransaminase:        "alamiNotransaminase",
	AspartateAminotransaminase: "aspartateAminotransaminase",
	Bilirubin:                  "bilirubin",
	Cholesterol:                "cholesterol",
	AlbuminGlobulinRatio:       "albuminGlobulinRatio",
	PlateletsCount:             "plateletsCount",
	ProthrombinTime:            "prothrombinTime",
}

// Features returns every feature in canonical order.
func Features() []Feature {
	out := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		out = append(out, f)
	}
	return out
}

func (f Feature) String() string {
	if f < 0 || f >= featureCount {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureNames[f]
}

func (f Feature) MarshalText() ([]byte, error) {
	if f < 0 || f >= featureCount {
		return nil, fmt.Errorf("unknown feature %d", int(f))
	}
	return []byte(featureNames[f]), nil
}

func (f *Feature) UnmarshalText(text []byte) error {
	parsed, ok := ParseFeature(string(text))
	if !ok {
		return fmt.Errorf("unknown feature %q", string(text))
	}
	*f = parsed
	return nil
}

// ParseFeature resolves a canonical feature name.
func ParseFeature(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// PatientLabRecord is the raw lab panel of one patient.
type PatientLabRecord struct {
	Age                        float64 `json:"age"`
	Albumin                    float64 `json:"albumin"`
	AlkalinePhosphatase        float64 `json:"alkalinePhosphatase"`
	AlamiNotransaminase        float64 `json:"alamiNotransaminase"`
	AspartateAminotransaminase float64 `json:"aspartateAminotransaminase"`
	Bilirubin                  float64 `json:"bilirubin"`
	Cholesterol                float64 `json:"cholesterol"`
	AlbuminGlobulinRatio       float64 `json:"albuminGlobulinRatio"`
	PlateletsCount             float64 `json:"plateletsCount"`
	ProthrombinTime            float64 `json:"prothrombinTime"`
}

// Value returns the raw measurement for f.
func (r PatientLabRecord) Value(f Feature) float64 {
	switch f {
	case Age:
		return r.Age
	case Albumin:
		return r.Albumin
	case AlkalinePhosphatase:
		return r.AlkalinePhosphatase
	case AlamiNotransaminase:
		return r.AlamiNotransaminase
	case AspartateAminotransaminase:
		return r.AspartateAminotransaminase
	case Bilirubin:
		return r.Bilirubin
	case Cholesterol:
		return r.Cholesterol
	case AlbuminGlobulinRatio:
		return r.AlbuminGlobulinRatio
	case PlateletsCount:
		return r.PlateletsCount
	case ProthrombinTime:
		return r.ProthrombinTime
	default:
		return 0
	}
}

// With returns a copy of r with f set to v.
func (r PatientLabRecord) With(f Feature, v float64) PatientLabRecord {
	switch f {
	case Age:
		r.Age = v
	case Albumin:
		r.Albumin = v
	case AlkalinePhosphatase:
		r.AlkalinePhosphatase = v
	case AlamiNotransaminase:
		r.AlamiNotransaminase = v
	case AspartateAminotransaminase:
		r.AspartateAminotransaminase = v
	case Bilirubin:
		r.Bilirubin = v
	case Cholesterol:
		r.Cholesterol = v
	case AlbuminGlobulinRatio:
		r.AlbuminGlobulinRatio = v
	case PlateletsCount:
		r.PlateletsCount = v
	case ProthrombinTime:
		r.ProthrombinTime = v
	}
	return r
}
