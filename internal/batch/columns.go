package batch

import (
	"slices"
	"strings"

	"github.com/Skufu/liverscreen/internal/scoring"
)

type column int

const (
	colAge column = iota
	colAlbumin
	colAlkalinePhosphatase
	colAlamiNotransaminase
	colAspartateAminotransaminase
	colBilirubin
	colCholesterol
	colAlbuminGlobulinRatio
	colPlateletsCount
	colProthrombinTime
	colGender
	colName

	columnCount
)

// Header spellings accepted per column, compared after trimming and lower-casing.
var aliases = [columnCount][]string{
	colAge:                        {"age", "umur", "usia"},
	colGender:                     {"gender", "jenis kelamin", "sex"},
	colAlbumin:                    {"albumin"},
	colAlkalinePhosphatase:        {"alkaline phosphatase", "alkalinephosphatase", "alk phos", "alkphos"},
	colAlamiNotransaminase:        {"alat", "alanine aminotransferase", "alt"},
	colAspartateAminotransaminase: {"asat", "aspartate aminotransferase", "ast"},
	colBilirubin:                  {"bilirubin"},
	colCholesterol:                {"cholesterol"},
	colAlbuminGlobulinRatio:       {"albumin/globulin ratio", "albuminglobulinratio", "albuminglobularratio", "a/g ratio"},
	colPlateletsCount:             {"platelets", "platelet count", "platelets count"},
	colProthrombinTime:            {"prothrombin time", "prothrombintime", "prothombintime", "pt", "inr"},
	colName:                       {"name", "nama", "patient name", "patient_name"},
}

// Lab columns map one to one onto scoring features.
var labColumns = map[column]scoring.Feature{
	colAge:                        scoring.Age,
	colAlbumin:                    scoring.Albumin,
	colAlkalinePhosphatase:        scoring.AlkalinePhosphatase,
	colAlamiNotransaminase:        scoring.AlamiNotransaminase,
	colAspartateAminotransaminase: scoring.AspartateAminotransaminase,
	colBilirubin:                  scoring.Bilirubin,
	colCholesterol:                scoring.Cholesterol,
	colAlbuminGlobulinRatio:       scoring.AlbuminGlobulinRatio,
	colPlateletsCount:             scoring.PlateletsCount,
	colProthrombinTime:            scoring.ProthrombinTime,
}

// columnIndex maps each recognised column to its position in the header.
type columnIndex map[column]int

// mapHeader resolves header cells against the alias table. The first
// matching header cell wins for each column.
func mapHeader(header []string) (columnIndex, []string) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	idx := columnIndex{}
	for c := column(0); c < columnCount; c++ {
		for pos, h := range normalized {
			if slices.Contains(aliases[c], h) {
				idx[c] = pos
				break
			}
		}
	}

	missing := []string{}
	for c := colAge; c <= colProthrombinTime; c++ {
		if _, ok := idx[c]; !ok {
			missing = append(missing, labColumns[c].String())
		}
	}
	return idx, missing
}

func (idx columnIndex) cell(values []string, c column) (string, bool) {
	pos, ok := idx[c]
	if !ok || pos >= len(values) {
		return "", false
	}
	return strings.TrimSpace(values[pos]), true
}
