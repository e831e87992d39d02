// Package grades computes weighted report-card averages on the 0-20 scale.
//
// Nothing in this package returns an error: records that cannot take part in
// an average (missing value or coefficient, NaN, out of range) are skipped so
// that one bad row never blanks a whole report card.
package grades

import (
	"fmt"
	"math"

	"school-admin/internal/models"
)

// AllQuarters selects every quarter when passed as a quarter filter
const AllQuarters = 0

const (
	minValue = 0.0
	maxValue = 20.0
)

// Placeholder is rendered for an undefined average
const Placeholder = "—"

// Average is a weighted mean that may be undefined ("no grade yet").
// An undefined average is distinct from a defined 0.
type Average struct {
	Value   float64
	Defined bool
}

// Undefined is the zero Average
var Undefined = Average{}

// Rounded returns the value rounded to two decimals
func (a Average) Rounded() float64 {
	return math.Round(a.Value*100) / 100
}

// String renders two decimals or the placeholder
func (a Average) String() string {
	if !a.Defined {
		return Placeholder
	}
	return fmt.Sprintf("%.2f", a.Rounded())
}

// MarshalJSON writes the rounded value or null
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Defined {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%.2f", a.Rounded())), nil
}

// weighted returns value and coefficient of a usable grade
func weighted(g models.Grade) (value, coef float64, ok bool) {
	if g.Value == nil || g.Coefficient == nil {
		return 0, 0, false
	}
	value, coef = *g.Value, *g.Coefficient
	if math.IsNaN(value) || math.IsInf(value, 0) || math.IsNaN(coef) || math.IsInf(coef, 0) {
		return 0, 0, false
	}
	if value < minValue || value > maxValue || coef < 0 {
		return 0, 0, false
	}
	return value, coef, true
}

func matchesQuarter(g models.Grade, quarter int) bool {
	return quarter == AllQuarters || g.Quarter == quarter
}

// weightedMean computes Σ(value×coef)/Σ(coef) over usable grades
func weightedMean(grades []models.Grade) Average {
	var sum, weights float64
	for _, g := range grades {
		value, coef, ok := weighted(g)
		if !ok {
			continue
		}
		sum += value * coef
		weights += coef
	}
	if weights <= 0 {
		return Undefined
	}
	return Average{Value: sum / weights, Defined: true}
}

// SubjectAverage returns the weighted average of one student's grades in one
// subject for the given quarter (or AllQuarters)
func SubjectAverage(all []models.Grade, studentID, subjectID int64, quarter int) Average {
	var selected []models.Grade
	for _, g := range all {
		if g.StudentID == studentID && g.SubjectID == subjectID && matchesQuarter(g, quarter) {
			selected = append(selected, g)
		}
	}
	return weightedMean(selected)
}

// OverallAverage weights each defined subject average by the subject's own
// coefficient. Grades for subjects missing from subjects, or whose
// coefficient is not positive, do not take part.
func OverallAverage(all []models.Grade, subjects []models.Subject, studentID int64, quarter int) Average {
	bySubject := groupBySubject(all, studentID, quarter)

	var numerator, denominator float64
	for _, subject := range subjects {
		if !(subject.Coefficient > 0) || math.IsInf(subject.Coefficient, 0) {
			continue
		}
		avg := weightedMean(bySubject[subject.ID])
		if !avg.Defined {
			continue
		}
		numerator += avg.Value * subject.Coefficient
		denominator += subject.Coefficient
	}

	if denominator <= 0 {
		return Undefined
	}
	return Average{Value: numerator / denominator, Defined: true}
}

func groupBySubject(all []models.Grade, studentID int64, quarter int) map[int64][]models.Grade {
	grouped := make(map[int64][]models.Grade)
	for _, g := range all {
		if g.StudentID != studentID || !matchesQuarter(g, quarter) {
			continue
		}
		grouped[g.SubjectID] = append(grouped[g.SubjectID], g)
	}
	return grouped
}
