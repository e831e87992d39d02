package grades

import (
	"sort"
	"strconv"

	"school-admin/internal/models"
)

// SubjectLine is one row of a report card
type SubjectLine struct {
	Subject     models.Subject `json:"subject"`
	Average     Average        `json:"average"`
	GradeCount  int            `json:"gradeCount"`
	Coefficient float64        `json:"coefficient"`
}

// ReportCard is the per-subject and overall summary of one student for a quarter
type ReportCard struct {
	Student models.Student `json:"student"`
	Quarter int            `json:"quarter"`
	Lines   []SubjectLine  `json:"lines"`
	Overall Average        `json:"overall"`
}

// HasData reports whether at least one subject has a defined average
func (r ReportCard) HasData() bool {
	return r.Overall.Defined
}

// QuarterLabel returns "T1".."T4" or "Année" for all quarters
func QuarterLabel(quarter int) string {
	if quarter == AllQuarters {
		return "Année"
	}
	return "T" + strconv.Itoa(quarter)
}

// BuildReportCard assembles a report card. Every subject gets a line, with
// an undefined average when the student has no usable grade in it.
func BuildReportCard(student models.Student, all []models.Grade, subjects []models.Subject, quarter int) ReportCard {
	bySubject := groupBySubject(all, student.ID, quarter)

	ordered := make([]models.Subject, len(subjects))
	copy(ordered, subjects)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})

	card := ReportCard{
		Student: student,
		Quarter: quarter,
		Lines:   make([]SubjectLine, 0, len(ordered)),
	}
	for _, subject := range ordered {
		grades := bySubject[subject.ID]
		count := 0
		for _, g := range grades {
			if _, _, ok := weighted(g); ok {
				count++
			}
		}
		card.Lines = append(card.Lines, SubjectLine{
			Subject:     subject,
			Average:     weightedMean(grades),
			GradeCount:  count,
			Coefficient: subject.Coefficient,
		})
	}
	card.Overall = OverallAverage(all, subjects, student.ID, quarter)

	return card
}
