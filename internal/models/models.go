package models

import (
	"strings"
)

// Session is the authenticated administrator as persisted on disk
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Family groups the parents and students of one household
type Family struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Relationship is how a parent relates to a student
type Relationship string

const (
	RelationshipMother   Relationship = "MOTHER"
	RelationshipFather   Relationship = "FATHER"
	RelationshipGuardian Relationship = "GUARDIAN"
	RelationshipOther    Relationship = "OTHER"
)

// Parent represents a parent or guardian attached to a family
type Parent struct {
	ID           int64        `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Relationship Relationship `json:"relationship"`
	Phone        string       `json:"phone,omitempty"`
	Email        string       `json:"email,omitempty"`
	Profession   string       `json:"profession,omitempty"`
	FamilyID     int64        `json:"familyId,omitempty"`
}

// FullName returns "First Last"
func (p Parent) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

// Student represents an enrolled pupil
type Student struct {
	ID               int64  `json:"id"`
	Matricule        string `json:"matricule,omitempty"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	DateOfBirth      Date   `json:"dateOfBirth"`
	Gender           string `json:"gender,omitempty"`
	ClassID          int64  `json:"classId,omitempty"`
	FamilyID         int64  `json:"familyId,omitempty"`
	ParentID         int64  `json:"parentId,omitempty"`
	RegistrationDate Date   `json:"registrationDate"`
}

// FullName returns "First Last"
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// DisplayID returns the matricule when the backend assigned one, the numeric id otherwise
func (s Student) DisplayID() string {
	if s.Matricule != "" {
		return s.Matricule
	}
	return formatID(s.ID)
}

// Level groups classes of the same grade
type Level struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order,omitempty"`
}

// Class is a group of students with a monthly fee
type Class struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	LevelID      int64     `json:"levelId,omitempty"`
	ClassFee     float64   `json:"classFee"`
	AcademicYear string    `json:"academicYear,omitempty"`
	Students     []Student `json:"students,omitempty"`
}

// Fee is a chargeable item configured on the backend
type Fee struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Frequency    string  `json:"frequency,omitempty"`
	ClassID      int64   `json:"classId,omitempty"`
	LevelID      int64   `json:"levelId,omitempty"`
	AcademicYear string  `json:"academicYear,omitempty"`
}

// Document is a file the backend stores for a student
type Document struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type,omitempty"`
	StudentID int64  `json:"studentId,omitempty"`
	URL       string `json:"url,omitempty"`
	CreatedAt Date   `json:"createdAt"`
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
