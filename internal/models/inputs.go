package models

// Form payloads sent on create/update. Validation tags are checked client-side
// before any request is issued; the backend still has the final word.

// LoginInput is the admin login form
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FamilyInput creates or updates a family
type FamilyInput struct {
	Name    string `json:"name" validate:"required,personname,max=120"`
	Address string `json:"address,omitempty" validate:"omitempty,max=255"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// ParentInput creates or updates a parent
type ParentInput struct {
	FirstName    string `json:"firstName" validate:"required,personname,max=80"`
	LastName     string `json:"lastName" validate:"required,personname,max=80"`
	Relationship string `json:"relationship" validate:"required,oneof=MOTHER FATHER GUARDIAN OTHER"`
	Phone        string `json:"phone" validate:"required,phone"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Profession   string `json:"profession,omitempty" validate:"omitempty,max=120"`
	FamilyID     int64  `json:"familyId,omitempty" validate:"omitempty,gt=0"`
}

// StudentInput creates or updates a student
type StudentInput struct {
	FirstName   string `json:"firstName" validate:"required,personname,max=80"`
	LastName    string `json:"lastName" validate:"required,personname,max=80"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"required,oneof=M F"`
	ClassID     int64  `json:"classId" validate:"required,gt=0"`
	FamilyID    int64  `json:"familyId,omitempty" validate:"omitempty,gt=0"`
	ParentID    int64  `json:"parentId,omitempty" validate:"omitempty,gt=0"`
}

// LevelInput creates or updates a level
type LevelInput struct {
	Name  string `json:"name" validate:"required,max=80"`
	Order int    `json:"order,omitempty" validate:"gte=0"`
}

// ClassInput creates or updates a class
type ClassInput struct {
	Name         string  `json:"name" validate:"required,max=80"`
	LevelID      int64   `json:"levelId" validate:"required,gt=0"`
	ClassFee     float64 `json:"classFee" validate:"gte=0"`
	AcademicYear string  `json:"academicYear" validate:"required,academicyear"`
}

// FeeInput creates or updates a fee
type FeeInput struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Amount       float64 `json:"amount" validate:"gt=0"`
	Frequency    string  `json:"frequency,omitempty" validate:"omitempty,oneof=MONTHLY QUARTERLY YEARLY ONCE"`
	ClassID      int64   `json:"classId,omitempty" validate:"omitempty,gt=0"`
	LevelID      int64   `json:"levelId,omitempty" validate:"omitempty,gt=0"`
	AcademicYear string  `json:"academicYear,omitempty" validate:"omitempty,academicyear"`
}

// PaymentInput records a payment
type PaymentInput struct {
	StudentID   int64   `json:"studentId" validate:"required,gt=0"`
	InvoiceID   int64   `json:"invoiceId,omitempty" validate:"omitempty,gt=0"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Month       string  `json:"month" validate:"required,datetime=2006-01"`
	PaymentDate string  `json:"paymentDate" validate:"required,datetime=2006-01-02"`
	Method      string  `json:"method" validate:"required,oneof=CASH MOBILE_MONEY CHEQUE BANK_TRANSFER"`
	Reference   string  `json:"reference,omitempty" validate:"required_unless=Method CASH,max=80"`
}

// InvoiceInput issues or edits an invoice. Numbering and totals are computed by the backend.
type InvoiceInput struct {
	StudentID int64         `json:"studentId" validate:"required,gt=0"`
	IssueDate string        `json:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate   string        `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Items     []InvoiceItem `json:"items" validate:"required,min=1,dive"`
	Discount  float64       `json:"discount,omitempty" validate:"gte=0"`
	Notes     string        `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// GradeInput records a grade
type GradeInput struct {
	StudentID   int64   `json:"studentId" validate:"required,gt=0"`
	SubjectID   int64   `json:"subjectId" validate:"required,gt=0"`
	Value       float64 `json:"value" validate:"gte=0,lte=20"`
	Coefficient float64 `json:"coefficient" validate:"gt=0,lte=10"`
	Quarter     int     `json:"quarter" validate:"required,min=1,max=4"`
	Type        string  `json:"type,omitempty" validate:"omitempty,max=40"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Comment     string  `json:"comment,omitempty" validate:"omitempty,max=255"`
}

// DocumentInput registers a document
type DocumentInput struct {
	Title     string `json:"title" validate:"required,max=120"`
	Type      string `json:"type,omitempty" validate:"omitempty,max=40"`
	StudentID int64  `json:"studentId,omitempty" validate:"omitempty,gt=0"`
	URL       string `json:"url" validate:"required,url"`
}
