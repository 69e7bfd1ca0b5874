package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the canonical, normalized per-person record. Every populated
// field was explicitly supplied by some write; merges never invent values.
type Profile struct {
	IdentityID uuid.UUID `json:"identity_id"`

	FullName         string `json:"full_name"`
	OfficialEmail    string `json:"official_email"`
	PersonalEmail    string `json:"personal_email"`
	Phone            string `json:"phone"`
	AlternatePhone   string `json:"alternate_phone"`
	EmployeeID       string `json:"employee_id"`
	JobTitle         string `json:"job_title"`
	Department       string `json:"department"`
	EmploymentType   string `json:"employment_type"`
	ReportingManager string `json:"reporting_manager"`
	JoiningDate      string `json:"joining_date"`
	WorkLocation     string `json:"work_location"`
	Gender           string `json:"gender"`
	MaritalStatus    string `json:"marital_status"`
	Nationality      string `json:"nationality"`
	BloodGroup       string `json:"blood_group"`

	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`

	// Legacy-duplicate scalars kept for backward compatibility. Both are also
	// derivable from the structured blocks below.
	BankName    string `json:"bank_name"`
	DateOfBirth string `json:"date_of_birth"`

	FamilyDetails      []FamilyMember    `json:"family_details,omitempty"`
	BankDetails        *BankDetails      `json:"bank_details,omitempty"`
	PersonalDetails    *PersonalDetails  `json:"personal_details,omitempty"`
	CurrentAddress     *Address          `json:"current_address,omitempty"`
	PermanentAddress   *Address          `json:"permanent_address,omitempty"`
	Education          []EducationRecord `json:"education,omitempty"`
	Certifications     []Certification   `json:"certifications,omitempty"`
	ProjectHistory     []ProjectRecord   `json:"project_history,omitempty"`
	DocumentsSubmitted []DocumentRecord  `json:"documents_submitted,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FamilyMember struct {
	Name        string `json:"name" validate:"required"`
	Relation    string `json:"relation"`
	DateOfBirth string `json:"date_of_birth"`
	Occupation  string `json:"occupation"`
	Phone       string `json:"phone"`
}

type BankDetails struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	Branch        string `json:"branch"`
	AccountHolder string `json:"account_holder"`
}

type PersonalDetails struct {
	DateOfBirth   string `json:"dob"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`
	Nationality   string `json:"nationality"`
	BloodGroup    string `json:"blood_group"`
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type EducationRecord struct {
	Degree        string `json:"degree" validate:"required"`
	Institution   string `json:"institution"`
	YearOfPassing string `json:"year_of_passing"`
	Grade         string `json:"grade"`
}

type Certification struct {
	Name      string `json:"name" validate:"required"`
	Authority string `json:"authority"`
	Year      string `json:"year"`
}

type ProjectRecord struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role"`
	Client      string `json:"client"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

type DocumentRecord struct {
	Name      string `json:"name" validate:"required"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
}
