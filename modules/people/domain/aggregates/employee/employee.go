package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee mirrors the legacy flat onboarding schema, keyed by the owning
// identity's profile. It is kept in sync with Profile on every merge; batch
// import refreshes it wholesale while single-record saves coalesce.
type Employee struct {
	ProfileID uuid.UUID

	FullName      string
	FirstName     string
	LastName      string
	OfficialEmail string
	PersonalEmail string
	Phone         string
	AltPhone      string

	EmployeeNumber string
	Designation    string
	Department     string
	EmploymentType string
	Grade          string
	ReportingTo    string
	WorkLocation   string
	DateOfJoining  string
	DateOfBirth    string
	Gender         string
	MaritalStatus  string
	BloodGroup     string
	Nationality    string

	PresentAddress   string
	PermanentAddress string
	City             string
	State            string
	PostalCode       string
	Country          string

	EmergencyContactName     string
	EmergencyContactPhone    string
	EmergencyContactRelation string

	BankName          string
	BankAccountNumber string
	BankIFSC          string
	PANNumber         string
	AadhaarNumber     string
	PFNumber          string
	ESINumber         string
	UANNumber         string

	HighestQualification string
	PreviousEmployer     string
	TotalExperience      string
	Skills               string
	Notes                string

	UpdatedAt time.Time
}

// Patch carries the legacy fields with direct canonical counterparts, used
// by the best-effort sync after a profile merge.
type Patch struct {
	FullName              *string
	Phone                 *string
	Designation           *string
	Department            *string
	PersonalEmail         *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

func (p *Patch) IsEmpty() bool {
	return *p == Patch{}
}
