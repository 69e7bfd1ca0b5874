package controllers

import (
	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/pkg/constants"
	"github.com/iota-uz/people-sync/pkg/serrors"
)

// PatchDTO is the JSON shape of an edited submission. Absent fields stay nil
// and therefore never overwrite stored values.
type PatchDTO struct {
	FullName         *string `json:"full_name" validate:"omitempty,min=1"`
	OfficialEmail    *string `json:"official_email" validate:"omitempty,email"`
	PersonalEmail    *string `json:"personal_email" validate:"omitempty,email"`
	Phone            *string `json:"phone"`
	AlternatePhone   *string `json:"alternate_phone"`
	EmployeeID       *string `json:"employee_id"`
	JobTitle         *string `json:"job_title"`
	Department       *string `json:"department"`
	EmploymentType   *string `json:"employment_type"`
	ReportingManager *string `json:"reporting_manager"`
	JoiningDate      *string `json:"joining_date"`
	WorkLocation     *string `json:"work_location"`
	Gender           *string `json:"gender"`
	MaritalStatus    *string `json:"marital_status"`
	Nationality      *string `json:"nationality"`
	BloodGroup       *string `json:"blood_group"`

	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`

	BankName    *string `json:"bank_name"`
	DateOfBirth *string `json:"date_of_birth"`

	FamilyDetails      *[]profile.FamilyMember    `json:"family_details"`
	BankDetails        *profile.BankDetails       `json:"bank_details"`
	PersonalDetails    *profile.PersonalDetails   `json:"personal_details"`
	CurrentAddress     *profile.Address           `json:"current_address"`
	PermanentAddress   *profile.Address           `json:"permanent_address"`
	Education          *[]profile.EducationRecord `json:"education"`
	Certifications     *[]profile.Certification   `json:"certifications"`
	ProjectHistory     *[]profile.ProjectRecord   `json:"project_history"`
	DocumentsSubmitted *[]profile.DocumentRecord  `json:"documents_submitted"`
}

// Ok validates the submission, returning field-level messages.
func (d *PatchDTO) Ok() (serrors.ValidationErrors, bool) {
	if err := constants.Validate.Struct(d); err != nil {
		return serrors.ProcessValidatorErrors(err.(validator.ValidationErrors)), false
	}
	return nil, true
}

func (d *PatchDTO) ToPatch() *profile.Patch {
	return &profile.Patch{
		FullName:         d.FullName,
		OfficialEmail:    d.OfficialEmail,
		PersonalEmail:    d.PersonalEmail,
		Phone:            d.Phone,
		AlternatePhone:   d.AlternatePhone,
		EmployeeID:       d.EmployeeID,
		JobTitle:         d.JobTitle,
		Department:       d.Department,
		EmploymentType:   d.EmploymentType,
		ReportingManager: d.ReportingManager,
		JoiningDate:      d.JoiningDate,
		WorkLocation:     d.WorkLocation,
		Gender:           d.Gender,
		MaritalStatus:    d.MaritalStatus,
		Nationality:      d.Nationality,
		BloodGroup:       d.BloodGroup,

		EmergencyContactName:  d.EmergencyContactName,
		EmergencyContactPhone: d.EmergencyContactPhone,

		BankName:    d.BankName,
		DateOfBirth: d.DateOfBirth,

		FamilyDetails:      d.FamilyDetails,
		BankDetails:        d.BankDetails,
		PersonalDetails:    d.PersonalDetails,
		CurrentAddress:     d.CurrentAddress,
		PermanentAddress:   d.PermanentAddress,
		Education:          d.Education,
		Certifications:     d.Certifications,
		ProjectHistory:     d.ProjectHistory,
		DocumentsSubmitted: d.DocumentsSubmitted,
	}
}
