package profile

// Patch is a partial canonical record produced from one raw source. A nil
// field means "not supplied"; merges leave the stored value untouched. It is
// never persisted as-is.
type Patch struct {
	FullName         *string
	OfficialEmail    *string
	PersonalEmail    *string
	Phone            *string
	AlternatePhone   *string
	EmployeeID       *string
	JobTitle         *string
	Department       *string
	EmploymentType   *string
	ReportingManager *string
	JoiningDate      *string
	WorkLocation     *string
	Gender           *string
	MaritalStatus    *string
	Nationality      *string
	BloodGroup       *string

	EmergencyContactName  *string
	EmergencyContactPhone *string

	BankName    *string
	DateOfBirth *string

	FamilyDetails      *[]FamilyMember
	BankDetails        *BankDetails
	PersonalDetails    *PersonalDetails
	CurrentAddress     *Address
	PermanentAddress   *Address
	Education          *[]EducationRecord
	Certifications     *[]Certification
	ProjectHistory     *[]ProjectRecord
	DocumentsSubmitted *[]DocumentRecord
}

// Email returns the best identity-resolving address carried by the patch.
func (p *Patch) Email() string {
	if p.OfficialEmail != nil && *p.OfficialEmail != "" {
		return *p.OfficialEmail
	}
	if p.PersonalEmail != nil && *p.PersonalEmail != "" {
		return *p.PersonalEmail
	}
	return ""
}

func (p *Patch) Name() string {
	if p.FullName != nil {
		return *p.FullName
	}
	return ""
}

func (p *Patch) IsEmpty() bool {
	return *p == Patch{}
}

func coalesce(next *string, current string) string {
	if next != nil {
		return *next
	}
	return current
}

// Apply merges the patch into an existing record with per-field coalesce
// semantics: a field present in the patch always wins, an absent field keeps
// the stored value. Blocks are replaced wholesale, never deep-merged.
func (p *Patch) Apply(existing Profile) Profile {
	out := existing

	out.FullName = coalesce(p.FullName, existing.FullName)
	out.OfficialEmail = coalesce(p.OfficialEmail, existing.OfficialEmail)
	out.PersonalEmail = coalesce(p.PersonalEmail, existing.PersonalEmail)
	out.Phone = coalesce(p.Phone, existing.Phone)
	out.AlternatePhone = coalesce(p.AlternatePhone, existing.AlternatePhone)
	out.EmployeeID = coalesce(p.EmployeeID, existing.EmployeeID)
	out.JobTitle = coalesce(p.JobTitle, existing.JobTitle)
	out.Department = coalesce(p.Department, existing.Department)
	out.EmploymentType = coalesce(p.EmploymentType, existing.EmploymentType)
	out.ReportingManager = coalesce(p.ReportingManager, existing.ReportingManager)
	out.JoiningDate = coalesce(p.JoiningDate, existing.JoiningDate)
	out.WorkLocation = coalesce(p.WorkLocation, existing.WorkLocation)
	out.Gender = coalesce(p.Gender, existing.Gender)
	out.MaritalStatus = coalesce(p.MaritalStatus, existing.MaritalStatus)
	out.Nationality = coalesce(p.Nationality, existing.Nationality)
	out.BloodGroup = coalesce(p.BloodGroup, existing.BloodGroup)
	out.EmergencyContactName = coalesce(p.EmergencyContactName, existing.EmergencyContactName)
	out.EmergencyContactPhone = coalesce(p.EmergencyContactPhone, existing.EmergencyContactPhone)
	out.BankName = coalesce(p.BankName, existing.BankName)
	out.DateOfBirth = coalesce(p.DateOfBirth, existing.DateOfBirth)

	if p.FamilyDetails != nil {
		out.FamilyDetails = *p.FamilyDetails
	}
	if p.BankDetails != nil {
		out.BankDetails = p.BankDetails
	}
	if p.PersonalDetails != nil {
		out.PersonalDetails = p.PersonalDetails
	}
	if p.CurrentAddress != nil {
		out.CurrentAddress = p.CurrentAddress
	}
	if p.PermanentAddress != nil {
		out.PermanentAddress = p.PermanentAddress
	}
	if p.Education != nil {
		out.Education = *p.Education
	}
	if p.Certifications != nil {
		out.Certifications = *p.Certifications
	}
	if p.ProjectHistory != nil {
		out.ProjectHistory = *p.ProjectHistory
	}
	if p.DocumentsSubmitted != nil {
		out.DocumentsSubmitted = *p.DocumentsSubmitted
	}

	return out
}
