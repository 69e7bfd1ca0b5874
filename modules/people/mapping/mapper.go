package mapping

import (
	"encoding/json"

	gerrors "github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/pkg/constants"
)

// Mapper turns raw records into canonical profile patches using the static
// alias tables. Construction fails if the tables are internally inconsistent.
type Mapper struct {
	validate *validator.Validate
}

func NewMapper() (*Mapper, error) {
	if err := ValidateAliasTable(); err != nil {
		return nil, err
	}
	return &Mapper{validate: constants.Validate}, nil
}

// MapRaw builds a Patch from a raw key/value bag. Fields with no resolvable
// source value are omitted entirely, which is what makes the patch safe to
// merge non-destructively downstream.
func (m *Mapper) MapRaw(bag RawRecord) (*profile.Patch, error) {
	patch := &profile.Patch{}

	assign := func(field string, dst **string) {
		if value, ok := Resolve(bag, scalarAliases[field]); ok {
			*dst = &value
		}
	}

	assign(FieldFullName, &patch.FullName)
	assign(FieldOfficialEmail, &patch.OfficialEmail)
	assign(FieldPersonalEmail, &patch.PersonalEmail)
	assign(FieldPhone, &patch.Phone)
	assign(FieldAlternatePhone, &patch.AlternatePhone)
	assign(FieldEmployeeID, &patch.EmployeeID)
	assign(FieldJobTitle, &patch.JobTitle)
	assign(FieldDepartment, &patch.Department)
	assign(FieldEmploymentType, &patch.EmploymentType)
	assign(FieldReportingManager, &patch.ReportingManager)
	assign(FieldJoiningDate, &patch.JoiningDate)
	assign(FieldWorkLocation, &patch.WorkLocation)
	assign(FieldGender, &patch.Gender)
	assign(FieldMaritalStatus, &patch.MaritalStatus)
	assign(FieldNationality, &patch.Nationality)
	assign(FieldBloodGroup, &patch.BloodGroup)
	assign(FieldEmergencyContactName, &patch.EmergencyContactName)
	assign(FieldEmergencyContactPhone, &patch.EmergencyContactPhone)
	assign(FieldBankName, &patch.BankName)
	assign(FieldDateOfBirth, &patch.DateOfBirth)

	if err := m.mapBlocks(bag, patch); err != nil {
		return nil, err
	}
	if err := m.mapProjectHistory(bag, patch); err != nil {
		return nil, err
	}

	// Legacy-duplicate scalars are also derivable from their blocks when the
	// flat field was not supplied directly.
	if patch.BankName == nil && patch.BankDetails != nil && patch.BankDetails.BankName != "" {
		patch.BankName = &patch.BankDetails.BankName
	}
	if patch.DateOfBirth == nil && patch.PersonalDetails != nil && patch.PersonalDetails.DateOfBirth != "" {
		patch.DateOfBirth = &patch.PersonalDetails.DateOfBirth
	}

	return patch, nil
}

func (m *Mapper) mapBlocks(bag RawRecord, patch *profile.Patch) error {
	if raw, ok := resolveAny(bag, blockAliases[BlockFamilyDetails]); ok {
		block, err := decodeSliceBlock[profile.FamilyMember](m.validate, BlockFamilyDetails, raw)
		if err != nil {
			return err
		}
		patch.FamilyDetails = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockBankDetails]); ok {
		block, err := decodeBlock[profile.BankDetails](m.validate, BlockBankDetails, raw)
		if err != nil {
			return err
		}
		patch.BankDetails = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockPersonalDetails]); ok {
		block, err := decodeBlock[profile.PersonalDetails](m.validate, BlockPersonalDetails, raw)
		if err != nil {
			return err
		}
		patch.PersonalDetails = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockCurrentAddress]); ok {
		block, err := decodeAddress(raw)
		if err != nil {
			return gerrors.Wrap(err, BlockCurrentAddress)
		}
		patch.CurrentAddress = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockPermanentAddress]); ok {
		block, err := decodeAddress(raw)
		if err != nil {
			return gerrors.Wrap(err, BlockPermanentAddress)
		}
		patch.PermanentAddress = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockEducation]); ok {
		block, err := decodeSliceBlock[profile.EducationRecord](m.validate, BlockEducation, raw)
		if err != nil {
			return err
		}
		patch.Education = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockCertifications]); ok {
		block, err := decodeSliceBlock[profile.Certification](m.validate, BlockCertifications, raw)
		if err != nil {
			return err
		}
		patch.Certifications = block
	}
	if raw, ok := resolveAny(bag, blockAliases[BlockDocumentsSubmitted]); ok {
		block, err := decodeSliceBlock[profile.DocumentRecord](m.validate, BlockDocumentsSubmitted, raw)
		if err != nil {
			return err
		}
		patch.DocumentsSubmitted = block
	}
	return nil
}

// previousEmployment is the single-record legacy shape some sources supply
// instead of a project history list.
type previousEmployment struct {
	Employer    string `json:"employer"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	Designation string `json:"designation"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type currentProject struct {
	Name        string `json:"name"`
	Project     string `json:"project"`
	Role        string `json:"role"`
	Client      string `json:"client"`
	StartDate   string `json:"start_date"`
	Description string `json:"description"`
}

// mapProjectHistory applies the fan-out rule: an explicit history list wins,
// then a previous-employment record, then the current project reshaped into
// a one-element list. First match wins, the rest are ignored.
func (m *Mapper) mapProjectHistory(bag RawRecord, patch *profile.Patch) error {
	if raw, ok := resolveAny(bag, blockAliases[BlockProjectHistory]); ok {
		block, err := decodeSliceBlock[profile.ProjectRecord](m.validate, BlockProjectHistory, raw)
		if err != nil {
			return err
		}
		patch.ProjectHistory = block
		return nil
	}

	if raw, ok := resolveAny(bag, blockAliases[BlockPreviousEmployment]); ok {
		var prev previousEmployment
		if err := reencode(raw, &prev); err != nil {
			return gerrors.Wrap(err, BlockPreviousEmployment)
		}
		name := prev.Employer
		if name == "" {
			name = prev.Company
		}
		role := prev.Role
		if role == "" {
			role = prev.Designation
		}
		if name != "" {
			patch.ProjectHistory = &[]profile.ProjectRecord{{
				Name:      name,
				Role:      role,
				StartDate: prev.StartDate,
				EndDate:   prev.EndDate,
			}}
		}
		return nil
	}

	if raw, ok := resolveAny(bag, blockAliases[BlockCurrentProject]); ok {
		var cur currentProject
		if err := reencode(raw, &cur); err != nil {
			return gerrors.Wrap(err, BlockCurrentProject)
		}
		name := cur.Name
		if name == "" {
			name = cur.Project
		}
		if name != "" {
			patch.ProjectHistory = &[]profile.ProjectRecord{{
				Name:        name,
				Role:        cur.Role,
				Client:      cur.Client,
				StartDate:   cur.StartDate,
				Description: cur.Description,
			}}
		}
		return nil
	}

	return nil
}

// MapLegacyRow matches a raw batch row against the legacy alias table,
// producing the flat employee record used for the delete-then-reinsert
// refresh. Unmatched columns stay zero-valued.
func (m *Mapper) MapLegacyRow(bag RawRecord) employee.Employee {
	get := func(column string) string {
		value, _ := Resolve(bag, legacyAliases[column])
		return value
	}

	return employee.Employee{
		FullName:      get("full_name"),
		FirstName:     get("first_name"),
		LastName:      get("last_name"),
		OfficialEmail: get("official_email"),
		PersonalEmail: get("personal_email"),
		Phone:         get("phone"),
		AltPhone:      get("alt_phone"),

		EmployeeNumber: get("employee_number"),
		Designation:    get("designation"),
		Department:     get("department"),
		EmploymentType: get("employment_type"),
		Grade:          get("grade"),
		ReportingTo:    get("reporting_to"),
		WorkLocation:   get("work_location"),
		DateOfJoining:  get("date_of_joining"),
		DateOfBirth:    get("date_of_birth"),
		Gender:         get("gender"),
		MaritalStatus:  get("marital_status"),
		BloodGroup:     get("blood_group"),
		Nationality:    get("nationality"),

		PresentAddress:   get("present_address"),
		PermanentAddress: get("permanent_address"),
		City:             get("city"),
		State:            get("state"),
		PostalCode:       get("postal_code"),
		Country:          get("country"),

		EmergencyContactName:     get("emergency_contact_name"),
		EmergencyContactPhone:    get("emergency_contact_phone"),
		EmergencyContactRelation: get("emergency_contact_relation"),

		BankName:          get("bank_name"),
		BankAccountNumber: get("bank_account_number"),
		BankIFSC:          get("bank_ifsc"),
		PANNumber:         get("pan_number"),
		AadhaarNumber:     get("aadhaar_number"),
		PFNumber:          get("pf_number"),
		ESINumber:         get("esi_number"),
		UANNumber:         get("uan_number"),

		HighestQualification: get("highest_qualification"),
		PreviousEmployer:     get("previous_employer"),
		TotalExperience:      get("total_experience"),
		Skills:               get("skills"),
		Notes:                get("notes"),
	}
}

// LegacyPatch derives the coalesce-style legacy sync patch from a canonical
// patch: only the fields with direct legacy counterparts.
func LegacyPatch(patch *profile.Patch) *employee.Patch {
	return &employee.Patch{
		FullName:              patch.FullName,
		Phone:                 patch.Phone,
		Designation:           patch.JobTitle,
		Department:            patch.Department,
		PersonalEmail:         patch.PersonalEmail,
		EmergencyContactName:  patch.EmergencyContactName,
		EmergencyContactPhone: patch.EmergencyContactPhone,
	}
}

// reencode round-trips an already-decoded JSON value into a typed block.
func reencode(raw any, dst any) error {
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dst)
}

func decodeBlock[T any](validate *validator.Validate, name string, raw any) (*T, error) {
	var block T
	if err := reencode(raw, &block); err != nil {
		return nil, gerrors.Wrapf(err, "decode %s", name)
	}
	if err := validate.Struct(&block); err != nil {
		return nil, gerrors.Wrapf(err, "validate %s", name)
	}
	return &block, nil
}

func decodeAddress(raw any) (*profile.Address, error) {
	// Spreadsheet sources supply addresses as a single free-form string;
	// structured producers supply the full object.
	if s, ok := raw.(string); ok {
		return &profile.Address{Line1: s}, nil
	}
	var block profile.Address
	if err := reencode(raw, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

func decodeSliceBlock[T any](validate *validator.Validate, name string, raw any) (*[]T, error) {
	var block []T
	if err := reencode(raw, &block); err != nil {
		return nil, gerrors.Wrapf(err, "decode %s", name)
	}
	for i := range block {
		if err := validate.Struct(&block[i]); err != nil {
			return nil, gerrors.Wrapf(err, "validate %s[%d]", name, i)
		}
	}
	return &block, nil
}
