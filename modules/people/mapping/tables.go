package mapping

import (
	"fmt"
)

// Canonical profile field identifiers. The alias tables below are the single
// source of truth for which raw labels feed which canonical field; they are
// static configuration, never inferred from data.
const (
	FieldFullName         = "full_name"
	FieldOfficialEmail    = "official_email"
	FieldPersonalEmail    = "personal_email"
	FieldPhone            = "phone"
	FieldAlternatePhone   = "alternate_phone"
	FieldEmployeeID       = "employee_id"
	FieldJobTitle         = "job_title"
	FieldDepartment       = "department"
	FieldEmploymentType   = "employment_type"
	FieldReportingManager = "reporting_manager"
	FieldJoiningDate      = "joining_date"
	FieldWorkLocation     = "work_location"
	FieldGender           = "gender"
	FieldMaritalStatus    = "marital_status"
	FieldNationality      = "nationality"
	FieldBloodGroup       = "blood_group"

	FieldEmergencyContactName  = "emergency_contact_name"
	FieldEmergencyContactPhone = "emergency_contact_phone"

	FieldBankName    = "bank_name"
	FieldDateOfBirth = "date_of_birth"

	BlockFamilyDetails      = "family_details"
	BlockBankDetails        = "bank_details"
	BlockPersonalDetails    = "personal_details"
	BlockCurrentAddress     = "current_address"
	BlockPermanentAddress   = "permanent_address"
	BlockEducation          = "education"
	BlockCertifications     = "certifications"
	BlockProjectHistory     = "project_history"
	BlockPreviousEmployment = "previous_employment"
	BlockCurrentProject     = "current_project"
	BlockDocumentsSubmitted = "documents_submitted"
)

// scalarAliases lists, per canonical scalar field, the accepted raw labels in
// precedence order: document-extraction PascalCase keys first, then the
// snake_case form, then known human spreadsheet headers. Earlier entries win
// when a row carries several synonyms.
var scalarAliases = map[string][]string{
	FieldFullName:         {"Full_Name", "full_name", "Full Name", "Employee Name", "Name"},
	FieldOfficialEmail:    {"Official_Email", "official_email", "Official Email", "Work Email", "Company Email", "Email"},
	FieldPersonalEmail:    {"Personal_Email", "personal_email", "Personal Email", "Personal Email ID"},
	FieldPhone:            {"Phone_Number", "phone", "Phone", "Mobile", "Mobile Number", "Contact Number"},
	FieldAlternatePhone:   {"Alternate_Phone", "alternate_phone", "Alternate Phone", "Alt Phone"},
	FieldEmployeeID:       {"Employee_ID", "employee_id", "Employee ID", "Emp ID", "Employee Code"},
	FieldJobTitle:         {"Job_Title", "job_title", "Job Title", "Designation", "Title"},
	FieldDepartment:       {"Department", "department", "Dept"},
	FieldEmploymentType:   {"Employment_Type", "employment_type", "Employment Type", "Employee Type"},
	FieldReportingManager: {"Reporting_Manager", "reporting_manager", "Reporting Manager", "Reports To", "Manager"},
	FieldJoiningDate:      {"Date_Of_Joining", "joining_date", "Date of Joining", "Joining Date", "DOJ"},
	FieldWorkLocation:     {"Work_Location", "work_location", "Work Location", "Base Location"},
	FieldGender:           {"Gender", "gender"},
	FieldMaritalStatus:    {"Marital_Status", "marital_status", "Marital Status"},
	FieldNationality:      {"Nationality", "nationality"},
	FieldBloodGroup:       {"Blood_Group", "blood_group", "Blood Group"},

	FieldEmergencyContactName:  {"Emergency_Contact_Name", "emergency_contact_name", "Emergency Contact Name", "Emergency Contact"},
	FieldEmergencyContactPhone: {"Emergency_Contact_Phone", "emergency_contact_phone", "Emergency Contact Phone", "Emergency Contact Number"},

	FieldBankName:    {"Bank_Name", "bank_name", "Bank Name"},
	FieldDateOfBirth: {"Date_Of_Birth", "date_of_birth", "Date of Birth", "DOB"},
}

// blockAliases covers the structured sub-objects some upstream producers
// supply pre-shaped. The mapper only renames the container key. The
// non-breaking-space variants mirror headers observed in real uploads.
var blockAliases = map[string][]string{
	BlockFamilyDetails:      {"Family_Details", "family_details", "Family Details"},
	BlockBankDetails:        {"Bank_Details", "bank_details", "Bank Details"},
	BlockPersonalDetails:    {"Personal_Details", "personal_details", "Personal Details"},
	BlockCurrentAddress:     {"Current_Address", "current_address", "Current Address\u00a0", "Current Address"},
	BlockPermanentAddress:   {"Permanent_Address", "permanent_address", "Permanent Address\u00a0", "Permanent Address"},
	BlockEducation:          {"Education_Details", "education", "Education", "Academic Details"},
	BlockCertifications:     {"Certifications", "certifications", "Certification Details"},
	BlockProjectHistory:     {"Project_History", "project_history", "Project History"},
	BlockPreviousEmployment: {"Previous_Employment", "previous_employment", "Previous Employment"},
	BlockCurrentProject:     {"Current_Project", "current_project", "Current Project"},
	BlockDocumentsSubmitted: {"Documents_Submitted", "documents_submitted", "Documents Submitted"},
}

// legacyAliases maps legacy employee columns to their spreadsheet headers.
// This is a separate namespace from the canonical tables: batch import uses
// it to rebuild the legacy row verbatim from the upload.
var legacyAliases = map[string][]string{
	"full_name":       {"Full_Name", "full_name", "Full Name", "Employee Name", "Name"},
	"first_name":      {"First_Name", "first_name", "First Name"},
	"last_name":       {"Last_Name", "last_name", "Last Name"},
	"official_email":  {"Official_Email", "official_email", "Official Email", "Work Email", "Email"},
	"personal_email":  {"Personal_Email", "personal_email", "Personal Email"},
	"phone":           {"Phone_Number", "phone", "Phone", "Mobile", "Mobile Number"},
	"alt_phone":       {"Alternate_Phone", "alt_phone", "Alternate Phone"},
	"employee_number": {"Employee_ID", "employee_number", "Employee ID", "Emp ID", "Employee Code"},
	"designation":     {"Job_Title", "designation", "Designation", "Job Title"},
	"department":      {"Department", "department", "Dept"},
	"employment_type": {"Employment_Type", "employment_type", "Employment Type"},
	"grade":           {"Grade", "grade", "Band"},
	"reporting_to":    {"Reporting_Manager", "reporting_to", "Reporting Manager", "Reports To"},
	"work_location":   {"Work_Location", "work_location", "Work Location"},
	"date_of_joining": {"Date_Of_Joining", "date_of_joining", "Date of Joining", "DOJ"},
	"date_of_birth":   {"Date_Of_Birth", "date_of_birth", "Date of Birth", "DOB"},
	"gender":          {"Gender", "gender"},
	"marital_status":  {"Marital_Status", "marital_status", "Marital Status"},
	"blood_group":     {"Blood_Group", "blood_group", "Blood Group"},
	"nationality":     {"Nationality", "nationality"},

	"present_address":   {"Present_Address", "present_address", "Present Address", "Current Address\u00a0", "Current Address"},
	"permanent_address": {"Permanent_Address", "permanent_address", "Permanent Address\u00a0", "Permanent Address"},
	"city":              {"City", "city"},
	"state":             {"State", "state"},
	"postal_code":       {"Postal_Code", "postal_code", "Postal Code", "PIN Code", "Zip"},
	"country":           {"Country", "country"},

	"emergency_contact_name":     {"Emergency_Contact_Name", "emergency_contact_name", "Emergency Contact Name", "Emergency Contact"},
	"emergency_contact_phone":    {"Emergency_Contact_Phone", "emergency_contact_phone", "Emergency Contact Phone", "Emergency Contact Number"},
	"emergency_contact_relation": {"Emergency_Contact_Relation", "emergency_contact_relation", "Emergency Contact Relation"},

	"bank_name":           {"Bank_Name", "bank_name", "Bank Name"},
	"bank_account_number": {"Bank_Account_Number", "bank_account_number", "Bank Account Number", "Account Number"},
	"bank_ifsc":           {"Bank_IFSC", "bank_ifsc", "IFSC", "IFSC Code"},
	"pan_number":          {"PAN_Number", "pan_number", "PAN", "PAN Number"},
	"aadhaar_number":      {"Aadhaar_Number", "aadhaar_number", "Aadhaar", "Aadhaar Number"},
	"pf_number":           {"PF_Number", "pf_number", "PF Number"},
	"esi_number":          {"ESI_Number", "esi_number", "ESI Number"},
	"uan_number":          {"UAN_Number", "uan_number", "UAN", "UAN Number"},

	"highest_qualification": {"Highest_Qualification", "highest_qualification", "Highest Qualification", "Qualification"},
	"previous_employer":     {"Previous_Employer", "previous_employer", "Previous Employer", "Last Employer"},
	"total_experience":      {"Total_Experience", "total_experience", "Total Experience", "Experience"},
	"skills":                {"Skills", "skills", "Skill Set"},
	"notes":                 {"Notes", "notes", "Remarks"},
}

// ValidateAliasTable checks the canonical tables for internal consistency:
// no normalized raw label may feed two different canonical fields. Run once
// at construction; a failure is a programming error in the tables above.
func ValidateAliasTable() error {
	claimed := make(map[string]string)
	check := func(field string, aliases []string) error {
		for _, alias := range aliases {
			norm := NormalizeLabel(alias)
			if norm == "" {
				return fmt.Errorf("alias table: field %q has an empty alias %q", field, alias)
			}
			if owner, ok := claimed[norm]; ok && owner != field {
				return fmt.Errorf("alias table: label %q claimed by both %q and %q", alias, owner, field)
			}
			claimed[norm] = field
		}
		return nil
	}

	for field, aliases := range scalarAliases {
		if err := check(field, aliases); err != nil {
			return err
		}
	}
	for field, aliases := range blockAliases {
		if err := check(field, aliases); err != nil {
			return err
		}
	}
	return nil
}
