package persistence

import (
	"context"
	"errors"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/people-sync/pkg/composables"
)

var ErrEmployeeNotFound = gerrors.New("legacy employee not found")

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

// employeeTextColumns are the nullable text columns of legacy_employees, in
// insert/scan order. Nullable because the coalesce sync must distinguish
// "not supplied" from "explicitly empty".
var employeeTextColumns = []string{
	"full_name", "first_name", "last_name", "official_email", "personal_email",
	"phone", "alt_phone", "employee_number", "designation", "department", "employment_type",
	"grade", "reporting_to", "work_location", "date_of_joining", "date_of_birth", "gender",
	"marital_status", "blood_group", "nationality", "present_address", "permanent_address",
	"city", "state", "postal_code", "country", "emergency_contact_name",
	"emergency_contact_phone", "emergency_contact_relation", "bank_name",
	"bank_account_number", "bank_ifsc", "pan_number", "aadhaar_number", "pf_number",
	"esi_number", "uan_number", "highest_qualification", "previous_employer",
	"total_experience", "skills", "notes",
}

var employeeColumns = "profile_id, " + strings.Join(employeeTextColumns, ", ") + ", updated_at"

var employeeSelectColumns = func() string {
	parts := make([]string, 0, len(employeeTextColumns)+2)
	parts = append(parts, "profile_id")
	for _, col := range employeeTextColumns {
		parts = append(parts, "COALESCE("+col+", '')")
	}
	parts = append(parts, "updated_at")
	return strings.Join(parts, ", ")
}()

func (g *PgEmployeeRepository) GetByProfile(ctx context.Context, profileID uuid.UUID) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	var e employee.Employee
	err = tx.QueryRow(ctx, `SELECT `+employeeSelectColumns+` FROM legacy_employees WHERE profile_id = $1`, pgUUID(profileID)).Scan(
		&e.ProfileID, &e.FullName, &e.FirstName, &e.LastName, &e.OfficialEmail, &e.PersonalEmail,
		&e.Phone, &e.AltPhone, &e.EmployeeNumber, &e.Designation, &e.Department, &e.EmploymentType,
		&e.Grade, &e.ReportingTo, &e.WorkLocation, &e.DateOfJoining, &e.DateOfBirth, &e.Gender,
		&e.MaritalStatus, &e.BloodGroup, &e.Nationality, &e.PresentAddress, &e.PermanentAddress,
		&e.City, &e.State, &e.PostalCode, &e.Country, &e.EmergencyContactName,
		&e.EmergencyContactPhone, &e.EmergencyContactRelation, &e.BankName,
		&e.BankAccountNumber, &e.BankIFSC, &e.PANNumber, &e.AadhaarNumber, &e.PFNumber,
		&e.ESINumber, &e.UANNumber, &e.HighestQualification, &e.PreviousEmployer,
		&e.TotalExperience, &e.Skills, &e.Notes, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return e, nil
}

// UpsertCoalesce is the single-record sync path: only the legacy fields with
// direct canonical counterparts, merged with COALESCE so absent fields keep
// their stored values.
func (g *PgEmployeeRepository) UpsertCoalesce(ctx context.Context, profileID uuid.UUID, patch *employee.Patch) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO legacy_employees (profile_id, full_name, phone, designation, department, personal_email,
	emergency_contact_name, emergency_contact_phone, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
ON CONFLICT (profile_id) DO UPDATE SET
	full_name = COALESCE(EXCLUDED.full_name, legacy_employees.full_name),
	phone = COALESCE(EXCLUDED.phone, legacy_employees.phone),
	designation = COALESCE(EXCLUDED.designation, legacy_employees.designation),
	department = COALESCE(EXCLUDED.department, legacy_employees.department),
	personal_email = COALESCE(EXCLUDED.personal_email, legacy_employees.personal_email),
	emergency_contact_name = COALESCE(EXCLUDED.emergency_contact_name, legacy_employees.emergency_contact_name),
	emergency_contact_phone = COALESCE(EXCLUDED.emergency_contact_phone, legacy_employees.emergency_contact_phone),
	updated_at = now()
`, pgUUID(profileID), patch.FullName, patch.Phone, patch.Designation, patch.Department,
		patch.PersonalEmail, patch.EmergencyContactName, patch.EmergencyContactPhone)
	if err != nil {
		return gerrors.Wrap(err, "failed to sync legacy employee")
	}
	return nil
}

// Replace is the batch path: the upload is the legacy table's authoritative
// refresh, so the row is deleted and reinserted from the matched columns.
func (g *PgEmployeeRepository) Replace(ctx context.Context, record employee.Employee) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM legacy_employees WHERE profile_id = $1`, pgUUID(record.ProfileID)); err != nil {
		return gerrors.Wrap(err, "failed to clear legacy employee")
	}

	_, err = tx.Exec(ctx, `
INSERT INTO legacy_employees (`+employeeColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31,
	$32, $33, $34, $35, $36, $37, $38, $39, $40, $41, $42, $43, now())
`,
		pgUUID(record.ProfileID), record.FullName, record.FirstName, record.LastName, record.OfficialEmail, record.PersonalEmail,
		record.Phone, record.AltPhone, record.EmployeeNumber, record.Designation, record.Department, record.EmploymentType,
		record.Grade, record.ReportingTo, record.WorkLocation, record.DateOfJoining, record.DateOfBirth, record.Gender,
		record.MaritalStatus, record.BloodGroup, record.Nationality, record.PresentAddress, record.PermanentAddress,
		record.City, record.State, record.PostalCode, record.Country, record.EmergencyContactName,
		record.EmergencyContactPhone, record.EmergencyContactRelation, record.BankName,
		record.BankAccountNumber, record.BankIFSC, record.PANNumber, record.AadhaarNumber, record.PFNumber,
		record.ESINumber, record.UANNumber, record.HighestQualification, record.PreviousEmployer,
		record.TotalExperience, record.Skills, record.Notes,
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to reinsert legacy employee")
	}
	return nil
}

func (g *PgEmployeeRepository) Delete(ctx context.Context, profileID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM legacy_employees WHERE profile_id = $1`, pgUUID(profileID))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
