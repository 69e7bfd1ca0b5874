package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/pkg/composables"
)

var ErrProfileNotFound = gerrors.New("profile not found")

type PgProfileRepository struct{}

func NewProfileRepository() profile.Repository {
	return &PgProfileRepository{}
}

const profileColumns = `
identity_id, full_name, official_email, personal_email, phone, alternate_phone,
employee_id, job_title, department, employment_type, reporting_manager,
joining_date, work_location, gender, marital_status, nationality, blood_group,
emergency_contact_name, emergency_contact_phone, bank_name, date_of_birth,
family_details, bank_details, personal_details, current_address,
permanent_address, education, certifications, project_history,
documents_submitted, created_at, updated_at`

// profileRow mirrors the profiles table with nullable scalars, in the shape
// pgx scans into before mapping to the domain record.
type profileRow struct {
	IdentityID       uuid.UUID
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

	FamilyDetails      []byte
	BankDetails        []byte
	PersonalDetails    []byte
	CurrentAddress     []byte
	PermanentAddress   []byte
	Education          []byte
	Certifications     []byte
	ProjectHistory     []byte
	DocumentsSubmitted []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

func scanProfileRow(row pgx.Row) (profileRow, error) {
	var r profileRow
	err := row.Scan(
		&r.IdentityID, &r.FullName, &r.OfficialEmail, &r.PersonalEmail, &r.Phone, &r.AlternatePhone,
		&r.EmployeeID, &r.JobTitle, &r.Department, &r.EmploymentType, &r.ReportingManager,
		&r.JoiningDate, &r.WorkLocation, &r.Gender, &r.MaritalStatus, &r.Nationality, &r.BloodGroup,
		&r.EmergencyContactName, &r.EmergencyContactPhone, &r.BankName, &r.DateOfBirth,
		&r.FamilyDetails, &r.BankDetails, &r.PersonalDetails, &r.CurrentAddress,
		&r.PermanentAddress, &r.Education, &r.Certifications, &r.ProjectHistory,
		&r.DocumentsSubmitted, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func toDomainProfile(r profileRow) (profile.Profile, error) {
	out := profile.Profile{
		IdentityID:       r.IdentityID,
		FullName:         deref(r.FullName),
		OfficialEmail:    deref(r.OfficialEmail),
		PersonalEmail:    deref(r.PersonalEmail),
		Phone:            deref(r.Phone),
		AlternatePhone:   deref(r.AlternatePhone),
		EmployeeID:       deref(r.EmployeeID),
		JobTitle:         deref(r.JobTitle),
		Department:       deref(r.Department),
		EmploymentType:   deref(r.EmploymentType),
		ReportingManager: deref(r.ReportingManager),
		JoiningDate:      deref(r.JoiningDate),
		WorkLocation:     deref(r.WorkLocation),
		Gender:           deref(r.Gender),
		MaritalStatus:    deref(r.MaritalStatus),
		Nationality:      deref(r.Nationality),
		BloodGroup:       deref(r.BloodGroup),

		EmergencyContactName:  deref(r.EmergencyContactName),
		EmergencyContactPhone: deref(r.EmergencyContactPhone),

		BankName:    deref(r.BankName),
		DateOfBirth: deref(r.DateOfBirth),

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if err := decodeJSONB(r.FamilyDetails, &out.FamilyDetails); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "family_details")
	}
	if err := decodeJSONB(r.BankDetails, &out.BankDetails); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "bank_details")
	}
	if err := decodeJSONB(r.PersonalDetails, &out.PersonalDetails); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "personal_details")
	}
	if err := decodeJSONB(r.CurrentAddress, &out.CurrentAddress); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "current_address")
	}
	if err := decodeJSONB(r.PermanentAddress, &out.PermanentAddress); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "permanent_address")
	}
	if err := decodeJSONB(r.Education, &out.Education); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "education")
	}
	if err := decodeJSONB(r.Certifications, &out.Certifications); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "certifications")
	}
	if err := decodeJSONB(r.ProjectHistory, &out.ProjectHistory); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "project_history")
	}
	if err := decodeJSONB(r.DocumentsSubmitted, &out.DocumentsSubmitted); err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "documents_submitted")
	}

	return out, nil
}

func (g *PgProfileRepository) GetByIdentity(ctx context.Context, identityID uuid.UUID) (profile.Profile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return profile.Profile{}, err
	}

	row, err := scanProfileRow(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE identity_id = $1`, pgUUID(identityID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, err
	}

	return toDomainProfile(row)
}

// Upsert applies the patch atomically: a missing row is inserted with the
// patch-supplied fields, an existing row is updated with per-field
// COALESCE(new, old) so absent fields stay untouched and supplied fields
// always win. Blocks are coalesced wholesale.
func (g *PgProfileRepository) Upsert(ctx context.Context, identityID uuid.UUID, patch *profile.Patch) (profile.Profile, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return profile.Profile{}, err
	}

	blocks := make([]any, 0, 9)
	for _, block := range []any{
		blockArg(patch.FamilyDetails),
		blockArg(patch.BankDetails),
		blockArg(patch.PersonalDetails),
		blockArg(patch.CurrentAddress),
		blockArg(patch.PermanentAddress),
		blockArg(patch.Education),
		blockArg(patch.Certifications),
		blockArg(patch.ProjectHistory),
		blockArg(patch.DocumentsSubmitted),
	} {
		encoded, err := jsonbOrNil(block)
		if err != nil {
			return profile.Profile{}, err
		}
		blocks = append(blocks, encoded)
	}

	args := []any{
		pgUUID(identityID),
		patch.FullName, patch.OfficialEmail, patch.PersonalEmail, patch.Phone, patch.AlternatePhone,
		patch.EmployeeID, patch.JobTitle, patch.Department, patch.EmploymentType, patch.ReportingManager,
		patch.JoiningDate, patch.WorkLocation, patch.Gender, patch.MaritalStatus, patch.Nationality, patch.BloodGroup,
		patch.EmergencyContactName, patch.EmergencyContactPhone, patch.BankName, patch.DateOfBirth,
	}
	args = append(args, blocks...)

	row, err := scanProfileRow(tx.QueryRow(ctx, `
INSERT INTO profiles (`+profileColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, now(), now())
ON CONFLICT (identity_id) DO UPDATE SET
	full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
	official_email = COALESCE(EXCLUDED.official_email, profiles.official_email),
	personal_email = COALESCE(EXCLUDED.personal_email, profiles.personal_email),
	phone = COALESCE(EXCLUDED.phone, profiles.phone),
	alternate_phone = COALESCE(EXCLUDED.alternate_phone, profiles.alternate_phone),
	employee_id = COALESCE(EXCLUDED.employee_id, profiles.employee_id),
	job_title = COALESCE(EXCLUDED.job_title, profiles.job_title),
	department = COALESCE(EXCLUDED.department, profiles.department),
	employment_type = COALESCE(EXCLUDED.employment_type, profiles.employment_type),
	reporting_manager = COALESCE(EXCLUDED.reporting_manager, profiles.reporting_manager),
	joining_date = COALESCE(EXCLUDED.joining_date, profiles.joining_date),
	work_location = COALESCE(EXCLUDED.work_location, profiles.work_location),
	gender = COALESCE(EXCLUDED.gender, profiles.gender),
	marital_status = COALESCE(EXCLUDED.marital_status, profiles.marital_status),
	nationality = COALESCE(EXCLUDED.nationality, profiles.nationality),
	blood_group = COALESCE(EXCLUDED.blood_group, profiles.blood_group),
	emergency_contact_name = COALESCE(EXCLUDED.emergency_contact_name, profiles.emergency_contact_name),
	emergency_contact_phone = COALESCE(EXCLUDED.emergency_contact_phone, profiles.emergency_contact_phone),
	bank_name = COALESCE(EXCLUDED.bank_name, profiles.bank_name),
	date_of_birth = COALESCE(EXCLUDED.date_of_birth, profiles.date_of_birth),
	family_details = COALESCE(EXCLUDED.family_details, profiles.family_details),
	bank_details = COALESCE(EXCLUDED.bank_details, profiles.bank_details),
	personal_details = COALESCE(EXCLUDED.personal_details, profiles.personal_details),
	current_address = COALESCE(EXCLUDED.current_address, profiles.current_address),
	permanent_address = COALESCE(EXCLUDED.permanent_address, profiles.permanent_address),
	education = COALESCE(EXCLUDED.education, profiles.education),
	certifications = COALESCE(EXCLUDED.certifications, profiles.certifications),
	project_history = COALESCE(EXCLUDED.project_history, profiles.project_history),
	documents_submitted = COALESCE(EXCLUDED.documents_submitted, profiles.documents_submitted),
	updated_at = now()
RETURNING `+profileColumns, args...))
	if err != nil {
		return profile.Profile{}, gerrors.Wrap(err, "failed to upsert profile")
	}

	if err := g.refreshChildren(ctx, identityID, patch); err != nil {
		return profile.Profile{}, err
	}

	return toDomainProfile(row)
}

// refreshChildren rebuilds the child tables backing the family and education
// blocks, delete-then-reinsert keyed by identity, only when the block was
// supplied.
func (g *PgProfileRepository) refreshChildren(ctx context.Context, identityID uuid.UUID, patch *profile.Patch) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if patch.FamilyDetails != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM family_members WHERE identity_id = $1`, pgUUID(identityID)); err != nil {
			return gerrors.Wrap(err, "failed to clear family members")
		}
		for _, member := range *patch.FamilyDetails {
			if _, err := tx.Exec(ctx, `
INSERT INTO family_members (identity_id, name, relation, date_of_birth, occupation, phone)
VALUES ($1, $2, $3, $4, $5, $6)
`, pgUUID(identityID), member.Name, member.Relation, member.DateOfBirth, member.Occupation, member.Phone); err != nil {
				return gerrors.Wrap(err, "failed to insert family member")
			}
		}
	}

	if patch.Education != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM academic_records WHERE identity_id = $1`, pgUUID(identityID)); err != nil {
			return gerrors.Wrap(err, "failed to clear academic records")
		}
		for _, record := range *patch.Education {
			if _, err := tx.Exec(ctx, `
INSERT INTO academic_records (identity_id, degree, institution, year_of_passing, grade)
VALUES ($1, $2, $3, $4, $5)
`, pgUUID(identityID), record.Degree, record.Institution, record.YearOfPassing, record.Grade); err != nil {
				return gerrors.Wrap(err, "failed to insert academic record")
			}
		}
	}

	return nil
}

func (g *PgProfileRepository) Delete(ctx context.Context, identityID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM family_members WHERE identity_id = $1`, pgUUID(identityID)); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM academic_records WHERE identity_id = $1`, pgUUID(identityID)); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM profiles WHERE identity_id = $1`, pgUUID(identityID))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// blockArg erases the typed-pointer nil so jsonbOrNil sees a real nil for
// absent blocks.
func blockArg[T any](block *T) any {
	if block == nil {
		return nil
	}
	return block
}
