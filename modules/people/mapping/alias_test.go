package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	cases := map[string]string{
		"Official Email":          "official_email",
		"  Official   Email  ":    "official_email",
		"Permanent Address\u00a0": "permanent_address",
		"\u00a0Phone":             "phone",
		"Emp ID.":                 "emp_id",
		"DOB":                     "dob",
		"email":                   "email",
		"   ":                     "",
	}
	for input, want := range cases {
		require.Equal(t, want, NormalizeLabel(input), "input %q", input)
	}
}

func TestResolve_ExactBeforeNormalized(t *testing.T) {
	bag := RawRecord{
		"Official_Email": "exact@corp.example",
		"official email": "normalized@corp.example",
	}

	value, ok := Resolve(bag, []string{"Official_Email", "official_email"})
	require.True(t, ok)
	require.Equal(t, "exact@corp.example", value)
}

func TestResolve_EarlierNormalizedBeatsLaterExact(t *testing.T) {
	// Candidate order outranks match kind: when the first candidate only
	// matches after normalization, a later candidate's exact hit must not
	// jump the queue.
	bag := RawRecord{
		"official  email": "earlier-normalized",
		"Email":           "later-exact",
	}

	value, ok := Resolve(bag, []string{"Official Email", "Email"})
	require.True(t, ok)
	require.Equal(t, "earlier-normalized", value)
}

func TestResolve_FirstCandidateWins(t *testing.T) {
	bag := RawRecord{
		"Work Email": "work@corp.example",
		"Email":      "generic@corp.example",
	}

	value, ok := Resolve(bag, scalarAliases[FieldOfficialEmail])
	require.True(t, ok)
	require.Equal(t, "work@corp.example", value)
}

func TestResolve_NBSPHeader(t *testing.T) {
	// A header with a trailing non-breaking space must resolve like its clean
	// form.
	bag := RawRecord{
		"Permanent Address\u00a0": "12 Hill Rd",
	}

	value, ok := Resolve(bag, []string{"Permanent_Address", "permanent_address", "Permanent Address"})
	require.True(t, ok)
	require.Equal(t, "12 Hill Rd", value)
}

func TestResolve_EmptyValueIsAbsent(t *testing.T) {
	bag := RawRecord{
		"Phone":  "   ",
		"Mobile": "555-0101",
	}

	value, ok := Resolve(bag, scalarAliases[FieldPhone])
	require.True(t, ok)
	require.Equal(t, "555-0101", value, "blank earlier candidate falls through")

	_, ok = Resolve(RawRecord{"Phone": ""}, scalarAliases[FieldPhone])
	require.False(t, ok)
}

func TestResolve_NearDuplicateCandidates(t *testing.T) {
	bag := RawRecord{"Date of Birth": "1990-01-02"}

	// "Date of Birth" and "date_of_birth" normalize identically; listing both
	// must neither error nor change the outcome.
	value, ok := Resolve(bag, []string{"Date_Of_Birth", "date_of_birth", "Date of Birth", "DOB"})
	require.True(t, ok)
	require.Equal(t, "1990-01-02", value)
}

func TestResolve_NumericCellValue(t *testing.T) {
	bag := RawRecord{"Employee ID": float64(4021)}

	value, ok := Resolve(bag, scalarAliases[FieldEmployeeID])
	require.True(t, ok)
	require.Equal(t, "4021", value)
}

func TestHeaders_ExcludesRawPassthrough(t *testing.T) {
	bag := RawRecord{
		"Name":  "Asha",
		"Email": "asha@corp.example",
		RawKey:  []string{"Asha", "asha@corp.example"},
	}

	require.Equal(t, []string{"Email", "Name"}, bag.Headers())
}

func TestValidateAliasTable(t *testing.T) {
	require.NoError(t, ValidateAliasTable())
}
