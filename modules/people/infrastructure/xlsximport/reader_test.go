package xlsximport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/people-sync/modules/people/infrastructure/xlsximport"
	"github.com/iota-uz/people-sync/modules/people/mapping"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, value := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadRecords(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Employee Name", "Work Email", "Designation"},
		{"Asha Rao", "asha@corp.example", "Engineer"},
		{"Ravi Iyer", "ravi@corp.example", ""},
	})

	records, err := xlsximport.ReadRecords(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "Asha Rao", records[0]["Employee Name"])
	require.Equal(t, "asha@corp.example", records[0]["Work Email"])
	require.Equal(t, "Engineer", records[0]["Designation"])
	require.Equal(t, "Ravi Iyer", records[1]["Employee Name"])
}

func TestReadRecords_HeadersKeptVerbatim(t *testing.T) {
	// The reader must not clean headers; a trailing non-breaking space reaches
	// the alias resolver untouched.
	header := "Permanent Address\u00a0"
	buf := workbook(t, [][]any{
		{"Work Email", header},
		{"asha@corp.example", "12 Hill Rd"},
	})

	records, err := xlsximport.ReadRecords(buf)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, hasVerbatim := records[0][header]
	require.True(t, hasVerbatim)
	require.Equal(t, "12 Hill Rd", records[0][header])
}

func TestReadRecords_SkipsEmptyRowsAndBlankHeaders(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Employee Name", "", "Work Email"},
		{"Asha Rao", "ignored", "asha@corp.example"},
		{"", "", ""},
	})

	records, err := xlsximport.ReadRecords(buf)
	require.NoError(t, err)
	require.Len(t, records, 1, "fully empty rows are dropped")

	for key := range records[0] {
		if key == mapping.RawKey {
			continue
		}
		require.NotEmpty(t, strings.TrimSpace(key), "blank-header columns are dropped")
	}
}

func TestReadRecords_RawPassthrough(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Employee Name", "Work Email"},
		{"Asha Rao", "asha@corp.example"},
	})

	records, err := xlsximport.ReadRecords(buf)
	require.NoError(t, err)

	raw, ok := records[0][mapping.RawKey].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"Asha Rao", "asha@corp.example"}, raw)
}

func TestReadRecords_NoDataRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Employee Name", "Work Email"},
	})

	_, err := xlsximport.ReadRecords(buf)
	require.ErrorIs(t, err, xlsximport.ErrNoRows)
}

func TestReadRecords_NotAWorkbook(t *testing.T) {
	_, err := xlsximport.ReadRecords(strings.NewReader("definitely,not,xlsx"))
	require.Error(t, err)
}
