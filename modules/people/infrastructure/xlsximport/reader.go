package xlsximport

import (
	"io"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/people-sync/modules/people/mapping"
)

var (
	ErrNoSheets = gerrors.New("workbook has no sheets")
	ErrNoRows   = gerrors.New("sheet has no data rows")
)

// ReadRecords turns the first sheet of an .xlsx stream into raw records, one
// per data row. The first row supplies the headers exactly as typed; nothing
// is normalized here, that is the alias resolver's job.
func ReadRecords(r io.Reader) ([]mapping.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to open workbook")
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to read rows")
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	headers := rows[0]
	records := make([]mapping.RawRecord, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		record := toRecord(headers, cells)
		if record != nil {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return records, nil
}

// toRecord pairs header cells with row cells. Blank-header columns are
// dropped, rows with no values at all are skipped, and the untouched cell
// slice rides along for diagnostics.
func toRecord(headers, cells []string) mapping.RawRecord {
	record := make(mapping.RawRecord, len(headers)+1)
	hasValue := false
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		record[header] = value
		if strings.TrimSpace(value) != "" {
			hasValue = true
		}
	}
	if !hasValue {
		return nil
	}
	record[mapping.RawKey] = append([]string(nil), cells...)
	return record
}
