package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/pkg/composables"
)

// RowResult is one batch row's outcome. Results keep the input order and
// there is exactly one per submitted row.
type RowResult struct {
	Row     int    `json:"row"`
	Success bool   `json:"success"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BatchResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Results    []RowResult `json:"results"`
}

// ImportService runs bulk spreadsheet imports. Rows are processed
// sequentially and in isolation: one bad row never stops the batch.
type ImportService struct {
	profiles  *ProfileService
	employees employee.Repository
	mapper    *mapping.Mapper
	inTx      TxRunner
}

func NewImportService(profiles *ProfileService, employees employee.Repository, mapper *mapping.Mapper) *ImportService {
	return &ImportService{
		profiles:  profiles,
		employees: employees,
		mapper:    mapper,
		inTx:      composables.InTx,
	}
}

// NewImportServiceWithTx is the test constructor taking an explicit runner.
func NewImportServiceWithTx(profiles *ProfileService, employees employee.Repository, mapper *mapping.Mapper, run TxRunner) *ImportService {
	return &ImportService{profiles: profiles, employees: employees, mapper: mapper, inTx: run}
}

// ImportBatch merges every row and refreshes its legacy employee record.
// The caller's privilege decides whether rows with unknown emails create
// identities or fail. Once the context deadline passes, remaining rows are
// recorded as cancelled without touching storage.
func (s *ImportService) ImportBatch(ctx context.Context, rows []mapping.RawRecord, privileged bool) *BatchResult {
	results := make([]RowResult, 0, len(rows))

	cancelled := false
	for i, row := range rows {
		if cancelled || ctx.Err() != nil {
			cancelled = true
			results = append(results, RowResult{
				Row:   i + 1,
				Error: "cancelled before processing",
			})
			importRowsTotal.WithLabelValues("cancelled").Inc()
			continue
		}

		result := s.importRow(ctx, i+1, row, privileged)
		if result.Success {
			importRowsTotal.WithLabelValues("success").Inc()
		} else {
			importRowsTotal.WithLabelValues("failed").Inc()
		}
		results = append(results, result)
	}

	return summarize(results)
}

func (s *ImportService) importRow(ctx context.Context, rowNum int, bag mapping.RawRecord, privileged bool) (result RowResult) {
	result = RowResult{Row: rowNum}

	// One row's panic is that row's failure, nothing more.
	defer func() {
		if r := recover(); r != nil {
			composables.UseLogger(ctx).WithField("row", rowNum).Errorf("import row panicked: %v", r)
			result.Success = false
			result.Message = ""
			result.Error = fmt.Sprintf("internal failure: %v", r)
		}
	}()

	patch, err := s.mapper.MapRaw(bag)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	email := patch.Email()
	if email == "" {
		// Listing the actual headers turns a support ticket into a
		// self-service fix for whoever owns the spreadsheet.
		result.Error = fmt.Sprintf(
			"no email column matched; row headers: %s",
			strings.Join(bag.Headers(), ", "),
		)
		return result
	}
	result.Email = email
	result.Name = patch.Name()

	_, ident, err := s.profiles.Merge(ctx, patch, nil, privileged, SourceImport)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	// The upload is authoritative for the legacy table: the row is rebuilt
	// from whatever legacy columns matched, not coalesced.
	record := s.mapper.MapLegacyRow(bag)
	record.ProfileID = ident.ID()
	err = s.inTx(ctx, func(txCtx context.Context) error {
		return s.employees.Replace(txCtx, record)
	})
	if err != nil {
		legacySyncFailures.Inc()
		composables.UseLogger(ctx).WithError(err).WithFields(logrus.Fields{
			"row":           rowNum,
			"profile_id":    ident.ID(),
			"partial_write": true,
		}).Warn("legacy employee refresh failed after profile merge")
		result.Success = true
		result.Message = "imported; legacy record refresh failed"
		return result
	}

	result.Success = true
	result.Message = "imported"
	return result
}

// summarize derives the counters from the entries themselves so the summary
// can never disagree with the per-row outcomes.
func summarize(results []RowResult) *BatchResult {
	out := &BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			out.Successful++
		} else {
			out.Failed++
		}
	}
	return out
}
