package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/people-sync/modules/people/infrastructure/persistence"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/xlsximport"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/modules/people/services"
	"github.com/iota-uz/people-sync/pkg/composables"
	"github.com/iota-uz/people-sync/pkg/configuration"
	"github.com/iota-uz/people-sync/pkg/eventbus"
)

type importOptions struct {
	file      string
	matchOnly bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an .xlsx of people rows into the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Path to the .xlsx file to import (required)")
	cmd.Flags().BoolVar(&opts.matchOnly, "match-only", false, "Fail rows whose email has no existing identity instead of creating one")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	f, err := os.Open(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("open %s: %w", opts.file, err))
	}
	defer func() {
		_ = f.Close()
	}()

	records, err := xlsximport.ReadRecords(f)
	if err != nil {
		return withCode(exitValidation, fmt.Errorf("read workbook: %w", err))
	}
	if conf.Import.MaxRows > 0 && len(records) > conf.Import.MaxRows {
		return withCode(exitValidation, fmt.Errorf("workbook has %d rows, limit is %d", len(records), conf.Import.MaxRows))
	}

	poolCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	pool, err := pgxpool.New(poolCtx, conf.Database.Opts)
	cancel()
	if err != nil {
		return withCode(exitDB, fmt.Errorf("create database pool: %w", err))
	}
	defer pool.Close()

	mapper, err := mapping.NewMapper()
	if err != nil {
		return withCode(exitValidation, fmt.Errorf("alias tables are inconsistent: %w", err))
	}

	publisher := eventbus.NewEventPublisher(logger)
	services.RegisterAuditSubscriber(publisher, logger)

	profileService := services.NewProfileService(
		persistence.NewIdentityRepository(),
		persistence.NewProfileRepository(),
		persistence.NewEmployeeRepository(),
		mapper,
		publisher,
	)
	importService := services.NewImportService(profileService, persistence.NewEmployeeRepository(), mapper)

	runCtx := composables.WithPool(ctx, pool)
	runCtx = composables.WithLogger(runCtx, logger.WithField("entrypoint", "import"))
	if conf.Import.BatchTimeout > 0 {
		var cancelBatch context.CancelFunc
		runCtx, cancelBatch = context.WithTimeout(runCtx, conf.Import.BatchTimeout)
		defer cancelBatch()
	}

	result := importService.ImportBatch(runCtx, records, !opts.matchOnly)

	fmt.Printf("total: %d, successful: %d, failed: %d\n", result.Total, result.Successful, result.Failed)
	for _, row := range result.Results {
		if row.Success {
			continue
		}
		fmt.Printf("row %d failed: %s\n", row.Row, row.Error)
	}
	if result.Failed > 0 {
		return withCode(exitValidation, fmt.Errorf("%d of %d rows failed", result.Failed, result.Total))
	}
	return nil
}
