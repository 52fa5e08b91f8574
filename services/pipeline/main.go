package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/config"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/db"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/ingest"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pipeline",
		Short:         "IRVE charging point cleaning pipeline",
		Long:          `Reads the raw IRVE export, cleans and filters it, and writes the canonical table as CSV and Parquet (optionally Postgres).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var overrides flagOverrides
	overrides.register(rootCmd)

	rootCmd.AddCommand(createRunCmd(&overrides))
	rootCmd.AddCommand(createInspectCmd(&overrides))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
}

// flagOverrides are applied over the environment configuration.
type flagOverrides struct {
	input          string
	output         string
	keywords       string
	departmentRule string
	keepPostal     bool
	dryRun         bool
}

func (o *flagOverrides) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.input, "input", "", "raw export path or http(s) URL (IRVE_INPUT_PATH)")
	pf.StringVar(&o.output, "output", "", "output directory (IRVE_OUTPUT_DIR)")
	pf.StringVar(&o.keywords, "keywords", "", "keyword YAML file (IRVE_KEYWORDS_PATH)")
	pf.StringVar(&o.departmentRule, "department-rule", "", "naive or insee (IRVE_DEPARTMENT_RULE)")
	pf.BoolVar(&o.keepPostal, "keep-missing-postal", false, "keep rows without a postal code")
	pf.BoolVar(&o.dryRun, "dry-run", false, "clean and filter without writing outputs (DRY_RUN)")
}

func (o *flagOverrides) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath = o.input
	}
	if flags.Changed("output") {
		cfg.OutputDir = o.output
	}
	if flags.Changed("keywords") {
		cfg.KeywordsPath = o.keywords
	}
	if flags.Changed("department-rule") {
		rule, ok := irve.ParseDepartmentRule(o.departmentRule)
		if !ok {
			return cfg, fmt.Errorf("invalid --department-rule %q", o.departmentRule)
		}
		cfg.DepartmentRule = rule
	}
	if flags.Changed("keep-missing-postal") {
		cfg.DropMissingPostal = !o.keepPostal
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}

	return cfg, cfg.Validate()
}

func createRunCmd(o *flagOverrides) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Clean the raw export and persist the canonical table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func createInspectCmd(o *flagOverrides) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the resolved schema and derivation gaps without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			clean, report, _, err := ingest.Prepare(ctx, cfg, &http.Client{Timeout: cfg.RequestTimeout})
			if err != nil {
				return describe(err)
			}

			out := map[string]any{
				"report":  report,
				"missing": aggregate.MissingValues(clean),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout+30*time.Second)
	defer cancel()

	client := &http.Client{Timeout: cfg.RequestTimeout}

	var sink ingest.Sink
	if cfg.DatabaseURL != "" && !cfg.DryRun {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		s := db.NewSink(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = s
	} else if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set: writing files only")
	}

	res, err := ingest.Run(ctx, cfg, client, sink)
	log.Printf("run %s finished with status %s in %s (raw=%d clean=%d dropped_postal=%d removed_power=%d removed_geo=%d missing_coords=%d)",
		res.Run.ID, res.Run.Status, utils.Elapsed(start), res.Run.RawRows, res.Run.CleanRows,
		res.Run.DroppedPostal, res.Run.RemovedPower, res.Run.RemovedGeo, res.Run.MissingCoords)
	if err != nil {
		return describe(err)
	}
	return nil
}

// describe adds the failing stage and its progress to fatal errors.
func describe(err error) error {
	var stageErr *irve.StageError
	if errors.As(err, &stageErr) {
		return fmt.Errorf("stage %s failed after %d rows and %d columns: %w", stageErr.Stage, stageErr.Rows, stageErr.Columns, stageErr.Err)
	}
	return err
}
