package main

import (
	"context"
	"fmt"
	"os"
	"io"
	"path/filepath"
	"sort"

	"github.com/railzwaylabs/riskscore/internal/config"
	"github.com/railzwaylabs/riskscore/internal/customer"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/railzwaylabs/riskscore/internal/ingest"
	"github.com/railzwaylabs/riskscore/internal/invoice"
	"github.com/railzwaylabs/riskscore/internal/migration"
	"github.com/railzwaylabs/riskscore/internal/model"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/scoring"
	scoringdomain "github.com/railzwaylabs/riskscore/internal/scoring/domain"
	"github.com/railzwaylabs/riskscore/internal/seed"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.Context(), func(context.Context) error {
				version, err := migration.LatestMigrationVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
				return nil
			}, migration.Module)
		},
	}
}

func ingestOptions(svc **ingest.Service) fx.Option {
	return fx.Options(
		migration.Module,
		customer.Module,
		invoice.Module,
		ingest.Module,
		fx.Populate(svc),
	)
}

func newImportCmd() *cobra.Command {
	var customersPath, invoicesPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace stored customers and invoices with the given CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			customersFile, err := os.Open(customersPath)
			if err != nil {
				return err
			}
			defer customersFile.Close()
			invoicesFile, err := os.Open(invoicesPath)
			if err != nil {
				return err
			}
			defer invoicesFile.Close()

			var svc *ingest.Service
			return runOneShot(cmd.Context(), func(ctx context.Context) error {
				res, err := svc.ImportCSV(ctx, customersFile, invoicesFile)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}, ingestOptions(&svc))
		},
	}
	cmd.Flags().StringVar(&customersPath, "customers", "customers.csv", "customer roster CSV")
	cmd.Flags().StringVar(&invoicesPath, "invoices", "invoices.csv", "invoice history CSV")
	return cmd
}

func newSeedCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	var outDir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic customer and invoice dataset",
		Long:  "Generate a synthetic dataset. With --out the CSV files are written to that directory; otherwise the dataset replaces stored data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := seed.Generate(opts)

			if outDir != "" {
				return writeSeedCSV(outDir, data)
			}

			var svc *ingest.Service
			return runOneShot(cmd.Context(), func(ctx context.Context) error {
				res, err := svc.Replace(ctx, data.Customers, data.Invoices)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}, ingestOptions(&svc))
		},
	}
	cmd.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "number of customers")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "generator seed")
	cmd.Flags().Float64Var(&opts.ZeroInvoiceRate, "zero-invoice-rate", opts.ZeroInvoiceRate, "share of customers without invoices")
	cmd.Flags().IntVar(&opts.OrphanInvoices, "orphans", opts.OrphanInvoices, "invoices referencing unknown customers")
	cmd.Flags().StringVar(&outDir, "out", "", "write customers.csv and invoices.csv to this directory")
	return cmd
}

func writeSeedCSV(dir string, data seed.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cf, err := os.Create(filepath.Join(dir, "customers.csv"))
	if err != nil {
		return err
	}
	defer cf.Close()
	if err := ingest.WriteCustomers(cf, data.Customers); err != nil {
		return err
	}

	inf, err := os.Create(filepath.Join(dir, "invoices.csv"))
	if err != nil {
		return err
	}
	defer inf.Close()
	if err := ingest.WriteInvoices(inf, data.Invoices); err != nil {
		return err
	}
	return inf.Sync()
}

func newFeaturesCmd() *cobra.Command {
	var outPath string
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Rebuild the per-customer feature table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc featuredomain.Service
			return runOneShot(cmd.Context(), func(ctx context.Context) error {
				if !skipBuild {
					res, err := svc.Build(ctx)
					if err != nil {
						return err
					}
					if err := printJSON(cmd.OutOrStdout(), res); err != nil {
						return err
					}
				}
				if outPath == "" {
					return nil
				}

				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				n, err := svc.Export(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, outPath)
				return f.Sync()
			}, featureOptions(), fx.Populate(&svc))
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "export the feature table as CSV")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "export the stored table without rebuilding")
	return cmd
}

func newTrainCmd() *cobra.Command {
	var outDir string
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Rebuild features and train a new risk model",
		RunE: func(cmd *cobra.Command, args []string) error {
			var features featuredomain.Service
			var models modeldomain.Service

			opts := []fx.Option{featureOptions(), model.Module, fx.Populate(&features, &models)}
			if outDir != "" {
				opts = append(opts, fx.Decorate(func(cfg config.Config) config.Config {
					cfg.Artifact.Dir = outDir
					return cfg
				}))
			}

			return runOneShot(cmd.Context(), func(ctx context.Context) error {
				if !skipBuild {
					if _, err := features.Build(ctx); err != nil {
						return err
					}
				}
				res, err := models.Train(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "run %s (%d train / %d test)\n", res.RunID, res.TrainSamples, res.TestSamples)
				fmt.Fprintf(out, "artifacts: %s\n", res.ArtifactDir)
				printExcluded(out, res.Excluded)
				fmt.Fprintln(out)
				fmt.Fprint(out, res.Report.String())
				return nil
			}, opts...)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "artifact root directory (overrides ARTIFACT_DIR)")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "train on the stored feature table without rebuilding")
	return cmd
}

// printExcluded writes exclusion counts sorted by reason.
func printExcluded(w io.Writer, excluded map[string]int) {
	reasons := make([]string, 0, len(excluded))
	for reason := range excluded {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "excluded %s: %d\n", reason, excluded[reason])
	}
}

func newPredictCmd() *cobra.Command {
	var req scoringdomain.PredictRequest

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score customers with the current model and print JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc scoringdomain.Service
			return runOneShot(cmd.Context(), func(ctx context.Context) error {
				resp, err := svc.Predict(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
				featureOptions(),
				model.Module,
				model.ServingModule,
				scoring.Module,
				fx.Populate(&svc),
			)
		},
	}
	cmd.Flags().StringSliceVar(&req.CustomerIDs, "customer-id", nil, "customer IDs to score")
	cmd.Flags().StringSliceVar(&req.Industries, "industry", nil, "restrict to industries")
	cmd.Flags().StringSliceVar(&req.Regions, "region", nil, "restrict to regions")
	return cmd
}
