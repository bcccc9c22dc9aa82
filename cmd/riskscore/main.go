package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/riskscore/internal/clock"
	"github.com/railzwaylabs/riskscore/internal/config"
	"github.com/railzwaylabs/riskscore/internal/customer"
	"github.com/railzwaylabs/riskscore/internal/feature"
	"github.com/railzwaylabs/riskscore/internal/invoice"
	"github.com/railzwaylabs/riskscore/internal/migration"
	"github.com/railzwaylabs/riskscore/internal/model"
	"github.com/railzwaylabs/riskscore/internal/observability"
	"github.com/railzwaylabs/riskscore/internal/redis"
	"github.com/railzwaylabs/riskscore/internal/scoring"
	"github.com/railzwaylabs/riskscore/internal/server"
	"github.com/railzwaylabs/riskscore/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	startTimeout = 2 * time.Minute
	stopTimeout  = 30 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "riskscore",
		Short:        "Customer payment risk pipeline",
		Version:      readVersionFromEnv(),
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newImportCmd(),
		newSeedCmd(),
		newFeaturesCmd(),
		newTrainCmd(),
		newPredictCmd(),
		newServeCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions from the current model over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreOptions(),
				featureOptions(),
				model.Module,
				model.ServingModule,
				scoring.Module,
				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func coreOptions() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
}

// featureOptions wires storage through the feature service. Migrations run
// first so a fresh sqlite file is usable without a separate migrate step.
func featureOptions() fx.Option {
	return fx.Options(
		migration.Module,
		customer.Module,
		invoice.Module,
		redis.Module,
		feature.Module,
	)
}

// runOneShot starts an fx app, runs fn, and stops the app. Services needed by
// fn are pulled out with fx.Populate in opts.
func runOneShot(ctx context.Context, fn func(context.Context) error, opts ...fx.Option) error {
	app := fx.New(append([]fx.Option{coreOptions()}, opts...)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx)
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
