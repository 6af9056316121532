// Command reconcile audits and repairs drift between the object store and
// the media metadata database.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/heavybid/auction-media/internal/config"
	domain "github.com/heavybid/auction-media/internal/domain/media"
	"github.com/heavybid/auction-media/internal/domain/reconcile"
	"github.com/heavybid/auction-media/internal/domain/upload"
	"github.com/heavybid/auction-media/internal/infrastructure/database"
	"github.com/heavybid/auction-media/internal/infrastructure/logger"
	mediarepo "github.com/heavybid/auction-media/internal/infrastructure/repository/media"
	"github.com/heavybid/auction-media/internal/infrastructure/storage"
)

type env struct {
	cfg        *config.Config
	log        zerolog.Logger
	store      upload.ObjectStore
	repo       *mediarepo.Repository
	reconciler *reconcile.Service
	purger     *domain.Purger
}

func setup(ctx context.Context) (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	db, err := database.Connect(database.FromAppConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var store upload.ObjectStore
	switch {
	case cfg.IsLocalStorage():
		store, err = storage.NewLocalStorage(cfg, log)
	case cfg.IsS3Storage():
		store, err = storage.NewS3Storage(ctx, cfg, log)
	default:
		store = storage.NewDriveStorage(cfg, log)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	repo := mediarepo.NewRepository(db)
	return &env{
		cfg:        cfg,
		log:        log,
		store:      store,
		repo:       repo,
		reconciler: reconcile.NewService(cfg, store, repo, log),
		purger:     domain.NewPurger(cfg, repo, store, log),
	}, nil
}

func main() {
	root := &cobra.Command{
		Use:           "reconcile",
		Short:         "Audit and repair media storage drift",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(reportCmd(), cleanupFilesCmd(), cleanupRecordsCmd(), purgeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func reportCmd() *cobra.Command {
	var probe bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a read-only orphan report",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			report, err := e.reconciler.BuildReport(cmd.Context(), reconcile.Options{ProbeMissing: probe})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Println(report.Summary())
			for _, o := range report.StorageOrphans {
				fmt.Printf("  storage orphan  %s  (%d bytes)\n", o.Key, o.Size)
			}
			for _, o := range report.DBOrphans {
				fmt.Printf("  db orphan       %s  file=%s  reason=%s\n", o.Key, o.FileID, o.Reason)
			}
			for _, u := range report.Unassigned {
				fmt.Printf("  unassigned      %s  file=%s\n", u.Key, u.FileID)
			}
			if report.ListingFailed {
				fmt.Println("  warning: storage listing failed; storage-orphan and file-missing checks were limited")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "probe each record with a HEAD request when the bulk listing failed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full report as JSON")
	return cmd
}

func cleanupFilesCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup-files [key...]",
		Short: "Delete orphaned physical objects",
		Long:  "Deletes the given storage keys, or every storage orphan from a fresh report when no keys are given. Each delete asks for confirmation unless --yes is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}

			keys := args
			if len(keys) == 0 {
				report, err := e.reconciler.BuildReport(cmd.Context(), reconcile.Options{})
				if err != nil {
					return err
				}
				for _, o := range report.StorageOrphans {
					keys = append(keys, o.Key)
				}
			}
			if len(keys) == 0 {
				fmt.Println("nothing to delete")
				return nil
			}

			confirm := stdinConfirm(yes)
			result := e.reconciler.CleanupOrphanedFiles(cmd.Context(), keys, confirm)
			printCleanup(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "delete without prompting")
	return cmd
}

func cleanupRecordsCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup-records",
		Short: "Delete orphaned metadata rows found by a fresh report",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}

			report, err := e.reconciler.BuildReport(cmd.Context(), reconcile.Options{})
			if err != nil {
				return err
			}

			refs := make([]reconcile.RecordRef, 0, len(report.DBOrphans))
			for _, o := range report.DBOrphans {
				refs = append(refs, reconcile.RecordRef{Key: o.Key, ItemID: o.ItemID})
			}
			if len(refs) == 0 {
				fmt.Println("nothing to delete")
				return nil
			}

			if !yes {
				fmt.Printf("delete %d metadata rows? [y/N] ", len(refs))
				if !readYes() {
					fmt.Println("aborted")
					return nil
				}
			}

			result := e.reconciler.CleanupOrphanedDBRecords(cmd.Context(), refs)
			printCleanup(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "delete without prompting")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Run one purge sweep over detached groups past the grace window",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := e.purger.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("purged %d rows, %d objects, %d failures\n",
				stats.RowsDeleted, stats.ObjectsDeleted, len(stats.Failures))
			for _, f := range stats.Failures {
				fmt.Println("  failed:", f)
			}
			return nil
		},
	}
}

// stdinConfirm prompts per key unless --yes was given.
func stdinConfirm(yes bool) reconcile.ConfirmFunc {
	if yes {
		return func(string) bool { return true }
	}
	return func(key string) bool {
		fmt.Printf("delete %s? [y/N] ", key)
		return readYes()
	}
}

func readYes() bool {
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func printCleanup(result *reconcile.CleanupResult) {
	fmt.Printf("deleted %d, failed %d, skipped %d\n",
		len(result.Deleted), len(result.Failed), len(result.Skipped))
	for _, f := range result.Failed {
		fmt.Printf("  failed: %s: %s\n", f.Key, f.Error)
	}
}
