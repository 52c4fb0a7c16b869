package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
	"github.com/permafrost-sh/permafrost/pkg/cold"
	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/kuma"
	"github.com/permafrost-sh/permafrost/pkg/scanner"
	"github.com/permafrost-sh/permafrost/pkg/transfer"
	"github.com/permafrost-sh/permafrost/pkg/utils"
)

var flagColdRedundant bool

var coldCmd = &cobra.Command{
	Use:   "cold",
	Short: "Cold storage mirroring, verification and status",
}

var coldRunCmd = &cobra.Command{
	Use:   "run [path...]",
	Short: "Upload cold storage paths and record their checksums",
	Long: `With no arguments, uploads every directory found by the marker scan
(.coldstorage and .coldstorage_redundant). With paths, uploads exactly those;
--redundant mirrors them to the redundant storage box as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sm, err := openStore()
		if err != nil {
			return err
		}
		defer sm.Close()

		runs, err := permafrost.NewRunManager(sm)
		if err != nil {
			return err
		}
		record, err := runs.Begin(permafrost.RunCold)
		if err != nil {
			return err
		}

		err = runColdUpload(cfg, sm, args)

		msg := ""
		if err != nil {
			msg = err.Error()
		}
		if cerr := runs.Complete(record.ID, msg); cerr != nil {
			log.WithError(cerr).Warn("failed to record run outcome")
		}
		return err
	},
}

// upload unit: a path plus whether it goes to the redundant box too.
type coldTask struct {
	path      string
	redundant bool
}

func runColdUpload(cfg *config.Config, sm *permafrost.StoreManager, args []string) error {
	var tasks []coldTask
	if len(args) > 0 {
		for _, p := range args {
			tasks = append(tasks, coldTask{path: p, redundant: flagColdRedundant})
		}
	} else {
		scan, err := scanner.New(cfg.Machine.ScanPaths, componentLog("scanner")).Scan(true)
		if err != nil {
			return err
		}
		for _, p := range scan.ColdPaths {
			tasks = append(tasks, coldTask{path: p})
		}
		for _, p := range scan.ColdRedundantPaths {
			tasks = append(tasks, coldTask{path: p, redundant: true})
		}
	}

	if len(tasks) == 0 {
		log.Info("no cold storage paths found")
		return nil
	}

	coordinator, err := newCoordinator(cfg, sm)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		entries, err := coordinator.Upload(task.path, task.redundant)
		if err != nil {
			return err
		}
		log.WithField("path", task.path).Infof("uploaded %d files", len(entries))
	}
	return nil
}

var coldStatusCmd = &cobra.Command{
	Use:   "status <path>",
	Short: "Show what the checksum ledger knows about a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sm, err := openStore()
		if err != nil {
			return err
		}
		defer sm.Close()

		ledger, err := cold.NewLedger(sm, cfg.Machine.Name)
		if err != nil {
			return err
		}

		status, err := ledger.Status(args[0])
		if err != nil {
			return err
		}
		if status == nil {
			fmt.Printf("%s is not tracked in cold storage\n", args[0])
			return nil
		}

		if status.File != nil {
			e := status.File
			fmt.Printf("%s\n", e.Path)
			fmt.Printf("  sha256:    %s\n", e.SHA256)
			fmt.Printf("  size:      %s\n", utils.PrettyPrintDiskSize(e.Size))
			fmt.Printf("  backed up: %s\n", e.BackedUp.Format(time.RFC3339))
			return nil
		}

		d := status.Directory
		fmt.Printf("%s: %d files, %s\n", status.Path, d.FileCount, utils.PrettyPrintDiskSize(d.TotalSize))
		for _, e := range d.Files {
			fmt.Printf("  %s (%s, backed up %s)\n", e.Path, utils.PrettyPrintDiskSize(e.Size), e.BackedUp.Format("2006-01-02"))
		}
		return nil
	},
}

var coldVerifyCmd = &cobra.Command{
	Use:   "verify [path...]",
	Short: "Re-hash tracked cold storage files and report drift",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sm, err := openStore()
		if err != nil {
			return err
		}
		defer sm.Close()

		runs, err := permafrost.NewRunManager(sm)
		if err != nil {
			return err
		}
		record, err := runs.Begin(permafrost.RunColdVerify)
		if err != nil {
			return err
		}

		ledger, err := cold.NewLedger(sm, cfg.Machine.Name)
		if err != nil {
			return err
		}

		start := time.Now()
		push := kuma.NewClient(componentLog("kuma"))

		passed, failed, err := ledger.Verify(args)

		msg := ""
		if err != nil {
			msg = err.Error()
		} else if len(failed) > 0 {
			msg = fmt.Sprintf("%d files drifted", len(failed))
		}
		if cerr := runs.Complete(record.ID, msg); cerr != nil {
			log.WithError(cerr).Warn("failed to record run outcome")
		}

		if err != nil {
			push.Down(cfg.Machine.Kuma.Verify, err.Error())
			return err
		}

		fmt.Printf("%d files verified, %d failed\n", len(passed), len(failed))
		if len(failed) > 0 {
			for _, path := range failed {
				fmt.Printf("  drift: %s\n", path)
			}
			push.Down(cfg.Machine.Kuma.Verify, msg)
			return fmt.Errorf("%d cold storage files no longer match their recorded checksum", len(failed))
		}

		push.Up(cfg.Machine.Kuma.Verify, "cold storage verified", time.Since(start))
		return nil
	},
}

func newCoordinator(cfg *config.Config, sm *permafrost.StoreManager) (*cold.Coordinator, error) {
	ledger, err := cold.NewLedger(sm, cfg.Machine.Name)
	if err != nil {
		return nil, err
	}

	return &cold.Coordinator{
		Machine:  cfg.Machine.Name,
		Cold:     cfg.Cold,
		Ledger:   ledger,
		Executor: transfer.NewRsync(componentLog("rsync")),
		Log:      componentLog("cold"),
	}, nil
}

func init() {
	rootCmd.AddCommand(coldCmd)
	coldCmd.AddCommand(coldRunCmd)
	coldCmd.AddCommand(coldStatusCmd)
	coldCmd.AddCommand(coldVerifyCmd)

	coldRunCmd.Flags().BoolVar(&flagColdRedundant, "redundant", false, "also mirror the given paths to the redundant storage box")
}
