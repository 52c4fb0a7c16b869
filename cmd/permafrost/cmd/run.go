package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/kuma"
	"github.com/permafrost-sh/permafrost/pkg/mariadb"
	"github.com/permafrost-sh/permafrost/pkg/restic"
	"github.com/permafrost-sh/permafrost/pkg/scanner"
	"github.com/permafrost-sh/permafrost/pkg/secrets"
	"github.com/permafrost-sh/permafrost/pkg/system"
)

// minDumpSpace is how much free space the dump filesystem needs before we
// bother starting mariadb-dump.
const minDumpSpace = 2 << 30

var flagDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full backup: scan, dump databases, back up, prune",
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
		record, err := runs.Begin(permafrost.RunBackup)
		if err != nil {
			return err
		}

		daemon.SdNotify(false, daemon.SdNotifyReady)
		defer daemon.SdNotify(false, daemon.SdNotifyStopping)

		start := time.Now()
		push := kuma.NewClient(componentLog("kuma"))

		err = runBackup(cfg)

		msg := ""
		if err != nil {
			msg = err.Error()
		}
		if cerr := runs.Complete(record.ID, msg); cerr != nil {
			log.WithError(cerr).Warn("failed to record run outcome")
		}

		if err != nil {
			push.Down(cfg.Machine.Kuma.Backup, err.Error())
			return err
		}
		push.Up(cfg.Machine.Kuma.Backup, "backup completed", time.Since(start))
		return nil
	},
}

func runBackup(cfg *config.Config) error {
	store, err := openSecrets()
	if err != nil {
		return err
	}

	rst, err := resticClient(cfg, store)
	if err != nil {
		return err
	}

	daemon.SdNotify(false, "STATUS=scanning for markers")
	scan, err := scanner.New(cfg.Machine.ScanPaths, componentLog("scanner")).Scan(true)
	if err != nil {
		return err
	}
	paths := scanner.EffectiveBackupPaths(scan, cfg.Machine.ExtraBackupPaths)
	log.WithField("paths", len(paths)).Info("backup set resolved")

	// Dump databases first so the dumps ride along in this run's snapshot
	// window.
	var dumpDir string
	if len(cfg.Machine.Databases) > 0 && !flagDryRun {
		if err := system.EnsureFreeSpace(os.TempDir(), minDumpSpace); err != nil {
			return err
		}

		dumper, err := mariadbDumper(cfg, store)
		if err != nil {
			return err
		}

		daemon.SdNotify(false, "STATUS=dumping databases")
		dir, _, err := dumper.DumpAll(cfg.Machine.Databases)
		if err != nil {
			return err
		}
		dumpDir = dir
		defer os.RemoveAll(dumpDir)
	}

	daemon.SdNotify(false, "STATUS=running restic backup")
	if err := rst.Backup(paths, flagDryRun); err != nil {
		return err
	}

	if dumpDir != "" {
		daemon.SdNotify(false, "STATUS=backing up database dumps")
		if err := rst.BackupDump(dumpDir, "db-dump"); err != nil {
			return err
		}
	}

	if flagDryRun {
		log.Info("dry run, skipping prune")
		return nil
	}

	daemon.SdNotify(false, "STATUS=applying retention policy")
	return rst.ForgetAndPrune()
}

func resticClient(cfg *config.Config, store secrets.Store) (*restic.Client, error) {
	password, err := store.Get(secrets.ResticKey(cfg.Machine.Name))
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return nil, fmt.Errorf("no restic password stored, run `permafrost init` first")
		}
		return nil, err
	}

	return &restic.Client{
		Machine:   cfg.Machine.Name,
		Box:       cfg.Restic.StorageBox,
		Retention: cfg.Restic.Retention,
		Exclude:   cfg.Restic.Exclude,
		Password:  password,
		Log:       componentLog("restic"),
	}, nil
}

func mariadbDumper(cfg *config.Config, store secrets.Store) (*mariadb.Dumper, error) {
	password, err := store.Get(secrets.MariaDBKey)
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return nil, err
	}

	return &mariadb.Dumper{
		User:     "root",
		Password: password,
		Log:      componentLog("mariadb"),
	}, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what restic would back up without writing a snapshot")
}
