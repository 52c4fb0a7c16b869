package cmd

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/kuma"
)

var flagDeep bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify restic repository integrity",
	Long: `Runs restic check against the repository. With --deep every data
pack is downloaded and re-hashed, which can take hours on large repos.`,
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

		kind := permafrost.RunVerify
		kumaURL := cfg.Machine.Kuma.Verify
		if flagDeep {
			kind = permafrost.RunDeepVerify
			kumaURL = cfg.Machine.Kuma.DeepVerify
		}

		record, err := runs.Begin(kind)
		if err != nil {
			return err
		}

		daemon.SdNotify(false, daemon.SdNotifyReady)
		daemon.SdNotify(false, "STATUS=checking repository")
		defer daemon.SdNotify(false, daemon.SdNotifyStopping)

		start := time.Now()
		push := kuma.NewClient(componentLog("kuma"))

		err = runVerify(cfg)

		msg := ""
		if err != nil {
			msg = err.Error()
		}
		if cerr := runs.Complete(record.ID, msg); cerr != nil {
			log.WithError(cerr).Warn("failed to record run outcome")
		}

		if err != nil {
			push.Down(kumaURL, err.Error())
			return err
		}
		push.Up(kumaURL, "verification passed", time.Since(start))
		return nil
	},
}

func runVerify(cfg *config.Config) error {
	store, err := openSecrets()
	if err != nil {
		return err
	}

	rst, err := resticClient(cfg, store)
	if err != nil {
		return err
	}
	return rst.Check(flagDeep)
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&flagDeep, "deep", false, "re-download and re-hash all repository data")
}
