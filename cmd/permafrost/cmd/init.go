package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permafrost-sh/permafrost/pkg/secrets"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap state, secrets and the restic repository",
	Long: `Creates the state directory, generates the secrets key and a restic
repository password if none exists, and initializes the repository on the
storage box. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(flagStateDir, 0700); err != nil {
			return fmt.Errorf("cannot create state directory: %w", err)
		}

		if _, err := os.Stat(secretKeyPath()); errors.Is(err, os.ErrNotExist) {
			key, err := secrets.RandomPassword(32)
			if err != nil {
				return err
			}
			if err := os.WriteFile(secretKeyPath(), []byte(key), 0600); err != nil {
				return fmt.Errorf("cannot write secret key: %w", err)
			}
			log.Info("generated secrets key")
		}

		store, err := openSecrets()
		if err != nil {
			return err
		}

		resticKey := secrets.ResticKey(cfg.Machine.Name)
		if _, err := store.Get(resticKey); errors.Is(err, secrets.ErrNotFound) {
			password, err := secrets.RandomPassword(32)
			if err != nil {
				return err
			}
			if err := store.Set(resticKey, password); err != nil {
				return err
			}
			log.Warn("generated a new restic repository password, back up the secrets file")
		} else if err != nil {
			return err
		}

		rst, err := resticClient(cfg, store)
		if err != nil {
			return err
		}

		if rst.RepoExists() {
			log.WithField("repo", rst.RepoURL()).Info("repository already initialized")
			return nil
		}

		log.WithField("repo", rst.RepoURL()).Info("initializing repository")
		return rst.InitRepo()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
