package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
	"github.com/permafrost-sh/permafrost/pkg/config"
	"github.com/permafrost-sh/permafrost/pkg/secrets"
)

var (
	flagConfigDir string
	flagStateDir  string
	flagLogFile   string
	flagVerbose   bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "permafrost",
	Short: "Backup coordinator with cold storage checksum tracking",
	Long: `Permafrost coordinates backups for one machine: versioned restic
backups, database dumps, and checksum-tracked cold storage mirrors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", permafrost.DefaultConfigDir, "directory holding config.toml and machine.toml")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", permafrost.DefaultStateDir, "directory holding the state database and secrets")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "also log to this file, rotated")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

func setupLogging() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if flagLogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     90, // days
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotated))
	}
}

func componentLog(component string) *logrus.Entry {
	return log.WithField("component", component)
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.CommonPath(flagConfigDir), config.MachinePath(flagConfigDir))
}

func openStore() (*permafrost.StoreManager, error) {
	return permafrost.NewStoreManager(permafrost.StateDBPath(flagStateDir))
}

// secretKeyPath holds the passphrase protecting the secrets file. Created by
// `permafrost init`, readable by root only.
func secretKeyPath() string {
	return filepath.Join(flagStateDir, "secret.key")
}

func secretsFilePath() string {
	return filepath.Join(flagStateDir, "secrets.enc")
}

func openSecrets() (secrets.Store, error) {
	passphrase, err := os.ReadFile(secretKeyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot read secret key (run `permafrost init` first): %w", err)
	}
	return secrets.NewCryptFile(secretsFilePath(), passphrase), nil
}
