package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permafrost-sh/permafrost/pkg/system"
)

var installTimersCmd = &cobra.Command{
	Use:   "install-timers",
	Short: "Install and enable the systemd timer units",
	RunE: func(cmd *cobra.Command, args []string) error {
		binPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("cannot resolve own path: %w", err)
		}
		return system.InstallTimers(binPath, componentLog("systemd"))
	},
}

func init() {
	rootCmd.AddCommand(installTimersCmd)
}
