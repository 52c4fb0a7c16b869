package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	pfsetup "github.com/permafrost-sh/permafrost/cmd/permafrost-setup"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Start the interactive setup wizard",
	Long:  `Configure permafrost for this machine with an interactive setup wizard.`,
	Run: func(cmd *cobra.Command, args []string) {
		p := tea.NewProgram(pfsetup.NewModel(flagConfigDir), pfsetup.ProgramOptions()...)
		pfsetup.SetProgram(p)
		if _, err := p.Run(); err != nil {
			log.Fatalf("failed to run setup TUI: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
