package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/permafrost-sh/permafrost/pkg/scanner"
)

var flagNoUpdateDB bool

var (
	scanHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	scanPathStyle   = lipgloss.NewStyle().PaddingLeft(2)
	scanEmptyStyle  = lipgloss.NewStyle().PaddingLeft(2).Faint(true)
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Show what the marker scan would back up",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := scanner.New(cfg.Machine.ScanPaths, componentLog("scanner")).Scan(!flagNoUpdateDB)
		if err != nil {
			return err
		}

		printSection("Backup paths (.backup)", scanner.EffectiveBackupPaths(result, cfg.Machine.ExtraBackupPaths))
		printSection("Excluded subtrees (.nobackup)", result.NoBackupPaths)
		printSection("Cold storage (.coldstorage)", result.ColdPaths)
		printSection("Cold storage, redundant (.coldstorage_redundant)", result.ColdRedundantPaths)
		return nil
	},
}

func printSection(title string, paths []string) {
	fmt.Println(scanHeaderStyle.Render(title))
	if len(paths) == 0 {
		fmt.Println(scanEmptyStyle.Render("(none)"))
		return
	}
	for _, p := range paths {
		fmt.Println(scanPathStyle.Render(p))
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&flagNoUpdateDB, "no-updatedb", false, "skip refreshing the plocate database first")
}
