package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	permafrost "github.com/permafrost-sh/permafrost/pkg"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		sm, err := openStore()
		if err != nil {
			return err
		}
		defer sm.Close()

		runs, err := permafrost.NewRunManager(sm)
		if err != nil {
			return err
		}

		records, err := runs.Recent(20)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		for _, r := range records {
			duration := "running"
			if r.Finished != nil {
				duration = r.Finished.Sub(r.Started).Round(time.Second).String()
			}
			fmt.Printf("%s  %-12s %-10s %-10s %s\n",
				r.Started.Local().Format("2006-01-02 15:04:05"),
				r.Kind, r.Status, duration, r.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
