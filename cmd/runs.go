package cmd

import (
	"fmt"

	"github.com/algorzen/insight-reporter/internal/runstore"
	"github.com/spf13/cobra"
)

var runsShowID string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("no configuration loaded")
		}
		store, err := runstore.Open(cfg.RunsDir)
		if err != nil {
			return err
		}
		if runsShowID != "" {
			res, err := store.Load(runsShowID)
			if err != nil {
				return err
			}
			fmt.Println(res.Markdown())
			return nil
		}
		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("(no stored runs)")
			return nil
		}
		for _, e := range entries {
			degraded := ""
			if e.Degraded {
				degraded = " [degraded]"
			}
			fmt.Printf("- %s  %s  type=%s  narrative=%s%s\n",
				e.StoredAt.Format("2006-01-02 15:04"), e.ID, e.DatasetType, e.Method, degraded)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsShowID, "show", "", "print the stored report with this run ID")
}
