package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/algorzen/insight-reporter/internal/loader"
	"github.com/algorzen/insight-reporter/internal/narrative"
	"github.com/algorzen/insight-reporter/internal/pipeline"
	"github.com/algorzen/insight-reporter/internal/report"
	"github.com/algorzen/insight-reporter/internal/runstore"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaDelimiter  string
	anaMaxRows    int
	anaSheetName  string
	anaSheetIndex int
	anaDecimal    string
	anaThousands  string
	anaNoRemote   bool
	anaTone       string
	anaNoStore    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX dataset and generate an executive report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := loader.DefaultOptions()
		if anaMaxRows > 0 {
			opt.MaxRows = anaMaxRows
		} else if cfg != nil && cfg.MaxRows > 0 {
			opt.MaxRows = cfg.MaxRows
		}
		switch anaDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case ";":
			opt.Delimiter = ';'
		case "\t", "tab":
			opt.Delimiter = '\t'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
		}
		switch anaDecimal {
		case "":
		case ",", "comma":
			opt.DecimalSeparator = ','
		case ".", "dot":
			opt.DecimalSeparator = '.'
		default:
			return fmt.Errorf("unsupported --decimal: %s", anaDecimal)
		}
		switch anaThousands {
		case "":
		case ",", "comma":
			opt.ThousandsSeparator = ','
		case ".", "dot":
			opt.ThousandsSeparator = '.'
		case "space":
			opt.ThousandsSeparator = ' '
		default:
			return fmt.Errorf("unsupported --thousands: %s", anaThousands)
		}
		opt.SheetName = anaSheetName
		opt.SheetIndex = anaSheetIndex

		ds, err := loader.Load(path, opt)
		if err != nil {
			return err
		}

		pcfg := pipeline.Config{Tone: anaTone}
		if cfg != nil {
			pcfg.RemoteDisabled = cfg.RemoteDisabled
			pcfg.RemoteTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
			pcfg.Branding = report.Branding{Company: cfg.Company, Author: cfg.Author}
			if pcfg.Tone == "" {
				pcfg.Tone = cfg.Tone
			}
			if cfg.APIKey != "" {
				pcfg.Remote = narrative.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Company, pcfg.RemoteTimeout)
			}
		}
		if anaNoRemote {
			pcfg.RemoteDisabled = true
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res, err := pipeline.Run(ctx, ds, pcfg)
		if err != nil {
			return err
		}

		if !anaNoStore && cfg != nil {
			store, err := runstore.Open(cfg.RunsDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: run not stored: %v\n", err)
			} else if entry, err := store.Save(res); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: run not stored: %v\n", err)
			} else if debug {
				fmt.Fprintf(os.Stderr, "stored run %s\n", entry.ID)
			}
		}

		if anaOutputPath != "" {
			if err := res.WriteJSON(anaOutputPath); err != nil {
				return err
			}
			fmt.Printf("✓ Report written to %s\n", anaOutputPath)
		}
		fmt.Println(res.Markdown())
		if res.Degraded {
			fmt.Fprintln(os.Stderr, "⚠ Analysis completed with degraded output; see warnings above")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the full report JSON to this path")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',', ';', or 'tab' (default: auto)")
	analyzeCmd.Flags().IntVar(&anaMaxRows, "max-rows", 0, "limit rows loaded (default from config)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX sheet name (default: first sheet)")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 0, "XLSX sheet index, 1-based")
	analyzeCmd.Flags().StringVar(&anaDecimal, "decimal", "", "decimal separator: ',' or '.' (default: auto)")
	analyzeCmd.Flags().StringVar(&anaThousands, "thousands", "", "thousands separator: ',', '.', or 'space' (default: auto)")
	analyzeCmd.Flags().BoolVar(&anaNoRemote, "no-remote", false, "skip the remote narrative path; use local generation")
	analyzeCmd.Flags().StringVar(&anaTone, "tone", "", "narrative tone hint for the remote path")
	analyzeCmd.Flags().BoolVar(&anaNoStore, "no-store", false, "do not persist this run")
}
