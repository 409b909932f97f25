package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finboard/internal/dashboard"
	"finboard/internal/export"
	"finboard/internal/snapshot"
	"finboard/internal/symbols"
)

func symbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Build or inspect the stock symbol list",
	}
	cmd.AddCommand(symbolsBuildCmd(), symbolsShowCmd())
	return cmd
}

func symbolsBuildCmd() *cobra.Command {
	var (
		out, exchange string
		noValidate    bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch all common stocks of an exchange and keep the ones with a live quote",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.log.Sync() //nolint:errcheck

			if out == "" {
				out = a.cfg.Finnhub.SymbolsFile
			}
			if exchange == "" {
				exchange = a.cfg.Finnhub.Exchange
			}
			b := &symbols.Builder{
				Lister:   a.finnhub,
				Quoter:   a.finnhub,
				Exchange: exchange,
				Validate: !noValidate,
				Workers:  a.cfg.Finnhub.BuildWorkers,
				Retries:  a.cfg.Finnhub.BuildRetries,
				Timeout:  a.cfg.RequestTimeout(),
				Logger:   a.log,
				Progress: progressLogger(a.log),
			}
			entries, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			if err := symbols.WriteFile(out, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s written with %d symbols\n", out, len(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default from config, us_list.csv)")
	cmd.Flags().StringVar(&exchange, "exchange", "", "exchange code (default from config, US)")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the per-symbol quote check")
	return cmd
}

// progressLogger logs every 100th validated symbol.
func progressLogger(log *zap.Logger) func(done, total int) {
	return func(done, total int) {
		if done%100 == 0 || done == total {
			log.Info("validating symbols", zap.Int("done", done), zap.Int("total", total))
		}
	}
}

func symbolsShowCmd() *cobra.Command {
	var file, filter string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the symbols of a Kod,Ad file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.log.Sync() //nolint:errcheck

			if file == "" {
				file = a.cfg.Finnhub.SymbolsFile
			}
			snap, err := snapshot.New(snapshot.WithLogger(a.log)).GetOrRefresh(cmd.Context(), symbols.FileLoader(file), time.Hour)
			if err != nil {
				return err
			}

			res := dashboard.Result{Title: fmt.Sprintf("%s: %d symbols", file, snap.Len())}
			res.Table.Columns = []string{"Kod", "Ad"}
			needle := strings.ToUpper(filter)
			for _, code := range snap.Keys() {
				name, _ := snap.Get(code)
				if needle != "" && !strings.Contains(code, needle) && !strings.Contains(strings.ToUpper(name), needle) {
					continue
				}
				res.Table.Rows = append(res.Table.Rows, export.Row{code, name})
			}
			if res.Table.Empty() {
				res.Warning = "no symbols match"
			}
			return dashboard.Render(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "symbol list (default from config, us_list.csv)")
	cmd.Flags().StringVar(&filter, "filter", "", "only show codes or names containing this text")
	return cmd
}
