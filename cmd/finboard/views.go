package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finboard/internal/dashboard"
	"finboard/internal/export"
)

// show runs one view, renders it and, when format is set, exports the
// view's dataset.
func show(cmd *cobra.Command, req dashboard.Request, format string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	res, err := a.svc.Handle(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := dashboard.Render(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if format == "" {
		return nil
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	ds, ok := req.View.Dataset()
	if !ok {
		return fmt.Errorf("%s results cannot be exported", req.View)
	}
	p, err := a.svc.Export(ds, f, export.WithBaseName(a.cfg.Export.BaseName))
	if err != nil {
		return err
	}
	path, err := export.WriteFile(a.cfg.Export.Dir, p)
	if err != nil {
		return err
	}
	a.log.Info("dataset exported", zap.String("dataset", string(ds)), zap.String("path", path), zap.Int("bytes", len(p.Data)))
	fmt.Fprintf(cmd.OutOrStdout(), "%s data written to %s\n", ds, path)
	return nil
}

func exportFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "export", "", "also write the dataset as csv, json or excel")
}

func ratesCmd() *cobra.Command {
	var currency, format string
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Today's central bank exchange rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd, dashboard.Request{View: dashboard.Rates, Currency: currency}, format)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "show detail metrics for this currency code")
	exportFlag(cmd, &format)
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		currency, format string
		days             int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Daily buying and selling rates of one currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd, dashboard.Request{View: dashboard.History, Currency: currency, Days: days}, format)
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency code")
	cmd.Flags().IntVar(&days, "days", 0, "number of days, 7 to 60 (default from config)")
	exportFlag(cmd, &format)
	return cmd
}

func searchCmd() *cobra.Command {
	var pick int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search stocks by name or symbol and quote a match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd, dashboard.Request{View: dashboard.StockSearch, Query: strings.Join(args, " "), Pick: pick}, "")
		},
	}
	cmd.Flags().IntVar(&pick, "pick", 0, "index of the match to quote")
	return cmd
}

func quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Quote a stock; SYMBOL.IS quotes an Istanbul listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd, dashboard.Request{View: dashboard.StockSearch, Symbol: args[0]}, "")
		},
	}
}

func cryptoCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "crypto [PAIR]",
		Short: "24 hour ticker and 15 minute candles of a USDT pair",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dashboard.Request{View: dashboard.Crypto}
			if len(args) == 1 {
				req.Symbol = args[0]
			}
			return show(cmd, req, format)
		},
	}
	exportFlag(cmd, &format)
	return cmd
}
