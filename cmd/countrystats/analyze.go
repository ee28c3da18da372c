package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/countrystats/internal/analysis"
	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/logger"
	"github.com/rewired-gh/countrystats/internal/models"
	"github.com/rewired-gh/countrystats/internal/render"
	"github.com/rewired-gh/countrystats/internal/storage"
)

type analyzeOptions struct {
	country   string
	indicator string
	from      int
	to        int
	view      string
	out       string
	xlsx      string
	snapshot  bool
	notify    bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fetch, validate and render one analysis",
		Example: `  countrystats analyze --country CAN --from 2005 --to 2015
  countrystats analyze --country BRA --indicator EN.ATM.CO2E.PC --from 2000 --to 2018 --view line --out co2.png`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.country, "country", catalog.Countries[0].Code, "ISO3 country code")
	flags.StringVar(&opts.indicator, "indicator", catalog.Indicators[catalog.PrimaryIndicator].Code, "Indicator code compared against forest area")
	flags.IntVar(&opts.from, "from", catalog.DefaultYear(), "Start year")
	flags.IntVar(&opts.to, "to", catalog.DefaultYear(), "End year")
	flags.StringVar(&opts.view, "view", string(render.ViewReport), "View: report, bar, line or scatter")
	flags.StringVarP(&opts.out, "out", "o", "", "Chart output path (default: <export.dir>/<analysis>_<view>.png)")
	flags.StringVar(&opts.xlsx, "xlsx", "", "Also write the dataset as an xlsx workbook to this path")
	flags.BoolVar(&opts.snapshot, "json", false, "Also write a JSON snapshot to the export directory")
	flags.BoolVar(&opts.notify, "notify", false, "Send the report to Telegram (requires telegram.enabled)")

	return cmd
}

func selectionFromFlags(opts analyzeOptions) (analysis.Selection, error) {
	country, ok := catalog.CountryByCode(opts.country)
	if !ok {
		return analysis.Selection{}, fmt.Errorf("unknown country %q (see 'countrystats catalog')", opts.country)
	}
	indicator, ok := catalog.IndicatorByCode(opts.indicator)
	if !ok {
		return analysis.Selection{}, fmt.Errorf("unknown indicator %q (see 'countrystats catalog')", opts.indicator)
	}
	for _, y := range []int{opts.from, opts.to} {
		if !catalog.ValidYear(y) {
			return analysis.Selection{}, fmt.Errorf("year %d outside %d-%d", y, catalog.MinYear, catalog.MaxYear)
		}
	}
	return analysis.Selection{Country: country, Indicator: indicator, StartYear: opts.from, EndYear: opts.to}, nil
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	ctx := cmd.Context()

	sel, err := selectionFromFlags(opts)
	if err != nil {
		return err
	}
	view, err := render.ParseView(opts.view)
	if err != nil {
		return err
	}
	if opts.notify && !cfg.Telegram.Enabled {
		return fmt.Errorf("--notify requires telegram.enabled")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.session.Apply(ctx, sel)
	if err != nil {
		return err
	}
	if !state.Valid() {
		return errReported
	}

	if err := writeView(cmd, state, view, opts.out); err != nil {
		return err
	}

	if opts.xlsx != "" {
		if err := writeFile(opts.xlsx, func(f *os.File) error { return render.Workbook(f, state) }); err != nil {
			return err
		}
		logger.Info("Workbook written to %s", opts.xlsx)
	}

	if opts.snapshot {
		path := filepath.Join(cfg.Export.Dir, storage.SnapshotName(state))
		if err := storage.WriteSnapshot(path, state); err != nil {
			return err
		}
		logger.Info("Snapshot written to %s", path)
	}

	if opts.notify {
		report, err := render.ReportString(state)
		if err != nil {
			return err
		}
		if err := a.telegram.SendAnalysis(state, report); err != nil {
			logger.Warn("Failed to send analysis to Telegram: %v", err)
		}
	}

	return nil
}

func writeView(cmd *cobra.Command, state *models.State, view render.View, out string) error {
	if view == render.ViewReport {
		return render.Report(cmd.OutOrStdout(), state)
	}

	if out == "" {
		name := storage.SnapshotName(state)
		out = filepath.Join(cfg.Export.Dir, fmt.Sprintf("%s_%s.png", name[:len(name)-len(filepath.Ext(name))], view))
	}
	if err := writeFile(out, func(f *os.File) error { return render.Chart(f, state, view) }); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
