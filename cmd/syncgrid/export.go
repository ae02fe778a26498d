package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/j-veylop/syncgrid-tui/internal/export"
	"github.com/j-veylop/syncgrid-tui/internal/models"
)

type exportFlags struct {
	chart  string
	from   string
	to     string
	outDir string
	width  int
	height int
}

func newExportCmd() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render charts to PNG files",
		Long: `Render one chart, or every chart, to PNG. The range defaults to the
configured default range; --from and --to take YYYY-MM-DD dates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.chart, "chart", "c", "", "Chart index or title (default: all charts)")
	cmd.Flags().StringVar(&f.from, "from", "", "Range start, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Range end, YYYY-MM-DD")
	cmd.Flags().StringVarP(&f.outDir, "output", "o", "", "Output directory (default: SYNCGRID_EXPORT_DIR)")
	cmd.Flags().IntVar(&f.width, "width", export.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&f.height, "height", export.DefaultHeight, "Image height in pixels")

	return cmd
}

func runExport(cmd *cobra.Command, f exportFlags) error {
	cfg, mgr, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	r, err := exportRange(cfg.DefaultRange, f.from, f.to)
	if err != nil {
		return err
	}

	charts, err := selectCharts(mgr.Series().Charts, f.chart)
	if err != nil {
		return err
	}

	dir := f.outDir
	if dir == "" {
		dir = cfg.ExportDir
	}

	opts := export.Options{Width: f.width, Height: f.height}
	for _, c := range charts {
		path, err := export.WriteFile(dir, c, r, opts)
		if err != nil {
			return fmt.Errorf("export %q: %w", c.Spec.Title, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// exportRange overrides either end of def with a parsed flag value.
func exportRange(def models.DateRange, from, to string) (models.DateRange, error) {
	r := def
	if from != "" {
		t, err := models.ParseDate(from)
		if err != nil {
			return models.DateRange{}, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		r.From = &t
	}
	if to != "" {
		t, err := models.ParseDate(to)
		if err != nil {
			return models.DateRange{}, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		r.To = &t
	}
	if !r.Complete() {
		return models.DateRange{}, fmt.Errorf("export needs both --from and --to")
	}
	return r.Normalized(), nil
}

// selectCharts picks the chart named by sel, by index or case-insensitive
// title. An empty selector selects every chart.
func selectCharts(charts []models.ChartData, sel string) ([]models.ChartData, error) {
	if len(charts) == 0 {
		return nil, fmt.Errorf("no charts loaded")
	}
	if sel == "" {
		return charts, nil
	}
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 || i >= len(charts) {
			return nil, fmt.Errorf("chart index %d out of range [0, %d)", i, len(charts))
		}
		return charts[i : i+1], nil
	}
	for _, c := range charts {
		if strings.EqualFold(c.Spec.Title, sel) {
			return []models.ChartData{c}, nil
		}
	}
	return nil, fmt.Errorf("no chart titled %q", sel)
}
