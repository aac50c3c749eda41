package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dashkit/internal/chart"
	"github.com/KaramelBytes/dashkit/internal/dashboard"
	"github.com/KaramelBytes/dashkit/internal/utils"
)

// Output flags shared by the dashboard commands.
var (
	outFormat string
	outPath   string
	outPNGDir string
	outPlot   bool
	outRows   int
)

func addOutputFlags(c *cobra.Command) {
	c.Flags().StringVar(&outFormat, "format", "markdown", "output format: markdown | json")
	c.Flags().StringVarP(&outPath, "output", "o", "", "write the page to this file instead of stdout")
	c.Flags().StringVar(&outPNGDir, "png-dir", "", "render each panel chart as a PNG into this directory")
	c.Flags().BoolVar(&outPlot, "plot", false, "draw panel charts in the terminal after the page")
	c.Flags().IntVar(&outRows, "rows", 20, "maximum table rows per panel (0 = all)")
}

// pageView is what --format renders. Pages with extra state, such as the
// listings filters, provide their own Markdown and JSON.
type pageView interface {
	Markdown(rowLimit int) string
}

// writePage renders a dashboard page according to the output flags.
func writePage(cmd *cobra.Command, p *dashboard.Page) error {
	return writeView(cmd, p, p)
}

// writeView renders view as the page body; charts come from p.
func writeView(cmd *cobra.Command, view pageView, p *dashboard.Page) error {
	var body []byte
	switch strings.ToLower(strings.TrimSpace(outFormat)) {
	case "", "markdown", "md":
		body = []byte(view.Markdown(outRows))
	case "json":
		b, err := utils.PrettyJSON(view)
		if err != nil {
			return err
		}
		body = append(b, '\n')
	default:
		return fmt.Errorf("unsupported --format: %s (use markdown|json)", outFormat)
	}

	if outPath != "" {
		if err := utils.SafeWriteFile(outPath, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", p.Title, outPath)
	} else {
		if _, err := cmd.OutOrStdout().Write(body); err != nil {
			return err
		}
	}

	if outPlot {
		for _, spec := range p.Charts() {
			if s := chart.RenderTerminal(spec, 80); s != "" {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprint(cmd.OutOrStdout(), s)
			}
		}
	}
	if outPNGDir != "" {
		return writePNGs(cmd, p, outPNGDir)
	}
	return nil
}

func writePNGs(cmd *cobra.Command, p *dashboard.Page, dir string) error {
	width, height := chart.DefaultWidth, chart.DefaultHeight
	if cfg != nil && cfg.ChartWidth > 0 && cfg.ChartHeight > 0 {
		width, height = cfg.ChartWidth, cfg.ChartHeight
	}
	for _, pn := range p.Panels {
		if pn.Chart == nil {
			continue
		}
		if pn.Chart.Empty() {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %q has no data; chart skipped\n", pn.Name)
			continue
		}
		var buf bytes.Buffer
		if err := chart.RenderPNG(pn.Chart, &buf, width, height); err != nil {
			if errors.Is(err, chart.ErrEmpty) {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %q has nothing to draw; chart skipped\n", pn.Name)
				continue
			}
			return err
		}
		path := filepath.Join(dir, utils.Slug(pn.Name)+".png")
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		logger.Debug("rendered %s (%dx%d)", path, width, height)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote chart to %s\n", path)
	}
	return nil
}

// sourceOr returns the flag value when set, else the configured location.
func sourceOr(flag, configured string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	return configured
}
