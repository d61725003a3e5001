package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/notegraph/internal/document"
	"github.com/seenimoa/notegraph/internal/graph"
	"github.com/seenimoa/notegraph/internal/output"
)

// --- Render Command ---

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Expand chart markers in files (or stdin)",
	Long: `Expand every @graph[...] marker in the given files and print the result,
or write one output file per input with --out-dir. Without arguments the
text is read from stdin.

Examples:
  notegraph render notes.md
  notegraph render --out-dir build/ week1.md week2.md
  notegraph render --html page.html > page.out.html
  echo 'load @graph[1,3,2]' | notegraph render`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")
		if !cmd.Flags().Changed("html") {
			asHTML = cfg.Render.HTML
		}
		outDir, _ := cmd.Flags().GetString("out-dir")
		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = cfg.Render.Workers
		}

		t := graph.New(cfg.GraphOptions())

		if len(args) == 0 {
			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			res, err := renderText(string(in), t, asHTML)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), res.Output)
			return err
		}

		results, err := renderFiles(cmd.Context(), t, args, asHTML, workers)
		if err != nil {
			return err
		}
		return writeResults(cmd.OutOrStdout(), results, outDir)
	},
}

func init() {
	renderCmd.Flags().Bool("html", false, "treat inputs as HTML documents (default: render.html from config)")
	renderCmd.Flags().String("out-dir", "", "write one file per input into this directory")
	renderCmd.Flags().Int("workers", 0, "files rendered concurrently (default: render.workers from config)")
}

// --- Chart Command ---

var chartCmd = &cobra.Command{
	Use:   "chart <data>",
	Short: "Render one chart from a marker payload",
	Long: `Render a single chart directly from the bracket payload of a marker.

Examples:
  notegraph chart '1,3,2,5,4' > chart.svg
  notegraph chart '1,2,3:4,3,2' --title 'A vs B' --format png -o chart.png
  notegraph chart '3,1,4,1,5,9' --format ascii
  notegraph chart '10,12,9' --format xlsx -o data.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")
		scale, _ := cmd.Flags().GetFloat64("scale")
		grid := cfg.Chart.Grid
		if cmd.Flags().Changed("grid") {
			grid, _ = cmd.Flags().GetBool("grid")
		}

		if err := output.CheckScale(scale); err != nil {
			return err
		}

		spec, err := graph.NewChart(args[0], title, grid)
		if err != nil {
			return fmt.Errorf("chart %q: %w", args[0], err)
		}

		var buf bytes.Buffer
		params := output.Params{Scale: scale, Color: outPath == ""}
		if err := output.Write(&buf, format, spec, cfg.GraphOptions(), params); err != nil {
			return err
		}

		if outPath == "" {
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		log.WithField("file", outPath).Info("chart written")
		return nil
	},
}

func init() {
	chartCmd.Flags().String("title", "", "chart title")
	chartCmd.Flags().Bool("grid", false, "draw grid lines (default: chart.grid from config)")
	chartCmd.Flags().String("format", output.SVG, "output format: svg, png, ascii or xlsx")
	chartCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	chartCmd.Flags().Float64("scale", 1, "png scale factor")
}

// renderResult is one expanded input.
type renderResult struct {
	Path   string
	Output string
	graph.Stats
}

// renderText expands one input, as plain text or as an HTML document.
func renderText(text string, t *graph.Transformer, asHTML bool) (renderResult, error) {
	var res renderResult
	if !asHTML {
		res.Output, res.Stats = t.Expand(text)
		return res, nil
	}

	out, stats, err := document.ExpandDocument(bytes.NewReader([]byte(text)), t)
	if err != nil {
		return res, err
	}
	res.Output, res.Stats = out, stats
	return res, nil
}

// renderFiles expands paths concurrently, at most workers at a time.
// Results follow the order of paths.
func renderFiles(ctx context.Context, t *graph.Transformer, paths []string, asHTML bool, workers int) ([]renderResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]renderResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			res, err := renderText(string(data), t, asHTML)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", path, err)
			}
			res.Path = path
			results[i] = res

			log.WithFields(log.Fields{
				"file":     path,
				"markers":  res.Markers,
				"rendered": res.Rendered,
				"dropped":  res.Dropped,
			}).Debug("rendered file")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeResults prints results in order, or writes each to outDir under its
// base name.
func writeResults(w io.Writer, results []renderResult, outDir string) error {
	if outDir == "" {
		for _, res := range results {
			if _, err := io.WriteString(w, res.Output); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	for _, res := range results {
		dst := filepath.Join(outDir, filepath.Base(res.Path))
		if err := os.WriteFile(dst, []byte(res.Output), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		log.WithFields(log.Fields{"file": dst, "charts": res.Rendered}).Info("wrote")
	}
	return nil
}
