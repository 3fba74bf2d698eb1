package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nnkern/internal/model"
)

type inspectReport struct {
	Descriptor  model.Descriptor `json:"descriptor"`
	WeightCount int              `json:"weight_count"`
	Layout      []model.Section  `json:"layout,omitempty"`
	Stats       model.Stats      `json:"stats"`
	Sections    []sectionStats   `json:"section_stats,omitempty"`
}

type sectionStats struct {
	Name  string      `json:"name"`
	Stats model.Stats `json:"stats"`
}

func inspectCmd() *cli.Command {
	var (
		modelRef     string
		asJSON       bool
		showSections bool
		showStats    bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the descriptor, layout and weights of a model",
		Flags: []cli.Flag{
			modelsPathFlag(),
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "path to a .safetensors file or a model name",
				Destination: &modelRef,
			},
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "sections", Usage: "show the blob layout", Value: true, Destination: &showSections},
			&cli.BoolFlag{Name: "section-stats", Usage: "show weight stats per section", Destination: &showStats},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			applyModelsConfig(c, configFrom(ctx))
			m, err := openModel(modelRef, modelsPath, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			rep := buildInspectReport(m, showSections, showStats)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printInspect(os.Stdout, rep)
			return nil
		},
	}
}

func buildInspectReport(m *model.Model, withLayout, withSectionStats bool) inspectReport {
	rep := inspectReport{
		Descriptor:  m.Descriptor,
		WeightCount: len(m.Weights),
		Stats:       model.WeightStats(m.Weights),
	}
	layout := m.Layout()
	if withLayout {
		rep.Layout = layout
	}
	if withSectionStats {
		for _, s := range layout {
			rep.Sections = append(rep.Sections, sectionStats{
				Name:  s.Name,
				Stats: model.WeightStats(m.Weights[s.Offset : s.Offset+s.Length]),
			})
		}
	}
	return rep
}

func printInspect(w io.Writer, rep inspectReport) {
	d := rep.Descriptor
	_, _ = fmt.Fprintln(w, "Model")
	_, _ = fmt.Fprintf(w, "  name:        %s\n", d.Name)
	_, _ = fmt.Fprintf(w, "  kind:        %s\n", d.Kind)
	switch d.Kind {
	case model.KindDense:
		_, _ = fmt.Fprintf(w, "  in_size:     %d\n", d.InSize)
		_, _ = fmt.Fprintf(w, "  out_size:    %d\n", d.OutSize)
	case model.KindMLP:
		sizes := make([]string, len(d.LayerSizes))
		for i, n := range d.LayerSizes {
			sizes[i] = fmt.Sprint(n)
		}
		_, _ = fmt.Fprintf(w, "  layer_sizes: %s\n", strings.Join(sizes, " -> "))
	default:
		_, _ = fmt.Fprintf(w, "  in_size:     %d\n", d.InSize)
		_, _ = fmt.Fprintf(w, "  hidden_size: %d\n", d.HiddenSize)
	}
	_, _ = fmt.Fprintf(w, "  weights:     %d (%d bytes)\n", rep.WeightCount, rep.WeightCount*4)

	if len(rep.Layout) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Layout")
		_, _ = fmt.Fprintf(w, "  %-12s %10s %10s %8s %8s\n", "section", "offset", "length", "rows", "cols")
		for _, s := range rep.Layout {
			name := s.Name
			if s.BiasColumn {
				name += "*"
			}
			_, _ = fmt.Fprintf(w, "  %-12s %10d %10d %8d %8d\n", name, s.Offset, s.Length, s.Rows, s.Cols)
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Weights")
	printStats(w, "  ", rep.Stats)
	for _, s := range rep.Sections {
		_, _ = fmt.Fprintf(w, "  [%s]\n", s.Name)
		printStats(w, "    ", s.Stats)
	}
}

func printStats(w io.Writer, indent string, st model.Stats) {
	_, _ = fmt.Fprintf(w, "%smin %.6g  max %.6g  mean %.6g  |mean| %.6g\n", indent, st.Min, st.Max, st.Mean, st.AbsMean)
	if st.Zeros > 0 || st.NaNs > 0 {
		_, _ = fmt.Fprintf(w, "%szeros %d  nans %d\n", indent, st.Zeros, st.NaNs)
	}
}
