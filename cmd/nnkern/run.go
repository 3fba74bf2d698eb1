package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nnkern/internal/logger"
	"github.com/samcharles93/nnkern/internal/model"
)

// runInput is the run command's input file. Dense and MLP models read
// Inputs, one row per batch entry. Recurrent models read Steps, one batch of
// rows per timestep.
type runInput struct {
	Inputs [][]float32   `json:"inputs,omitempty"`
	Steps  [][][]float32 `json:"steps,omitempty"`
}

type runOutput struct {
	Model   string        `json:"model"`
	Kind    model.Kind    `json:"kind"`
	Outputs [][]float32   `json:"outputs,omitempty"`
	Steps   [][][]float32 `json:"steps,omitempty"`
	H       [][]float32   `json:"h,omitempty"`
	C       [][]float32   `json:"c,omitempty"`
}

func runCmd() *cli.Command {
	var (
		modelRef     string
		inputPath    string
		outputPath   string
		outputStride int64
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Run a model over a JSON input file",
		Flags: []cli.Flag{
			modelsPathFlag(),
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "path to a .safetensors file or a model name",
				Destination: &modelRef,
			},
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       `input JSON ({"inputs": [[...]]} or {"steps": [[[...]]]}), "-" for stdin`,
				Value:       "-",
				Destination: &inputPath,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output JSON path (default stdout)",
				Destination: &outputPath,
			},
			&cli.Int64Flag{
				Name:        "output-stride",
				Usage:       "output row pitch for dense and mlp models (0 = output width)",
				Destination: &outputStride,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelsConfig(c, configFrom(ctx))

			m, err := openModel(modelRef, modelsPath, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			in, err := readRunInput(inputPath, os.Stdin)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			out, err := runModel(m, in, int(outputStride))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Debug("run complete", "model", m.Name, "kind", m.Kind, "rows", len(in.Inputs), "steps", len(in.Steps))

			w := io.Writer(os.Stdout)
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func readRunInput(path string, stdin io.Reader) (runInput, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return runInput{}, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var in runInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return runInput{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

func runModel(m *model.Model, in runInput, outStride int) (runOutput, error) {
	out := runOutput{Model: m.Name, Kind: m.Kind}
	if !m.Recurrent() {
		if len(in.Inputs) == 0 {
			return out, fmt.Errorf("%s model needs \"inputs\"", m.Kind)
		}
		b, err := model.BatchFromRows(in.Inputs, m.InputWidth())
		if err != nil {
			return out, err
		}
		res, err := m.Forward(b, outStride)
		if err != nil {
			return out, err
		}
		out.Outputs = res.Rows2D()
		return out, nil
	}

	if len(in.Steps) == 0 {
		return out, fmt.Errorf("%s model needs \"steps\"", m.Kind)
	}
	rows := len(in.Steps[0])
	if rows == 0 {
		return out, fmt.Errorf("step 0 has no rows")
	}
	steps := make([]model.Batch, len(in.Steps))
	for t, step := range in.Steps {
		if len(step) != rows {
			return out, fmt.Errorf("step %d has %d rows, want %d", t, len(step), rows)
		}
		b, err := model.BatchFromRows(step, m.InSize)
		if err != nil {
			return out, fmt.Errorf("step %d: %w", t, err)
		}
		steps[t] = b
	}
	state, err := m.NewState(rows)
	if err != nil {
		return out, err
	}
	hs, err := m.Sequence(state, steps)
	if err != nil {
		return out, err
	}
	for _, h := range hs {
		out.Steps = append(out.Steps, h.Rows2D())
	}
	out.H = state.HiddenBatch().Rows2D()
	if c := state.CellBatch(); c.Rows > 0 {
		out.C = c.Rows2D()
	}
	return out, nil
}
