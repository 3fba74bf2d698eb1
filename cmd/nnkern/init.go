package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nnkern/internal/logger"
	"github.com/samcharles93/nnkern/internal/model"
)

func initCmd() *cli.Command {
	var (
		descPath string
		outPath  string
		seed     int64
		name     string
		kind     string
		inSize   int64
		outSize  int64
		hidden   int64
		layers   string
	)

	return &cli.Command{
		Name:  "init",
		Usage: "Write a weight file with random weights for a descriptor",
		Flags: []cli.Flag{
			modelsPathFlag(),
			&cli.StringFlag{
				Name:        "descriptor",
				Aliases:     []string{"d"},
				Usage:       "descriptor YAML file",
				Destination: &descPath,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .safetensors path (default <models-path>/<name>.safetensors)",
				Destination: &outPath,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "random seed",
				Value:       1,
				Destination: &seed,
			},
			&cli.StringFlag{
				Name:        "name",
				Usage:       "model name (overrides the descriptor)",
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "kind",
				Usage:       "model kind when no descriptor is given (" + kindList() + ")",
				Destination: &kind,
			},
			&cli.Int64Flag{Name: "in", Usage: "input size", Destination: &inSize},
			&cli.Int64Flag{Name: "out-size", Usage: "dense output size", Destination: &outSize},
			&cli.Int64Flag{Name: "hidden", Usage: "recurrent hidden size", Destination: &hidden},
			&cli.StringFlag{
				Name:        "layers",
				Usage:       "mlp layer sizes, comma separated (e.g. 4,16,3)",
				Destination: &layers,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyInitConfig(cmd, configFrom(ctx), &seed)

			var desc model.Descriptor
			var err error
			if descPath != "" {
				desc, err = model.LoadDescriptor(descPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			} else {
				desc, err = descriptorFromFlags(kind, inSize, outSize, hidden, layers)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
			}
			if name != "" {
				desc.Name = name
			}

			m, err := model.Init(desc, seed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			out, err := resolveInitOut(outPath, m.Name, modelsPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := m.Save(out); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("wrote model", "path", out, "kind", m.Kind, "weights", len(m.Weights), "seed", seed)
			_, _ = fmt.Fprintln(os.Stdout, out)
			return nil
		},
	}
}

func descriptorFromFlags(kind string, inSize, outSize, hidden int64, layers string) (model.Descriptor, error) {
	if kind == "" {
		return model.Descriptor{}, fmt.Errorf("--descriptor or --kind is required")
	}
	k, err := model.ParseKind(kind)
	if err != nil {
		return model.Descriptor{}, err
	}
	desc := model.Descriptor{
		Name:       string(k),
		Kind:       k,
		InSize:     int(inSize),
		OutSize:    int(outSize),
		HiddenSize: int(hidden),
	}
	if layers != "" {
		desc.LayerSizes, err = parseSizes(layers)
		if err != nil {
			return model.Descriptor{}, err
		}
	}
	return desc, desc.Validate()
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid layer size %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

func kindList() string {
	kinds := model.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
