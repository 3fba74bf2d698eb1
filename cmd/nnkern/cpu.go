package main

import (
	"context"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nnkern/internal/cpuinfo"
	"github.com/samcharles93/nnkern/pkg/kernels"
)

type cpuReport struct {
	cpuinfo.Features
	DotPath string `json:"dot_path"`
}

func cpuCmd() *cli.Command {
	return &cli.Command{
		Name:  "cpu",
		Usage: "Print detected CPU features and the active dot path",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cpuReport{Features: cpuinfo.Detect(), DotPath: kernels.Path()})
		},
	}
}
