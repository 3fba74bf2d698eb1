package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nnkern/internal/logger"
	"github.com/samcharles93/nnkern/internal/model"
	"github.com/samcharles93/nnkern/pkg/kernels"
)

type benchResult struct {
	Runs    int
	Total   time.Duration
	PerCall time.Duration
	GFLOPS  float64
}

func benchCmd() *cli.Command {
	var (
		kind       string
		inSize     int64
		outSize    int64
		hidden     int64
		layers     string
		batch      int64
		warmupRuns int64
		benchRuns  int64
		seed       int64
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "Time a kernel on random weights",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Usage:       "kernel to time (" + kindList() + ")",
				Value:       "gru",
				Destination: &kind,
			},
			&cli.Int64Flag{Name: "in", Usage: "input size", Value: 64, Destination: &inSize},
			&cli.Int64Flag{Name: "out", Usage: "dense output size", Value: 64, Destination: &outSize},
			&cli.Int64Flag{Name: "hidden", Usage: "recurrent hidden size", Value: 128, Destination: &hidden},
			&cli.StringFlag{Name: "layers", Usage: "mlp layer sizes", Value: "64,128,128,10", Destination: &layers},
			&cli.Int64Flag{Name: "batch", Usage: "batch rows", Value: 8, Destination: &batch},
			&cli.Int64Flag{Name: "warmup", Usage: "number of warmup calls", Value: 10, Destination: &warmupRuns},
			&cli.Int64Flag{Name: "runs", Usage: "number of timed calls", Value: 100, Destination: &benchRuns},
			&cli.Int64Flag{Name: "seed", Usage: "random seed", Value: 42, Destination: &seed},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			desc, err := descriptorFromFlags(kind, inSize, outSize, hidden, layers)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if batch <= 0 || benchRuns <= 0 {
				return cli.Exit("error: --batch and --runs must be positive", 1)
			}
			m, err := model.Init(desc, seed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			call, err := benchCall(m, int(batch), seed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			log.Info("warmup", "calls", warmupRuns)
			for range int(warmupRuns) {
				call()
			}
			log.Info("timing", "calls", benchRuns)
			res := timeCalls(call, int(benchRuns), 2*float64(len(m.Weights))*float64(batch))
			printBench(os.Stdout, m, int(batch), res)
			return nil
		},
	}
}

// benchCall prepares buffers for one kernel call on m and returns a closure
// that makes the call. Shapes are checked once up front.
func benchCall(m *model.Model, batch int, seed int64) (func(), error) {
	rng := rand.New(rand.NewSource(seed))
	in := make([]float32, batch*m.InputWidth())
	for i := range in {
		in[i] = rng.Float32()*2 - 1
	}
	w := m.Weights

	switch m.Kind {
	case model.KindDense:
		out := make([]float32, batch*m.OutSize)
		if err := kernels.CheckDense(w, in, out, m.InSize, m.OutSize, batch, m.InSize, m.OutSize); err != nil {
			return nil, err
		}
		return func() { kernels.DenseForward(w, in, out, m.InSize, m.OutSize, batch, m.InSize, m.OutSize) }, nil
	case model.KindMLP:
		sizes := m.LayerSizes
		width := m.OutputWidth()
		out := make([]float32, batch*width)
		scratch := make([]float32, kernels.MLPScratchLen(sizes))
		if err := kernels.CheckMLP(w, sizes, in, out, scratch, batch, m.InputWidth(), width); err != nil {
			return nil, err
		}
		return func() { kernels.MLPForward(w, sizes, in, out, scratch, batch, m.InputWidth(), width) }, nil
	}

	s, err := m.NewState(batch)
	if err != nil {
		return nil, err
	}
	switch m.Kind {
	case model.KindGRU:
		if err := kernels.CheckGRU(w, in, s.H, s.Z, s.R, s.HPrev, m.InSize, m.HiddenSize, batch, m.InSize); err != nil {
			return nil, err
		}
		return func() { kernels.GRUStep(w, in, s.H, s.Z, s.R, s.HPrev, m.InSize, m.HiddenSize, batch, m.InSize) }, nil
	case model.KindLSTM:
		if err := kernels.CheckLSTM(w, in, s.H, s.C, s.HPrev, s.CPrev, m.InSize, m.HiddenSize, batch, m.InSize); err != nil {
			return nil, err
		}
		return func() { kernels.LSTMStep(w, in, s.H, s.C, s.HPrev, s.CPrev, m.InSize, m.HiddenSize, batch, m.InSize) }, nil
	default:
		if err := kernels.CheckRRU(w, in, s.H, s.HPrev, m.InSize, m.HiddenSize, batch, m.InSize); err != nil {
			return nil, err
		}
		return func() { kernels.RRUStep(w, in, s.H, s.HPrev, m.InSize, m.HiddenSize, batch, m.InSize) }, nil
	}
}

// timeCalls runs call n times. flops is the approximate work of one call:
// one multiply and one add per weight per row.
func timeCalls(call func(), n int, flops float64) benchResult {
	start := time.Now()
	for range n {
		call()
	}
	total := time.Since(start)
	res := benchResult{Runs: n, Total: total, PerCall: total / time.Duration(n)}
	if total > 0 {
		res.GFLOPS = flops * float64(n) / total.Seconds() / 1e9
	}
	return res
}

func printBench(w io.Writer, m *model.Model, batch int, res benchResult) {
	_, _ = fmt.Fprintln(w, "=== nnkern bench ===")
	_, _ = fmt.Fprintf(w, "Kernel:     %s\n", m.Kind)
	_, _ = fmt.Fprintf(w, "Weights:    %d\n", len(m.Weights))
	_, _ = fmt.Fprintf(w, "Batch:      %d\n", batch)
	_, _ = fmt.Fprintf(w, "Dot path:   %s\n", kernels.Path())
	_, _ = fmt.Fprintf(w, "GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%-8s %12s %12s %10s\n", "Runs", "Total", "Per call", "GFLOP/s")
	_, _ = fmt.Fprintf(w, "%-8d %12s %12s %10.3f\n", res.Runs, res.Total.Round(time.Microsecond), res.PerCall, res.GFLOPS)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	_, _ = fmt.Fprintf(w, "\nMemory: %.1f MB alloc, %.1f MB sys\n",
		float64(mem.Alloc)/(1024*1024),
		float64(mem.Sys)/(1024*1024))
}
