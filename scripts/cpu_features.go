//go:build amd64 && goexperiment.simd

// cpu_features prints the archsimd feature bits next to the flags nnkern
// reports through x/sys/cpu, and which dot path the kernels picked.
//
//	GOEXPERIMENT=simd go run ./scripts/cpu_features.go
package main

import (
	"fmt"
	"os"
	"runtime"
	"simd/archsimd"
	"slices"

	"github.com/goccy/go-json"

	"github.com/samcharles93/nnkern/internal/cpuinfo"
	"github.com/samcharles93/nnkern/pkg/kernels"
)

type output struct {
	GoVersion string          `json:"go_version"`
	GoOS      string          `json:"go_os"`
	GoArch    string          `json:"go_arch"`
	CPUs      int             `json:"cpus"`
	DotPath   string          `json:"dot_path"`
	NoSIMD    bool            `json:"no_simd"`
	Archsimd  map[string]bool `json:"archsimd"`
	XSysCPU   map[string]bool `json:"x_sys_cpu"`
	Mismatch  []string        `json:"mismatch,omitempty"`
}

func main() {
	simd := map[string]bool{
		"AVX":     archsimd.X86.AVX(),
		"AVX2":    archsimd.X86.AVX2(),
		"FMA":     archsimd.X86.FMA(),
		"AVX512F": archsimd.X86.AVX512(),
	}
	detected := cpuinfo.Detect()

	out := output{
		GoVersion: runtime.Version(),
		GoOS:      runtime.GOOS,
		GoArch:    runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		DotPath:   kernels.Path(),
		NoSIMD:    detected.NoSIMD,
		Archsimd:  simd,
		XSysCPU:   detected.Flags,
	}
	for name, v := range simd {
		if detected.Has(name) != v {
			out.Mismatch = append(out.Mismatch, name)
		}
	}
	slices.Sort(out.Mismatch)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	if len(out.Mismatch) > 0 {
		os.Exit(2)
	}
}
