// Package cpuinfo reports the CPU features relevant to the kernel dot paths.
// The report is informational; only NoSIMD affects which path runs.
package cpuinfo

import (
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/cpu"
)

// EnvNoSIMD forces the portable dot path when set to a true value.
const EnvNoSIMD = "NNKERN_NO_SIMD"

// Features holds the detected capabilities, checked once per call to Detect.
type Features struct {
	GOOS   string          `json:"goos"`
	GOARCH string          `json:"goarch"`
	CPUs   int             `json:"cpus"`
	NoSIMD bool            `json:"no_simd"`
	Flags  map[string]bool `json:"flags"`
}

// Detect reads the feature bits exposed by golang.org/x/sys/cpu for the
// running architecture.
func Detect() Features {
	f := Features{
		GOOS:   runtime.GOOS,
		GOARCH: runtime.GOARCH,
		CPUs:   runtime.NumCPU(),
		NoSIMD: NoSIMD(),
		Flags:  map[string]bool{},
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		f.Flags["SSE2"] = cpu.X86.HasSSE2
		f.Flags["SSE41"] = cpu.X86.HasSSE41
		f.Flags["AVX"] = cpu.X86.HasAVX
		f.Flags["AVX2"] = cpu.X86.HasAVX2
		f.Flags["FMA"] = cpu.X86.HasFMA
		f.Flags["AVX512F"] = cpu.X86.HasAVX512F
	case "arm64":
		f.Flags["ASIMD"] = cpu.ARM64.HasASIMD
		f.Flags["FP"] = cpu.ARM64.HasFP
		f.Flags["ASIMDHP"] = cpu.ARM64.HasASIMDHP
		f.Flags["SVE"] = cpu.ARM64.HasSVE
	}
	return f
}

// Has reports whether the named flag was detected.
func (f Features) Has(flag string) bool {
	return f.Flags[flag]
}

// NoSIMD reports whether the SIMD dot path has been disabled through the
// environment.
func NoSIMD() bool {
	v, ok := os.LookupEnv(EnvNoSIMD)
	if !ok || v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		// Any other non-empty value counts as set.
		return true
	}
	return b
}
