package model

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/samcharles93/nnkern/internal/safetensors"
)

// WeightsTensor is the tensor name a weight file stores the blob under.
const WeightsTensor = "weights"

// Model pairs a descriptor with its weight blob.
type Model struct {
	Descriptor
	Weights []float32
}

// New validates that weights fit desc exactly.
func New(desc Descriptor, weights []float32) (*Model, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if want := desc.WeightCount(); len(weights) != want {
		return nil, fmt.Errorf("%w: %s %q needs %d weights, have %d", ErrShape, desc.Kind, desc.Name, want, len(weights))
	}
	return &Model{Descriptor: desc, Weights: weights}, nil
}

// Init builds a model with deterministic pseudo-random weights drawn
// uniformly from (-1/sqrt(fan_in), 1/sqrt(fan_in)). Biases start at zero.
func Init(desc Descriptor, seed int64) (*Model, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	weights := make([]float32, desc.WeightCount())
	for _, s := range desc.Layout() {
		if s.Bias {
			continue
		}
		fanIn := s.Cols
		if s.BiasColumn {
			fanIn--
		}
		scale := float32(1 / math.Sqrt(float64(max(fanIn, 1))))
		block := weights[s.Offset : s.Offset+s.Length]
		for r := range s.Rows {
			row := block[r*s.Cols : (r+1)*s.Cols]
			for c := range fanIn {
				row[c] = (rng.Float32()*2 - 1) * scale
			}
		}
	}
	return New(desc, weights)
}

// Save writes the model as a safetensors file with the descriptor in the
// header metadata.
func (m *Model) Save(path string) error {
	return safetensors.WriteFile(path, []safetensors.Tensor{{
		Name:  WeightsTensor,
		Shape: []int{len(m.Weights)},
		Data:  m.Weights,
	}}, m.metadata())
}

// Load reads a model written by Save. A model saved without a name takes
// the file name without its extension.
func Load(path string) (*Model, error) {
	f, desc, err := openHeader(path)
	if err != nil {
		return nil, err
	}
	weights, _, err := f.ReadTensorF32(WeightsTensor)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return New(desc, weights)
}

// LoadDescriptorFromWeights reads only the header of a weight file.
func LoadDescriptorFromWeights(path string) (Descriptor, error) {
	_, desc, err := openHeader(path)
	return desc, err
}

func openHeader(path string) (*safetensors.File, Descriptor, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, Descriptor{}, fmt.Errorf("open %s: %w", path, err)
	}
	desc, err := descriptorFromMetadata(f.Metadata)
	if err != nil {
		return nil, Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return f, desc, nil
}

// Stats summarises a weight blob.
type Stats struct {
	Count   int     `json:"count"`
	Min     float32 `json:"min"`
	Max     float32 `json:"max"`
	Mean    float64 `json:"mean"`
	AbsMean float64 `json:"abs_mean"`
	Zeros   int     `json:"zeros"`
	NaNs    int     `json:"nans"`
}

// WeightStats computes Stats over weights, skipping NaNs for min, max and
// the means.
func WeightStats(weights []float32) Stats {
	st := Stats{Count: len(weights), Min: float32(math.Inf(1)), Max: float32(math.Inf(-1))}
	var sum, abs float64
	n := 0
	for _, v := range weights {
		if v != v {
			st.NaNs++
			continue
		}
		if v == 0 {
			st.Zeros++
		}
		st.Min = min(st.Min, v)
		st.Max = max(st.Max, v)
		sum += float64(v)
		abs += math.Abs(float64(v))
		n++
	}
	if n == 0 {
		st.Min, st.Max = 0, 0
		return st
	}
	st.Mean = sum / float64(n)
	st.AbsMean = abs / float64(n)
	return st
}
