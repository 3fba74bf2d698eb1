package model

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/nnkern/pkg/kernels"
)

// Kind names the kernel a model runs.
type Kind string

const (
	KindDense Kind = "dense"
	KindMLP   Kind = "mlp"
	KindGRU   Kind = "gru"
	KindLSTM  Kind = "lstm"
	KindRRU   Kind = "rru"
)

var (
	ErrUnknownKind = errors.New("unknown model kind")
	ErrShape       = errors.New("invalid shape")
)

// Kinds lists every supported kind.
func Kinds() []Kind {
	return []Kind{KindDense, KindMLP, KindGRU, KindLSTM, KindRRU}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Recurrent reports whether the kind advances a hidden state.
func (k Kind) Recurrent() bool {
	return k == KindGRU || k == KindLSTM || k == KindRRU
}

// Descriptor is the shape of a model. Dense uses InSize and OutSize, MLP
// uses LayerSizes, the recurrent kinds use InSize and HiddenSize.
type Descriptor struct {
	Name       string `yaml:"name" json:"name"`
	Kind       Kind   `yaml:"kind" json:"kind"`
	InSize     int    `yaml:"in_size,omitempty" json:"in_size,omitempty"`
	OutSize    int    `yaml:"out_size,omitempty" json:"out_size,omitempty"`
	HiddenSize int    `yaml:"hidden_size,omitempty" json:"hidden_size,omitempty"`
	LayerSizes []int  `yaml:"layer_sizes,omitempty" json:"layer_sizes,omitempty"`
}

// LoadDescriptor reads a YAML descriptor file.
func LoadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("parse descriptor %s: %w", path, err)
	}
	if d.Kind, err = ParseKind(string(d.Kind)); err != nil {
		return Descriptor{}, err
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindDense:
		if d.InSize <= 0 || d.OutSize <= 0 {
			return fmt.Errorf("%w: dense needs positive in_size and out_size, have %d and %d", ErrShape, d.InSize, d.OutSize)
		}
	case KindMLP:
		if len(d.LayerSizes) < 2 {
			return fmt.Errorf("%w: mlp needs at least two layer sizes, have %d", ErrShape, len(d.LayerSizes))
		}
		for i, s := range d.LayerSizes {
			if s <= 0 {
				return fmt.Errorf("%w: mlp layer %d has width %d", ErrShape, i, s)
			}
		}
	case KindGRU, KindLSTM, KindRRU:
		if d.InSize <= 0 || d.HiddenSize <= 0 {
			return fmt.Errorf("%w: %s needs positive in_size and hidden_size, have %d and %d", ErrShape, d.Kind, d.InSize, d.HiddenSize)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
	return nil
}

func (d Descriptor) Recurrent() bool {
	return d.Kind.Recurrent()
}

// InputWidth is the number of values in one input row.
func (d Descriptor) InputWidth() int {
	if d.Kind == KindMLP && len(d.LayerSizes) > 0 {
		return d.LayerSizes[0]
	}
	return d.InSize
}

// OutputWidth is the number of values a forward pass or step produces per
// row.
func (d Descriptor) OutputWidth() int {
	switch d.Kind {
	case KindDense:
		return d.OutSize
	case KindMLP:
		if len(d.LayerSizes) == 0 {
			return 0
		}
		return d.LayerSizes[len(d.LayerSizes)-1]
	default:
		return d.HiddenSize
	}
}

// WeightCount is the length of the weight blob.
func (d Descriptor) WeightCount() int {
	switch d.Kind {
	case KindDense:
		return kernels.DenseWeightCount(d.InSize, d.OutSize)
	case KindMLP:
		return kernels.MLPWeightCount(d.LayerSizes)
	case KindGRU:
		return kernels.GRUWeightCount(d.InSize, d.HiddenSize)
	case KindLSTM:
		return kernels.LSTMWeightCount(d.InSize, d.HiddenSize)
	case KindRRU:
		return kernels.RRUWeightCount(d.InSize, d.HiddenSize)
	}
	return 0
}

const (
	metaFormat     = "nnkern.format"
	metaName       = "nnkern.name"
	metaKind       = "nnkern.kind"
	metaInSize     = "nnkern.in_size"
	metaOutSize    = "nnkern.out_size"
	metaHiddenSize = "nnkern.hidden_size"
	metaLayerSizes = "nnkern.layer_sizes"

	formatVersion = "1"
)

func (d Descriptor) metadata() map[string]string {
	meta := map[string]string{
		metaFormat: formatVersion,
		metaName:   d.Name,
		metaKind:   string(d.Kind),
	}
	setInt := func(key string, v int) {
		if v != 0 {
			meta[key] = strconv.Itoa(v)
		}
	}
	setInt(metaInSize, d.InSize)
	setInt(metaOutSize, d.OutSize)
	setInt(metaHiddenSize, d.HiddenSize)
	if len(d.LayerSizes) > 0 {
		parts := make([]string, len(d.LayerSizes))
		for i, s := range d.LayerSizes {
			parts[i] = strconv.Itoa(s)
		}
		meta[metaLayerSizes] = strings.Join(parts, ",")
	}
	return meta
}

func descriptorFromMetadata(meta map[string]string) (Descriptor, error) {
	if v := meta[metaFormat]; v != formatVersion {
		return Descriptor{}, fmt.Errorf("unsupported weight file format %q", v)
	}
	kind, err := ParseKind(meta[metaKind])
	if err != nil {
		return Descriptor{}, err
	}
	d := Descriptor{Name: meta[metaName], Kind: kind}
	for key, dst := range map[string]*int{metaInSize: &d.InSize, metaOutSize: &d.OutSize, metaHiddenSize: &d.HiddenSize} {
		v, ok := meta[key]
		if !ok {
			continue
		}
		if *dst, err = strconv.Atoi(v); err != nil {
			return Descriptor{}, fmt.Errorf("metadata %s: %w", key, err)
		}
	}
	if v := meta[metaLayerSizes]; v != "" {
		for _, part := range strings.Split(v, ",") {
			s, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Descriptor{}, fmt.Errorf("metadata %s: %w", metaLayerSizes, err)
			}
			d.LayerSizes = append(d.LayerSizes, s)
		}
	}
	return d, d.Validate()
}
