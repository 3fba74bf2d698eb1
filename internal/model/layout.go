package model

import "fmt"

// Section is a named row-major block of the weight blob.
type Section struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	// Bias is set when the block is a bias vector, or for Dense blocks whose
	// last column holds each row's bias.
	Bias       bool `json:"bias,omitempty"`
	BiasColumn bool `json:"bias_column,omitempty"`
}

var gateNames = map[Kind][]string{
	KindGRU:  {"z", "r", "h"},
	KindLSTM: {"i", "f", "o", "g"},
	KindRRU:  {"c", "r"},
}

// Layout lists the sections of the weight blob in storage order. The
// sections tile the blob exactly.
func (d Descriptor) Layout() []Section {
	var out []Section
	off := 0
	add := func(s Section) {
		s.Offset = off
		s.Length = s.Rows * s.Cols
		off += s.Length
		out = append(out, s)
	}

	switch d.Kind {
	case KindDense:
		add(Section{Name: "dense", Rows: d.OutSize, Cols: d.InSize + 1, BiasColumn: true})
	case KindMLP:
		for l := 1; l < len(d.LayerSizes); l++ {
			add(Section{
				Name:       fmt.Sprintf("layer%d", l-1),
				Rows:       d.LayerSizes[l],
				Cols:       d.LayerSizes[l-1] + 1,
				BiasColumn: true,
			})
		}
	case KindGRU, KindLSTM, KindRRU:
		gates := gateNames[d.Kind]
		for _, g := range gates {
			add(Section{Name: "W_" + g, Rows: d.HiddenSize, Cols: d.InSize})
		}
		for _, g := range gates {
			add(Section{Name: "U_" + g, Rows: d.HiddenSize, Cols: d.HiddenSize})
		}
		for _, g := range gates {
			add(Section{Name: "b_" + g, Rows: 1, Cols: d.HiddenSize, Bias: true})
		}
	}
	return out
}

// Section returns the view of the named section of weights.
func (m *Model) Section(name string) ([]float32, bool) {
	for _, s := range m.Layout() {
		if s.Name == name {
			return m.Weights[s.Offset : s.Offset+s.Length], true
		}
	}
	return nil, false
}
