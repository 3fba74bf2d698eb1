package model

import (
	"fmt"

	"github.com/samcharles93/nnkern/pkg/kernels"
)

// State holds the recurrent buffers of a batch. H is the hidden state
// carried between steps and C the LSTM cell state. Z and R are the last GRU
// gate activations and HPrev and CPrev the state before the last step.
// Buffers a kind does not use are nil.
type State struct {
	Kind   Kind
	Batch  int
	Hidden int

	H, C, Z, R   []float32
	HPrev, CPrev []float32
}

// NewState returns a zeroed state for batch rows.
func (m *Model) NewState(batch int) (*State, error) {
	if !m.Recurrent() {
		return nil, fmt.Errorf("%w: state for %s", ErrWrongKind, m.Kind)
	}
	if batch <= 0 {
		return nil, fmt.Errorf("%w: batch must be positive, have %d", ErrShape, batch)
	}
	n := batch * m.HiddenSize
	s := &State{
		Kind:   m.Kind,
		Batch:  batch,
		Hidden: m.HiddenSize,
		H:      make([]float32, n),
		HPrev:  make([]float32, n),
	}
	switch m.Kind {
	case KindGRU:
		s.Z = make([]float32, n)
		s.R = make([]float32, n)
	case KindLSTM:
		s.C = make([]float32, n)
		s.CPrev = make([]float32, n)
	}
	return s, nil
}

// Reset zeroes every buffer.
func (s *State) Reset() {
	for _, b := range [][]float32{s.H, s.C, s.Z, s.R, s.HPrev, s.CPrev} {
		clear(b)
	}
}

// HiddenBatch returns a copy of H as a batch.
func (s *State) HiddenBatch() Batch {
	return s.batchOf(s.H)
}

// CellBatch returns a copy of C, or an empty batch for kinds without one.
func (s *State) CellBatch() Batch {
	return s.batchOf(s.C)
}

func (s *State) batchOf(buf []float32) Batch {
	if buf == nil {
		return Batch{}
	}
	return Batch{Rows: s.Batch, Width: s.Hidden, Stride: s.Hidden, Data: append([]float32(nil), buf...)}
}

// Step advances s by one timestep with input in.
func (m *Model) Step(s *State, in Batch) error {
	if !m.Recurrent() {
		return fmt.Errorf("%w: step on %s", ErrWrongKind, m.Kind)
	}
	if s == nil || s.Kind != m.Kind || s.Hidden != m.HiddenSize {
		return fmt.Errorf("%w: state does not belong to %s %q", ErrShape, m.Kind, m.Name)
	}
	if in.Rows != s.Batch || in.Width != m.InSize {
		return fmt.Errorf("%w: input is %dx%d, state expects %dx%d", ErrShape, in.Rows, in.Width, s.Batch, m.InSize)
	}

	var err error
	switch m.Kind {
	case KindGRU:
		if err = kernels.CheckGRU(m.Weights, in.Data, s.H, s.Z, s.R, s.HPrev, m.InSize, m.HiddenSize, s.Batch, in.Stride); err == nil {
			kernels.GRUStep(m.Weights, in.Data, s.H, s.Z, s.R, s.HPrev, m.InSize, m.HiddenSize, s.Batch, in.Stride)
		}
	case KindLSTM:
		if err = kernels.CheckLSTM(m.Weights, in.Data, s.H, s.C, s.HPrev, s.CPrev, m.InSize, m.HiddenSize, s.Batch, in.Stride); err == nil {
			kernels.LSTMStep(m.Weights, in.Data, s.H, s.C, s.HPrev, s.CPrev, m.InSize, m.HiddenSize, s.Batch, in.Stride)
		}
	case KindRRU:
		if err = kernels.CheckRRU(m.Weights, in.Data, s.H, s.HPrev, m.InSize, m.HiddenSize, s.Batch, in.Stride); err == nil {
			kernels.RRUStep(m.Weights, in.Data, s.H, s.HPrev, m.InSize, m.HiddenSize, s.Batch, in.Stride)
		}
	}
	return err
}

// Sequence runs Step once per element of steps and returns the hidden state
// after each one. It stops at the first failing step.
func (m *Model) Sequence(s *State, steps []Batch) ([]Batch, error) {
	out := make([]Batch, 0, len(steps))
	for t, in := range steps {
		if err := m.Step(s, in); err != nil {
			return out, fmt.Errorf("step %d: %w", t, err)
		}
		out = append(out, s.HiddenBatch())
	}
	return out, nil
}
