package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDescriptorValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		desc Descriptor
		err  error
	}{
		{"dense", Descriptor{Kind: KindDense, InSize: 2, OutSize: 1}, nil},
		{"dense no outputs", Descriptor{Kind: KindDense, InSize: 2}, ErrShape},
		{"mlp", Descriptor{Kind: KindMLP, LayerSizes: []int{4, 8, 2}}, nil},
		{"mlp single layer", Descriptor{Kind: KindMLP, LayerSizes: []int{4}}, ErrShape},
		{"mlp zero width", Descriptor{Kind: KindMLP, LayerSizes: []int{4, 0, 2}}, ErrShape},
		{"gru", Descriptor{Kind: KindGRU, InSize: 3, HiddenSize: 5}, nil},
		{"lstm no hidden", Descriptor{Kind: KindLSTM, InSize: 3}, ErrShape},
		{"unknown", Descriptor{Kind: "conv", InSize: 1}, ErrUnknownKind},
	}
	for _, tt := range tests {
		if err := tt.desc.Validate(); !errors.Is(err, tt.err) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.err)
		}
	}
}

func TestDescriptorWidths(t *testing.T) {
	t.Parallel()
	mlp := Descriptor{Kind: KindMLP, LayerSizes: []int{4, 8, 2}}
	if mlp.InputWidth() != 4 || mlp.OutputWidth() != 2 || mlp.WeightCount() != 8*5+2*9 {
		t.Fatalf("mlp widths %d %d %d", mlp.InputWidth(), mlp.OutputWidth(), mlp.WeightCount())
	}
	lstm := Descriptor{Kind: KindLSTM, InSize: 3, HiddenSize: 5}
	if lstm.InputWidth() != 3 || lstm.OutputWidth() != 5 || !lstm.Recurrent() {
		t.Fatalf("lstm widths %d %d", lstm.InputWidth(), lstm.OutputWidth())
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()
	if k, err := ParseKind(" GRU "); err != nil || k != KindGRU {
		t.Fatalf("ParseKind(GRU) = %q, %v", k, err)
	}
	if _, err := ParseKind("transformer"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestLoadDescriptorYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "net.yaml")
	src := "name: classifier\nkind: MLP\nlayer_sizes: [4, 16, 3]\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor: %v", err)
	}
	if d.Name != "classifier" || d.Kind != KindMLP || len(d.LayerSizes) != 3 || d.LayerSizes[1] != 16 {
		t.Fatalf("unexpected descriptor %+v", d)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("kind: gru\nin_size: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDescriptor(bad); !errors.Is(err, ErrShape) {
		t.Fatalf("missing hidden_size: got %v", err)
	}
}

func TestMetadataCarriesDescriptor(t *testing.T) {
	t.Parallel()
	d := Descriptor{Name: "m", Kind: KindMLP, LayerSizes: []int{3, 5, 1}}
	got, err := descriptorFromMetadata(d.metadata())
	if err != nil {
		t.Fatalf("descriptorFromMetadata: %v", err)
	}
	if got.Name != d.Name || got.Kind != d.Kind || len(got.LayerSizes) != 3 || got.LayerSizes[2] != 1 {
		t.Fatalf("got %+v", got)
	}
	if _, err := descriptorFromMetadata(map[string]string{metaKind: "gru"}); err == nil {
		t.Fatal("expected an error without a format version")
	}
}
