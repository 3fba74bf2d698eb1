package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/nnkern/internal/model"
)

// openModel loads the model named by ref, which may be a path or a name in
// modelsDir. An empty ref picks the only model in modelsDir.
func openModel(ref, modelsDir string, stderr io.Writer) (*model.Model, error) {
	reg := model.NewRegistry(modelsDir)
	ref = strings.TrimSpace(ref)
	if ref != "" {
		if st, err := os.Stat(ref); err == nil && !st.IsDir() {
			return model.Load(ref)
		}
		return reg.Get(ref)
	}

	if reg.Dir() == "" {
		return nil, fmt.Errorf("--model or --models-path is required unless %s is set", model.EnvModelsDir)
	}
	descs, err := reg.List()
	if err != nil {
		return nil, err
	}
	switch len(descs) {
	case 0:
		return nil, fmt.Errorf("no .safetensors models found in %s", reg.Dir())
	case 1:
		_, _ = fmt.Fprintf(stderr, "using model %s\n", descs[0].Name)
		return reg.Get(descs[0].Name)
	default:
		names := make([]string, len(descs))
		for i, d := range descs {
			names[i] = d.Name
		}
		return nil, fmt.Errorf("multiple models found in %s (%s); set --model", reg.Dir(), strings.Join(names, ", "))
	}
}

// resolveInitOut picks where init writes. An explicit flag wins, then
// <modelsDir>/<name>.safetensors, then ./<name>.safetensors.
func resolveInitOut(outFlag, name, modelsDir string) (string, error) {
	outFlag = strings.TrimSpace(outFlag)
	var out string
	switch {
	case outFlag != "":
		out = filepath.Clean(outFlag)
	case strings.TrimSpace(name) == "":
		return "", fmt.Errorf("--out is required for a descriptor without a name")
	case strings.TrimSpace(modelsDir) != "":
		out = filepath.Join(modelsDir, name+".safetensors")
	default:
		out = name + ".safetensors"
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	return out, nil
}
