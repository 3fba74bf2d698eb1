package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// EnvModelsDir names the models directory when none is configured.
const EnvModelsDir = "NNKERN_MODELS_DIR"

const weightExt = ".safetensors"

var ErrModelNotFound = errors.New("model not found")

// Registry resolves model names to weight files in a directory and caches
// the loaded models. A cached model is reloaded when its file changes.
type Registry struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*registryEntry
}

type registryEntry struct {
	model   *Model
	modTime time.Time
	size    int64
}

// NewRegistry serves models from dir, or from $NNKERN_MODELS_DIR when dir is
// empty.
func NewRegistry(dir string) *Registry {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(EnvModelsDir))
	}
	return &Registry{dir: dir, cache: make(map[string]*registryEntry)}
}

func (r *Registry) Dir() string {
	return r.dir
}

// Get returns the model called name. name may also be a path to a weight
// file.
func (r *Registry) Get(name string) (*Model, error) {
	path, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	entry, ok := r.cache[path]
	r.mu.Unlock()
	if ok && entry.modTime.Equal(st.ModTime()) && entry.size == st.Size() {
		return entry.model, nil
	}

	m, err := Load(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[path] = &registryEntry{model: m, modTime: st.ModTime(), size: st.Size()}
	return m, nil
}

// List returns the descriptors of every weight file in the directory,
// sorted by name. Only file headers are read.
func (r *Registry) List() ([]Descriptor, error) {
	paths, err := r.discover()
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(paths))
	for _, p := range paths {
		d, err := LoadDescriptorFromWeights(p)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *Registry) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrModelNotFound)
	}
	if strings.ContainsRune(name, filepath.Separator) || (r.dir == "" && strings.HasSuffix(strings.ToLower(name), weightExt)) {
		return filepath.Clean(name), nil
	}
	if r.dir == "" {
		return "", fmt.Errorf("models dir is required to resolve model %q", name)
	}
	for _, cand := range []string{name, name + weightExt} {
		p := filepath.Join(r.dir, cand)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	// Fall back to the name recorded in each file's header.
	paths, err := r.discover()
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if d, err := LoadDescriptorFromWeights(p); err == nil && d.Name == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrModelNotFound, name, r.dir)
}

func (r *Registry) discover() ([]string, error) {
	if r.dir == "" {
		return nil, errors.New("models dir is not configured")
	}
	ents, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), weightExt) {
			continue
		}
		paths = append(paths, filepath.Join(r.dir, e.Name()))
	}
	return paths, nil
}
