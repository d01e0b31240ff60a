package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader loads configuration from TOML files.
//
// A top-level "@include" key (string or array of strings) names files
// loaded first and overridden by the including file.
type TOMLLoader struct {
	fs       FileSystem
	path     string
	maxDepth int
}

// DefaultIncludeDepth bounds nested @include chains.
const DefaultIncludeDepth = 8

// NewTOMLLoader creates a new TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fs FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fs, path: path, maxDepth: DefaultIncludeDepth}
}

// Load reads configuration from the configured path.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path, resolving includes
// relative to it.
func (l *TOMLLoader) LoadFrom(path string) (map[string]any, error) {
	return l.loadIncludes(path, l.maxDepth)
}

// LoadFromReader reads configuration from an io.Reader. Includes are not
// resolved.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseTOML("<reader>", data)
}

func (l *TOMLLoader) loadIncludes(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepthExceeded, path)
	}

	data, found, err := readSource(l.fs, path)
	if err != nil || !found {
		return nil, err
	}
	config, err := parseTOML(path, data)
	if err != nil {
		return nil, err
	}

	includes, ok := config["@include"]
	if !ok {
		return config, nil
	}
	delete(config, "@include")

	var names []string
	switch v := includes.(type) {
	case string:
		names = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: @include must be string or array of strings", path)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("%s: @include must be string or array of strings, got %T", path, includes)
	}

	base := make(map[string]any)
	for _, name := range names {
		incPath := name
		if !filepath.IsAbs(name) {
			incPath = filepath.Join(filepath.Dir(path), name)
		}
		inc, err := l.loadIncludes(incPath, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		base = DeepMerge(base, inc)
	}
	return DeepMerge(base, config), nil
}

func parseTOML(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}
