package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLLoader_Load(t *testing.T) {
	fsys := newMemFS().add("/ulist.toml", `
[list]
nodeCapacity = 16
allocator = "pool"

[log]
level = "debug"
`)

	config, err := NewTOMLLoaderWithFS(fsys, "/ulist.toml").Load()
	require.NoError(t, err)

	val, ok := GetByPath(config, "list.nodeCapacity")
	require.True(t, ok)
	assert.Equal(t, int64(16), val)

	val, ok = GetByPath(config, "list.allocator")
	require.True(t, ok)
	assert.Equal(t, "pool", val)

	val, ok = GetByPath(config, "log.level")
	require.True(t, ok)
	assert.Equal(t, "debug", val)
}

func TestLoaders_MissingFile(t *testing.T) {
	fsys := newMemFS()
	for _, path := range []string{"/none.toml", "/none.yaml"} {
		l, err := ForPath(fsys, path)
		require.NoError(t, err)
		config, err := l.Load()
		require.NoError(t, err, path)
		assert.Nil(t, config, path)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := newMemFS().add("/bad.toml", "[list\nnodeCapacity = 4\n")

	_, err := NewTOMLLoaderWithFS(fsys, "/bad.toml").Load()
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "got %T", err)
	assert.Equal(t, "/bad.toml", perr.Path)
	assert.Positive(t, perr.Line)
	assert.Contains(t, perr.Error(), "at line")
}

func TestTOMLLoader_Includes(t *testing.T) {
	fsys := newMemFS().
		add("/etc/ulist/base.toml", `
[list]
nodeCapacity = 4
allocator = "pool"
`).
		add("/etc/ulist/ulist.toml", `
"@include" = "base.toml"

[list]
nodeCapacity = 32
`)

	config, err := NewTOMLLoaderWithFS(fsys, "/etc/ulist/ulist.toml").Load()
	require.NoError(t, err)

	_, hasInclude := config["@include"]
	assert.False(t, hasInclude)

	val, _ := GetByPath(config, "list.nodeCapacity")
	assert.Equal(t, int64(32), val)
	val, _ = GetByPath(config, "list.allocator")
	assert.Equal(t, "pool", val)
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	fsys := newMemFS().
		add("/a.toml", `"@include" = "b.toml"`).
		add("/b.toml", `"@include" = "a.toml"`)

	_, err := NewTOMLLoaderWithFS(fsys, "/a.toml").Load()
	require.ErrorIs(t, err, ErrIncludeDepthExceeded)
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[script]\ninstructionLimit = 500\n"))
	require.NoError(t, err)

	val, ok := GetByPath(config, "script.instructionLimit")
	require.True(t, ok)
	assert.Equal(t, int64(500), val)
}

func TestYAMLLoader_Load(t *testing.T) {
	fsys := newMemFS().add("/ulist.yml", `
list:
  nodeCapacity: 3
replay:
  stopOnMismatch: true
`)

	config, err := NewYAMLLoaderWithFS(fsys, "/ulist.yml").Load()
	require.NoError(t, err)

	val, ok := GetByPath(config, "list.nodeCapacity")
	require.True(t, ok)
	assert.Equal(t, 3, val)

	val, ok = GetByPath(config, "replay.stopOnMismatch")
	require.True(t, ok)
	assert.Equal(t, true, val)
}

func TestYAMLLoader_ParseError(t *testing.T) {
	fsys := newMemFS().add("/bad.yaml", "list: [1, 2\n")

	_, err := NewYAMLLoaderWithFS(fsys, "/bad.yaml").Load()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "/bad.yaml", perr.Path)
}

func TestYAMLLoader_EmptyDocument(t *testing.T) {
	fsys := newMemFS().add("/empty.yaml", "")

	config, err := NewYAMLLoaderWithFS(fsys, "/empty.yaml").Load()
	require.NoError(t, err)
	assert.NotNil(t, config)
	assert.Empty(t, config)
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want any
		err  error
	}{
		{"ulist.toml", &TOMLLoader{}, nil},
		{"ULIST.TOML", &TOMLLoader{}, nil},
		{"ulist.yaml", &YAMLLoader{}, nil},
		{"ulist.yml", &YAMLLoader{}, nil},
		{"ulist.json", nil, ErrUnsupportedFormat},
		{"ulist", nil, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l, err := ForPath(newMemFS(), tt.path)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, l)
		})
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"list": map[string]any{"nodeCapacity": int64(10), "allocator": "heap"},
		"log":  map[string]any{"level": "info"},
	}
	src := map[string]any{
		"list":   map[string]any{"allocator": "pool"},
		"replay": map[string]any{"validate": false},
	}

	got := DeepMerge(dst, src)

	assert.Equal(t, map[string]any{
		"list":   map[string]any{"nodeCapacity": int64(10), "allocator": "pool"},
		"log":    map[string]any{"level": "info"},
		"replay": map[string]any{"validate": false},
	}, got)
	assert.Equal(t, map[string]any{"a": 1}, DeepMerge(nil, map[string]any{"a": 1}))
}

func TestEnvLoader_Load(t *testing.T) {
	t.Setenv("ULIST_LIST_NODE_CAPACITY", "1")
	t.Setenv("ULIST_LOG_LEVEL", "debug")
	t.Setenv("ULIST_REPLAY_STOP_ON_MISMATCH", "yes")
	t.Setenv("ULIST_ALLOCATOR", "pool")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	require.NoError(t, err)

	val, _ := GetByPath(config, "list.nodeCapacity")
	assert.Equal(t, int64(1), val)
	val, _ = GetByPath(config, "log.level")
	assert.Equal(t, "debug", val)
	val, _ = GetByPath(config, "replay.stopOnMismatch")
	assert.Equal(t, true, val)
	val, _ = GetByPath(config, "list.allocator")
	assert.Equal(t, "pool", val)
}

func TestEnvLoader_MappingWins(t *testing.T) {
	t.Setenv("ULIST_LIST_NODE_CAPACITY", "8")
	t.Setenv("ULIST_CAPACITY", "12")

	config, err := NewEnvLoader(DefaultEnvPrefix).Load()
	require.NoError(t, err)

	val, _ := GetByPath(config, "list.nodeCapacity")
	assert.Equal(t, int64(12), val)
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)

	tests := []struct {
		env  string
		want string
	}{
		{"ULIST_LIST_NODE_CAPACITY", "list.nodeCapacity"},
		{"ULIST_LOG_LEVEL", "log.level"},
		{"ULIST_SCRIPT_INSTRUCTION_LIMIT", "script.instructionLimit"},
		{"ULIST_SIMPLE", "simple"},
		{"ULIST_", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, l.envToPath(tt.env), tt.env)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"OFF", false},
		{"0", int64(0)},
		{"1", int64(1)},
		{"-42", int64(-42)},
		{"2.5", 2.5},
		{"json", "json"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseValue(tt.in), tt.in)
	}
}
