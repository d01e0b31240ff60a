package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(t *testing.T, opts ...Option) (*Host, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	h, err := NewHost(append([]Option{WithOutput(&out)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, &out
}

func TestNewHost_Options(t *testing.T) {
	_, err := NewHost(WithNodeCapacity(0))
	assert.Error(t, err)

	_, err = NewHost(WithAllocator("arena"))
	assert.Error(t, err)

	h, err := NewHost(WithNodeCapacity(3), WithAllocator("pool"), WithInstructionLimit(100), WithExecutionTimeout(time.Second))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, err = h.RunString(context.Background(), "return 1")
	assert.ErrorIs(t, err, ErrHostClosed)
}

func TestRunString_ReturnsList(t *testing.T) {
	h, _ := newHost(t, WithNodeCapacity(4))

	l, err := h.RunString(context.Background(), `
local ulist = require("ulist")
local l = ulist.new()
for i = 1, 10 do l:push_back(i) end
l:push_front("head")
l:insert(3, true)
l:insert(l:len() + 1, 2.5)
return l
`)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, 4, l.NodeCapacity())
	assert.Equal(t, []any{"head", int64(1), true, int64(2), int64(3), int64(4), int64(5),
		int64(6), int64(7), int64(8), int64(9), int64(10), 2.5}, l.Slice())
}

func TestRunString_NoListReturned(t *testing.T) {
	h, _ := newHost(t)

	l, err := h.RunString(context.Background(), `return 42`)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = h.RunString(context.Background(), `local x = 1`)
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestRunString_Errors(t *testing.T) {
	h, _ := newHost(t)

	_, err := h.RunString(context.Background(), `this is not lua`)
	assert.ErrorContains(t, err, "loading")

	_, err = h.RunString(context.Background(), `error("boom")`)
	assert.ErrorContains(t, err, "boom")

	_, err = h.RunString(context.Background(), `require("ulist").new(-1)`)
	assert.ErrorContains(t, err, "capacity")
}

func TestSandbox(t *testing.T) {
	h, out := newHost(t)

	tests := []struct {
		name string
		code string
	}{
		{"os", `require("os")`},
		{"io", `require("io")`},
		{"debug", `require("debug")`},
		{"dofile", `dofile("/etc/passwd")`},
		{"loadstring", `loadstring("return 1")()`},
		{"load", `load(function() return nil end)`},
		{"os global", `os.exit(1)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.RunString(context.Background(), tt.code)
			assert.Error(t, err)
		})
	}

	_, err := h.RunString(context.Background(), `
local s = require("string")
local m = require("math")
print(s.upper("ok"), m.max(1, 2))
`)
	require.NoError(t, err)
	assert.Equal(t, "OK\t2\n", out.String())
}

func TestInstructionLimit(t *testing.T) {
	h, _ := newHost(t, WithInstructionLimit(50))

	_, err := h.RunString(context.Background(), `
local l = require("ulist").new()
for i = 1, 100 do l:push_back(i) end
`)
	assert.ErrorIs(t, err, ErrInstructionLimit)

	// the budget is per run
	_, err = h.RunString(context.Background(), `
local l = require("ulist").new()
for i = 1, 10 do l:push_back(i) end
`)
	assert.NoError(t, err)
}

func TestExecutionTimeout(t *testing.T) {
	h, _ := newHost(t, WithExecutionTimeout(50*time.Millisecond))

	_, err := h.RunString(context.Background(), `while true do end`)
	assert.ErrorIs(t, err, ErrExecutionTimeout)
}

func TestCanceledContext(t *testing.T) {
	h, _ := newHost(t, WithExecutionTimeout(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.RunString(ctx, `while true do end`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFile(t *testing.T) {
	h, out := newHost(t)
	path := filepath.Join(t.TempDir(), "erase.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
local l = require("ulist").new(10)
for i = 0, 999 do l:push_back(i) end
l:erase(778)
print(l:len(), l:get(778))
return l
`), 0o644))

	l, err := h.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 999, l.Len())
	assert.Equal(t, "999\t778\n", out.String())

	_, err = h.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}
