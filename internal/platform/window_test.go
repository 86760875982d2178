package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/JoeGuida/renderer/internal/input"
)

func TestQuitEventStops(t *testing.T) {
	w := &Window{}
	assert.True(t, w.handleEvent(&sdl.QuitEvent{}, Hooks{}))
	assert.True(t, w.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_CLOSE}, Hooks{}))
}

func TestMinimizeAndRestore(t *testing.T) {
	w := &Window{}

	assert.False(t, w.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED}, Hooks{}))
	assert.True(t, w.minimized)
	width, height := w.ClientSize()
	assert.Zero(t, width)
	assert.Zero(t, height)

	w.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED}, Hooks{})
	assert.False(t, w.minimized)
}

func TestResizeCallsHook(t *testing.T) {
	w := &Window{}
	resized := 0
	hooks := Hooks{Resized: func() { resized++ }}

	w.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED}, hooks)
	w.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED}, hooks)
	assert.Equal(t, 2, resized)

	assert.False(t, w.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED}, Hooks{}))
}

func TestKeyboardFeedsInput(t *testing.T) {
	w := &Window{}
	state := input.New()
	hooks := Hooks{Input: state}

	stop := w.handleEvent(&sdl.KeyboardEvent{State: sdl.PRESSED, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_W}}, hooks)
	assert.False(t, stop)
	assert.True(t, state.Down(input.ActionForward))

	stop = w.handleEvent(&sdl.KeyboardEvent{State: sdl.PRESSED, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}}, hooks)
	assert.True(t, stop)
}

func TestKeyboardWithoutInputIsIgnored(t *testing.T) {
	w := &Window{}
	assert.False(t, w.handleEvent(&sdl.KeyboardEvent{State: sdl.PRESSED, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}}, Hooks{}))
}
