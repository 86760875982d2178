// Package platform owns the SDL window the triangle is drawn into and pumps
// its events.
package platform

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/JoeGuida/renderer/internal/input"
)

// Window must be created, pumped and closed from the thread that called
// runtime.LockOSThread.
type Window struct {
	window    *sdl.Window
	minimized bool
}

func Open(title string, width, height int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initialize sdl")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{window: window}, nil
}

// ClientSize is the drawable size in pixels, zero while minimized.
func (w *Window) ClientSize() (width, height int) {
	if w.minimized || w.window == nil {
		return 0, 0
	}
	if (w.window.GetFlags() & sdl.WINDOW_MINIMIZED) != 0 {
		return 0, 0
	}

	drawableWidth, drawableHeight := w.window.VulkanGetDrawableSize()
	return int(drawableWidth), int(drawableHeight)
}

// SurfaceTarget is what a backend needs to create a presentation surface.
func (w *Window) SurfaceTarget() any {
	return w.window
}

// RequiredExtensions lists the instance extensions SDL needs for surfaces on
// this platform.
func (w *Window) RequiredExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *Window) Close() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}

type Hooks struct {
	// Frame runs once per pass of the loop while the window is visible.
	Frame func() error
	// Resized runs after the window changed size.
	Resized func()
	Input   *input.State
}

// Run pumps events and calls hooks.Frame until the window is closed, quit is
// requested through hooks.Input or Frame fails. While minimized it blocks on
// the event queue instead of drawing.
func (w *Window) Run(hooks Hooks) error {
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if w.handleEvent(event, hooks) {
				return nil
			}
		}
		if hooks.Input != nil && hooks.Input.QuitRequested() {
			return nil
		}

		if w.minimized {
			if w.handleEvent(sdl.WaitEvent(), hooks) {
				return nil
			}
			continue
		}

		if hooks.Frame != nil {
			if err := hooks.Frame(); err != nil {
				return err
			}
		}
	}
}

// handleEvent applies one event and reports whether the loop should stop.
func (w *Window) handleEvent(event sdl.Event, hooks Hooks) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_MINIMIZED:
			w.minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			w.minimized = false
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			if hooks.Resized != nil {
				hooks.Resized()
			}
		case sdl.WINDOWEVENT_CLOSE:
			return true
		}
	case *sdl.KeyboardEvent:
		if hooks.Input != nil {
			hooks.Input.HandleKeyboard(e)
			return hooks.Input.QuitRequested()
		}
	}
	return false
}
