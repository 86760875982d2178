// Package input maps keyboard scancodes to actions and dispatches them to
// registered callbacks.
package input

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionForward
	ActionBack
	ActionLeft
	ActionRight
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionQuit:
		return "quit"
	case ActionForward:
		return "forward"
	case ActionBack:
		return "back"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// DefaultBindings binds Escape to quit and WASD to movement.
var DefaultBindings = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE: ActionQuit,
	sdl.SCANCODE_W:      ActionForward,
	sdl.SCANCODE_S:      ActionBack,
	sdl.SCANCODE_A:      ActionLeft,
	sdl.SCANCODE_D:      ActionRight,
}

type handler struct {
	fn     func()
	repeat bool
}

// State owns the bindings, the pressed set and the callbacks for one window.
// It is not safe for concurrent use; feed it from the thread that pumps
// window events.
type State struct {
	bindings map[sdl.Scancode]Action
	handlers map[Action][]handler
	down     map[Action]bool
	quit     bool
}

// New returns a State with DefaultBindings.
func New() *State {
	s := &State{
		bindings: make(map[sdl.Scancode]Action, len(DefaultBindings)),
		handlers: make(map[Action][]handler),
		down:     make(map[Action]bool),
	}
	for code, action := range DefaultBindings {
		s.bindings[code] = action
	}
	return s
}

// Remap moves action to code. Any other key bound to action is unbound, and
// whatever code was bound to before is replaced.
func (s *State) Remap(action Action, code sdl.Scancode) {
	for bound, a := range s.bindings {
		if a == action {
			delete(s.bindings, bound)
		}
	}
	s.bindings[code] = action
}

// Action reports what code is bound to.
func (s *State) Action(code sdl.Scancode) Action {
	return s.bindings[code]
}

// On registers fn for presses of action. With repeat set, fn also runs for
// the key repeats the window system generates while the key is held.
func (s *State) On(action Action, repeat bool, fn func()) {
	s.handlers[action] = append(s.handlers[action], handler{fn: fn, repeat: repeat})
}

// Key applies a single key transition.
func (s *State) Key(code sdl.Scancode, pressed, repeat bool) {
	action, ok := s.bindings[code]
	if !ok || action == ActionNone {
		return
	}

	if !pressed {
		s.down[action] = false
		return
	}

	s.down[action] = true
	if action == ActionQuit {
		s.quit = true
	}

	for _, h := range s.handlers[action] {
		if repeat && !h.repeat {
			continue
		}
		h.fn()
	}
}

func (s *State) HandleKeyboard(e *sdl.KeyboardEvent) {
	s.Key(e.Keysym.Scancode, e.State == sdl.PRESSED, e.Repeat != 0)
}

// Down reports whether a key bound to action is held.
func (s *State) Down(action Action) bool {
	return s.down[action]
}

// Axis folds the held movement actions into a direction: x is positive to the
// right, y is positive forward. Opposite keys cancel out.
func (s *State) Axis() (x, y int) {
	if s.down[ActionRight] {
		x++
	}
	if s.down[ActionLeft] {
		x--
	}
	if s.down[ActionForward] {
		y++
	}
	if s.down[ActionBack] {
		y--
	}
	return x, y
}

func (s *State) RequestQuit() {
	s.quit = true
}

func (s *State) QuitRequested() bool {
	return s.quit
}
