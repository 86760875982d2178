package renderer

// owned ties a handle to the function that releases it. Release runs the
// function at most once, so a teardown that reaches the same handle twice is
// harmless.
type owned[H any] struct {
	handle  H
	release func(H)
	live    bool
}

func own[H any](handle H, release func(H)) *owned[H] {
	return &owned[H]{handle: handle, release: release, live: true}
}

func (o *owned[H]) Get() H {
	if o == nil {
		var zero H
		return zero
	}
	return o.handle
}

func (o *owned[H]) Live() bool {
	return o != nil && o.live
}

func (o *owned[H]) Release() {
	if o == nil || !o.live {
		return
	}
	o.live = false
	o.release(o.handle)
}
