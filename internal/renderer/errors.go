package renderer

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by this package is marked with exactly one
// of them; classify with errors.Is.
var (
	ErrUnavailableCapability = errors.New("unavailable capability")
	ErrNoSuitableDevice      = errors.New("no suitable device")
	ErrQueueFamilyNotFound   = errors.New("queue family not found")
	ErrResourceCreation      = errors.New("resource creation failed")
	ErrCommandRecording      = errors.New("command recording failed")
	ErrFrameAcquire          = errors.New("frame acquire failed")
	ErrFrameSubmit           = errors.New("frame submit failed")
	ErrFramePresent          = errors.New("frame present failed")

	// ErrSwapchainStale asks for a swapchain rebuild. DrawFrame consumes it and
	// never returns it.
	ErrSwapchainStale = errors.New("swapchain out of date")
)

func creationFailed(err error, format string, args ...any) error {
	if err == nil {
		err = errors.New("driver returned no handle")
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrResourceCreation)
}

func markf(kind error, err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Newf(format, args...), kind)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}
