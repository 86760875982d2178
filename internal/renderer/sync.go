package renderer

import (
	"github.com/JoeGuida/renderer/internal/hal"
)

// Sync is the synchronization set for the single frame in flight.
type Sync struct {
	ImageAvailable hal.Semaphore
	RenderFinished hal.Semaphore
	// InFlight starts signaled so the first frame does not wait.
	InFlight hal.Fence
}

func CreateSyncObjects(device hal.Device) (*Sync, error) {
	s := &Sync{}

	var err error
	s.ImageAvailable, err = device.CreateSemaphore()
	if err != nil || s.ImageAvailable == nil {
		return nil, creationFailed(err, "create image available semaphore")
	}

	s.RenderFinished, err = device.CreateSemaphore()
	if err != nil || s.RenderFinished == nil {
		s.Destroy(device)
		return nil, creationFailed(err, "create render finished semaphore")
	}

	s.InFlight, err = device.CreateFence(true)
	if err != nil || s.InFlight == nil {
		s.Destroy(device)
		return nil, creationFailed(err, "create in flight fence")
	}

	return s, nil
}

func (s *Sync) Destroy(device hal.Device) {
	if s == nil {
		return
	}
	if s.ImageAvailable != nil {
		device.DestroySemaphore(s.ImageAvailable)
		s.ImageAvailable = nil
	}
	if s.RenderFinished != nil {
		device.DestroySemaphore(s.RenderFinished)
		s.RenderFinished = nil
	}
	if s.InFlight != nil {
		device.DestroyFence(s.InFlight)
		s.InFlight = nil
	}
}
