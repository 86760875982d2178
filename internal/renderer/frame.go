package renderer

import (
	"github.com/cockroachdb/errors"

	"github.com/JoeGuida/renderer/internal/hal"
)

// FrameState tracks where DrawFrame is in the acquire, record, submit and
// present sequence. Outside DrawFrame it is always FrameIdle.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	}
	return "unknown"
}

type FrameStats struct {
	Presented uint64
	Skipped   uint64
	Rebuilds  uint64
}

// NotifyResized forces a swapchain rebuild after the next presented frame. The
// platform calls it when the window size changes, since not every presentation
// engine reports out of date on resize.
func (c *Context) NotifyResized() {
	c.resized = true
}

// DrawFrame renders and presents one frame.
//
// A window with an empty client area skips the frame without touching the
// driver. An out of date swapchain is rebuilt and the frame dropped. Every
// other failure is returned and should end the frame loop.
func (c *Context) DrawFrame() error {
	if err := c.checkLive(); err != nil {
		return err
	}

	width, height := c.window.ClientSize()
	if width <= 0 || height <= 0 {
		c.stats.Skipped++
		return nil
	}

	if !c.swapchain.Usable() {
		if err := c.rebuildSwapchain("window restored"); err != nil {
			return err
		}
		if !c.swapchain.Usable() {
			c.stats.Skipped++
			return nil
		}
	}

	defer func() { c.state = FrameIdle }()

	err := c.drawFrame()
	if errors.Is(err, ErrSwapchainStale) {
		c.logger.Printf("%v", err)
		return c.rebuildSwapchain("out of date")
	}
	if err != nil {
		c.logger.Printf("frame failed: %v", err)
		return err
	}

	c.stats.Presented++
	if c.resized {
		return c.rebuildSwapchain("window resized")
	}
	return nil
}

func (c *Context) drawFrame() error {
	device := c.device.Handle
	sync := c.sync.Get()
	sc := c.swapchain

	c.state = FrameAcquiring
	res, err := device.WaitForFence(sync.InFlight, hal.NoTimeout)
	if err != nil {
		return markf(ErrFrameAcquire, err, "wait for in flight fence")
	}
	if res != hal.Success {
		return markf(ErrFrameAcquire, nil, "wait for in flight fence: %s", res)
	}

	imageIndex, res, err := device.AcquireNextImage(sc.Handle, sync.ImageAvailable, hal.NoTimeout)
	switch {
	case res == hal.ErrorOutOfDate:
		return markf(ErrSwapchainStale, nil, "acquire next image: swapchain out of date")
	case err != nil:
		return markf(ErrFrameAcquire, err, "acquire next image")
	case res != hal.Success && res != hal.Suboptimal:
		return markf(ErrFrameAcquire, nil, "acquire next image: %s", res)
	case imageIndex < 0 || imageIndex >= len(sc.Framebuffers):
		return markf(ErrFrameAcquire, nil, "acquire next image: index %d out of range for %d images", imageIndex, len(sc.Framebuffers))
	}

	// Only reset once work is certain to be submitted, otherwise the next
	// wait would never return.
	if err := device.ResetFence(sync.InFlight); err != nil {
		return markf(ErrFrameSubmit, err, "reset in flight fence")
	}

	c.state = FrameRecording
	if err := device.ResetCommandBuffer(c.command); err != nil {
		return markf(ErrCommandRecording, err, "reset command buffer")
	}
	err = RecordCommandBuffer(device, sc, c.command, c.renderPass.Get(), sc.Framebuffers[imageIndex], c.pipeline.Get())
	if err != nil {
		return err
	}

	c.state = FrameSubmitted
	err = device.QueueSubmit(c.device.GraphicsQueue, hal.SubmitInfo{
		WaitSemaphores:   []hal.Semaphore{sync.ImageAvailable},
		WaitStages:       []hal.PipelineStage{hal.PipelineStageColorAttachmentOutput},
		CommandBuffers:   []hal.CommandBuffer{c.command},
		SignalSemaphores: []hal.Semaphore{sync.RenderFinished},
		Fence:            sync.InFlight,
	})
	if err != nil {
		return markf(ErrFrameSubmit, err, "submit draw commands")
	}

	c.state = FramePresenting
	res, err = device.QueuePresent(c.device.PresentQueue, hal.PresentInfo{
		WaitSemaphores: []hal.Semaphore{sync.RenderFinished},
		Swapchain:      sc.Handle,
		ImageIndex:     imageIndex,
	})
	switch {
	case res == hal.ErrorOutOfDate:
		return markf(ErrSwapchainStale, nil, "present: swapchain out of date")
	case err != nil:
		return markf(ErrFramePresent, err, "present image %d", imageIndex)
	case res != hal.Success && res != hal.Suboptimal:
		return markf(ErrFramePresent, nil, "present image %d: %s", imageIndex, res)
	}

	return nil
}

func (c *Context) rebuildSwapchain(reason string) error {
	width, height := c.window.ClientSize()
	next, err := RebuildSwapchain(width, height, c.device, c.instance.Get(), c.surface.Get(), c.renderPass.Get(), c.prefs, c.swapchain)
	if err != nil {
		c.logger.Printf("swapchain rebuild failed: %v", err)
		return err
	}

	c.swapchain = next
	c.resized = false
	c.stats.Rebuilds++
	c.logSwapchain("rebuilt (" + reason + ")")
	return nil
}
