package renderer

import (
	"github.com/JoeGuida/renderer/internal/hal"
)

var clearColor = [4]float32{0, 0, 0, 1}

// CreateCommandPool creates a pool whose buffers can be reset one at a time,
// since the frame loop re-records its single buffer every frame.
func CreateCommandPool(device hal.Device, graphicsFamily int) (hal.CommandPool, error) {
	pool, err := device.CreateCommandPool(graphicsFamily, true)
	if err != nil || pool == nil {
		return nil, creationFailed(err, "create command pool for queue family %d", graphicsFamily)
	}
	return pool, nil
}

func CreateCommandBuffer(device hal.Device, pool hal.CommandPool) (hal.CommandBuffer, error) {
	buffer, err := device.AllocateCommandBuffer(pool)
	if err != nil || buffer == nil {
		return nil, creationFailed(err, "allocate command buffer")
	}
	return buffer, nil
}

// RecordCommandBuffer records the clear and the three vertex draw into buffer,
// targeting framebuffer over the full swapchain extent.
func RecordCommandBuffer(device hal.Device, sc *Swapchain, buffer hal.CommandBuffer, renderPass hal.RenderPass, framebuffer hal.Framebuffer, pipeline *Pipeline) error {
	if err := device.BeginCommandBuffer(buffer, true); err != nil {
		return markf(ErrCommandRecording, err, "begin command buffer")
	}

	err := device.CmdBeginRenderPass(buffer, hal.RenderPassBeginInfo{
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea:  hal.Rect2D{Extent: sc.Extent},
		ClearColor:  clearColor,
	})
	if err != nil {
		return markf(ErrCommandRecording, err, "begin render pass")
	}

	device.CmdBindPipeline(buffer, pipeline.Handle)
	device.CmdSetViewport(buffer, fullViewport(sc.Extent))
	device.CmdSetScissor(buffer, hal.Rect2D{Extent: sc.Extent})
	device.CmdDraw(buffer, 3, 1)
	device.CmdEndRenderPass(buffer)

	if err := device.EndCommandBuffer(buffer); err != nil {
		return markf(ErrCommandRecording, err, "end command buffer")
	}
	return nil
}
