package vkng

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/JoeGuida/renderer/internal/hal"
)

type Device struct {
	driver    core1_0.CoreDeviceDriver
	swapchain khr_swapchain.ExtensionDriver
	instance  *Instance
	physical  core1_0.PhysicalDevice
}

var _ hal.Device = (*Device)(nil)

func (d *Device) Queue(family int) hal.Queue {
	return d.driver.GetQueue(family, 0)
}

func (d *Device) WaitIdle() error {
	_, err := d.driver.DeviceWaitIdle()
	return err
}

func (d *Device) CreateSwapchain(info hal.SwapchainInfo) (hal.Swapchain, error) {
	surface := handle[khr_surface.Surface](info.Surface)

	// Pre-transform follows the surface's current transform.
	capabilities, _, err := d.instance.surface.GetPhysicalDeviceSurfaceCapabilities(surface, d.physical)
	if err != nil {
		return nil, err
	}

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int
	if len(info.QueueFamilies) > 1 {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = info.QueueFamilies
	}

	swapchain, _, err := d.swapchain.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: surface,

		MinImageCount:    info.MinImageCount,
		ImageFormat:      core1_0.Format(info.Format.Format),
		ImageColorSpace:  khr_surface.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      core1_0.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    khr_surface.PresentMode(info.PresentMode),
		Clipped:        true,
		OldSwapchain:   handle[khr_swapchain.Swapchain](info.Old),
	})
	if err != nil {
		return nil, err
	}
	return swapchain, nil
}

func (d *Device) SwapchainImages(swapchain hal.Swapchain) ([]hal.Image, error) {
	images, _, err := d.swapchain.GetSwapchainImages(handle[khr_swapchain.Swapchain](swapchain))
	if err != nil {
		return nil, err
	}

	handles := make([]hal.Image, 0, len(images))
	for _, image := range images {
		handles = append(handles, image)
	}
	return handles, nil
}

func (d *Device) DestroySwapchain(swapchain hal.Swapchain) {
	d.swapchain.DestroySwapchain(handle[khr_swapchain.Swapchain](swapchain), nil)
}

func (d *Device) CreateImageView(image hal.Image, format hal.Format) (hal.ImageView, error) {
	imageView, _, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    handle[core1_0.Image](image),
		ViewType: core1_0.ImageViewType2D,
		Format:   core1_0.Format(format),
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, err
	}
	return imageView, nil
}

func (d *Device) DestroyImageView(view hal.ImageView) {
	d.driver.DestroyImageView(handle[core1_0.ImageView](view), nil)
}

func (d *Device) CreateFramebuffer(renderPass hal.RenderPass, view hal.ImageView, extent hal.Extent2D) (hal.Framebuffer, error) {
	framebuffer, _, err := d.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass: handle[core1_0.RenderPass](renderPass),
		Layers:     1,
		Attachments: []core1_0.ImageView{
			handle[core1_0.ImageView](view),
		},
		Width:  extent.Width,
		Height: extent.Height,
	})
	if err != nil {
		return nil, err
	}
	return framebuffer, nil
}

func (d *Device) DestroyFramebuffer(framebuffer hal.Framebuffer) {
	d.driver.DestroyFramebuffer(handle[core1_0.Framebuffer](framebuffer), nil)
}

func (d *Device) CreateRenderPass(info hal.RenderPassInfo) (hal.RenderPass, error) {
	attachments := make([]core1_0.AttachmentDescription, 0, len(info.Attachments))
	references := make([]core1_0.AttachmentReference, 0, len(info.Attachments))
	for idx, attachment := range info.Attachments {
		attachments = append(attachments, core1_0.AttachmentDescription{
			Format:         core1_0.Format(attachment.Format),
			Samples:        core1_0.Samples1,
			LoadOp:         core1_0.AttachmentLoadOp(attachment.LoadOp),
			StoreOp:        core1_0.AttachmentStoreOp(attachment.StoreOp),
			StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
			StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
			InitialLayout:  core1_0.ImageLayout(attachment.InitialLayout),
			FinalLayout:    core1_0.ImageLayout(attachment.FinalLayout),
		})
		references = append(references, core1_0.AttachmentReference{
			Attachment: idx,
			Layout:     core1_0.ImageLayout(info.ColorLayout),
		})
	}

	dependencies := make([]core1_0.SubpassDependency, 0, len(info.SubpassDependencies))
	for _, dependency := range info.SubpassDependencies {
		dependencies = append(dependencies, core1_0.SubpassDependency{
			SrcSubpass:    dependency.SrcSubpass,
			DstSubpass:    dependency.DstSubpass,
			SrcStageMask:  core1_0.PipelineStageFlags(dependency.SrcStageMask),
			SrcAccessMask: core1_0.AccessFlags(dependency.SrcAccessMask),
			DstStageMask:  core1_0.PipelineStageFlags(dependency.DstStageMask),
			DstAccessMask: core1_0.AccessFlags(dependency.DstAccessMask),
		})
	}

	renderPass, _, err := d.driver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: attachments,
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments:  references,
			},
		},
		SubpassDependencies: dependencies,
	})
	if err != nil {
		return nil, err
	}
	return renderPass, nil
}

func (d *Device) DestroyRenderPass(renderPass hal.RenderPass) {
	d.driver.DestroyRenderPass(handle[core1_0.RenderPass](renderPass), nil)
}

func (d *Device) CreateShaderModule(code []uint32) (hal.ShaderModule, error) {
	module, _, err := d.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (d *Device) DestroyShaderModule(module hal.ShaderModule) {
	d.driver.DestroyShaderModule(handle[core1_0.ShaderModule](module), nil)
}

func (d *Device) CreatePipelineLayout() (hal.PipelineLayout, error) {
	layout, _, err := d.driver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func (d *Device) DestroyPipelineLayout(layout hal.PipelineLayout) {
	d.driver.DestroyPipelineLayout(handle[core1_0.PipelineLayout](layout), nil)
}

func (d *Device) CreateGraphicsPipeline(info hal.GraphicsPipelineInfo) (hal.Pipeline, error) {
	stages := make([]core1_0.PipelineShaderStageCreateInfo, 0, len(info.Stages))
	for _, stage := range info.Stages {
		stages = append(stages, core1_0.PipelineShaderStageCreateInfo{
			Stage:  core1_0.ShaderStageFlags(stage.Stage),
			Module: handle[core1_0.ShaderModule](stage.Module),
			Name:   stage.EntryPoint,
		})
	}

	dynamicStates := make([]core1_0.DynamicState, 0, len(info.DynamicStates))
	for _, state := range info.DynamicStates {
		dynamicStates = append(dynamicStates, core1_0.DynamicState(state))
	}

	pipelines, _, err := d.driver.CreateGraphicsPipelines(nil, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages:           stages,
			VertexInputState: &core1_0.PipelineVertexInputStateCreateInfo{},
			InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
				Topology:               core1_0.PrimitiveTopology(info.Topology),
				PrimitiveRestartEnable: false,
			},
			ViewportState: &core1_0.PipelineViewportStateCreateInfo{
				Viewports: []core1_0.Viewport{viewport(info.Viewport)},
				Scissors:  []core1_0.Rect2D{rect(info.Scissor)},
			},
			RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
				DepthClampEnable:        false,
				RasterizerDiscardEnable: false,

				PolygonMode: core1_0.PolygonMode(info.PolygonMode),
				CullMode:    core1_0.CullModeFlags(info.CullMode),
				FrontFace:   core1_0.FrontFace(info.FrontFace),

				DepthBiasEnable: false,

				LineWidth: info.LineWidth,
			},
			MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
				SampleShadingEnable:  false,
				RasterizationSamples: core1_0.SampleCountFlags(info.Samples),
				MinSampleShading:     1.0,
			},
			ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
				LogicOpEnabled: false,
				LogicOp:        core1_0.LogicOpCopy,

				BlendConstants: [4]float32{0, 0, 0, 0},
				Attachments: []core1_0.PipelineColorBlendAttachmentState{
					{
						BlendEnabled:   info.BlendEnabled,
						ColorWriteMask: core1_0.ColorComponentFlags(info.WriteMask),
					},
				},
			},
			DynamicState: &core1_0.PipelineDynamicStateCreateInfo{
				DynamicStates: dynamicStates,
			},
			Layout:            handle[core1_0.PipelineLayout](info.Layout),
			RenderPass:        handle[core1_0.RenderPass](info.RenderPass),
			Subpass:           info.Subpass,
			BasePipelineIndex: -1,
		},
	)
	if err != nil {
		return nil, err
	}
	if len(pipelines) == 0 {
		return nil, errors.New("driver returned no pipeline")
	}
	return pipelines[0], nil
}

func (d *Device) DestroyPipeline(pipeline hal.Pipeline) {
	d.driver.DestroyPipeline(handle[core1_0.Pipeline](pipeline), nil)
}

func (d *Device) CreateCommandPool(family int, resettable bool) (hal.CommandPool, error) {
	var flags core1_0.CommandPoolCreateFlags
	if resettable {
		flags |= core1_0.CommandPoolCreateResetBuffer
	}

	pool, _, err := d.driver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            flags,
		QueueFamilyIndex: family,
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// DestroyCommandPool also frees every command buffer allocated from the pool.
func (d *Device) DestroyCommandPool(pool hal.CommandPool) {
	d.driver.DestroyCommandPool(handle[core1_0.CommandPool](pool), nil)
}

func (d *Device) AllocateCommandBuffer(pool hal.CommandPool) (hal.CommandBuffer, error) {
	buffers, _, err := d.driver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        handle[core1_0.CommandPool](pool),
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(buffers) == 0 {
		return nil, errors.New("driver returned no command buffer")
	}
	return buffers[0], nil
}

func (d *Device) ResetCommandBuffer(buffer hal.CommandBuffer) error {
	_, err := d.driver.ResetCommandBuffer(handle[core1_0.CommandBuffer](buffer), 0)
	return err
}

func (d *Device) BeginCommandBuffer(buffer hal.CommandBuffer, oneTime bool) error {
	var flags core1_0.CommandBufferUsageFlags
	if oneTime {
		flags |= core1_0.CommandBufferUsageOneTimeSubmit
	}

	_, err := d.driver.BeginCommandBuffer(handle[core1_0.CommandBuffer](buffer), core1_0.CommandBufferBeginInfo{
		Flags: flags,
	})
	return err
}

func (d *Device) EndCommandBuffer(buffer hal.CommandBuffer) error {
	_, err := d.driver.EndCommandBuffer(handle[core1_0.CommandBuffer](buffer))
	return err
}

func (d *Device) CmdBeginRenderPass(buffer hal.CommandBuffer, info hal.RenderPassBeginInfo) error {
	return d.driver.CmdBeginRenderPass(handle[core1_0.CommandBuffer](buffer), core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  handle[core1_0.RenderPass](info.RenderPass),
			Framebuffer: handle[core1_0.Framebuffer](info.Framebuffer),
			RenderArea:  rect(info.RenderArea),
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{info.ClearColor[0], info.ClearColor[1], info.ClearColor[2], info.ClearColor[3]},
			},
		})
}

func (d *Device) CmdBindPipeline(buffer hal.CommandBuffer, pipeline hal.Pipeline) {
	d.driver.CmdBindPipeline(handle[core1_0.CommandBuffer](buffer), core1_0.PipelineBindPointGraphics, handle[core1_0.Pipeline](pipeline))
}

func (d *Device) CmdSetViewport(buffer hal.CommandBuffer, v hal.Viewport) {
	d.driver.CmdSetViewport(handle[core1_0.CommandBuffer](buffer), viewport(v))
}

func (d *Device) CmdSetScissor(buffer hal.CommandBuffer, scissor hal.Rect2D) {
	d.driver.CmdSetScissor(handle[core1_0.CommandBuffer](buffer), rect(scissor))
}

func (d *Device) CmdDraw(buffer hal.CommandBuffer, vertexCount, instanceCount int) {
	d.driver.CmdDraw(handle[core1_0.CommandBuffer](buffer), vertexCount, instanceCount, 0, 0)
}

func (d *Device) CmdEndRenderPass(buffer hal.CommandBuffer) {
	d.driver.CmdEndRenderPass(handle[core1_0.CommandBuffer](buffer))
}

func (d *Device) CreateSemaphore() (hal.Semaphore, error) {
	semaphore, _, err := d.driver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, err
	}
	return semaphore, nil
}

func (d *Device) DestroySemaphore(semaphore hal.Semaphore) {
	d.driver.DestroySemaphore(handle[core1_0.Semaphore](semaphore), nil)
}

func (d *Device) CreateFence(signaled bool) (hal.Fence, error) {
	var flags core1_0.FenceCreateFlags
	if signaled {
		flags |= core1_0.FenceCreateSignaled
	}

	fence, _, err := d.driver.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: flags,
	})
	if err != nil {
		return nil, err
	}
	return fence, nil
}

func (d *Device) DestroyFence(fence hal.Fence) {
	d.driver.DestroyFence(handle[core1_0.Fence](fence), nil)
}

func (d *Device) WaitForFence(fence hal.Fence, timeout time.Duration) (hal.Result, error) {
	res, err := d.driver.WaitForFences(true, timeout, handle[core1_0.Fence](fence))
	return result(res, err)
}

func (d *Device) ResetFence(fence hal.Fence) error {
	_, err := d.driver.ResetFences(handle[core1_0.Fence](fence))
	return err
}

func (d *Device) AcquireNextImage(swapchain hal.Swapchain, signal hal.Semaphore, timeout time.Duration) (int, hal.Result, error) {
	semaphore := handle[core1_0.Semaphore](signal)
	imageIndex, res, err := d.swapchain.AcquireNextImage(handle[khr_swapchain.Swapchain](swapchain), timeout, &semaphore, nil)
	outcome, err := result(res, err)
	return imageIndex, outcome, err
}

func (d *Device) QueueSubmit(queue hal.Queue, info hal.SubmitInfo) error {
	var fence *core1_0.Fence
	if info.Fence != nil {
		f := handle[core1_0.Fence](info.Fence)
		fence = &f
	}

	waitStages := make([]core1_0.PipelineStageFlags, 0, len(info.WaitStages))
	for _, stage := range info.WaitStages {
		waitStages = append(waitStages, core1_0.PipelineStageFlags(stage))
	}

	_, err := d.driver.QueueSubmit(handle[core1_0.Queue](queue), fence,
		core1_0.SubmitInfo{
			WaitSemaphores:   semaphores(info.WaitSemaphores),
			WaitDstStageMask: waitStages,
			CommandBuffers:   commandBuffers(info.CommandBuffers),
			SignalSemaphores: semaphores(info.SignalSemaphores),
		},
	)
	return err
}

func (d *Device) QueuePresent(queue hal.Queue, info hal.PresentInfo) (hal.Result, error) {
	res, err := d.swapchain.QueuePresent(handle[core1_0.Queue](queue), khr_swapchain.PresentInfo{
		WaitSemaphores: semaphores(info.WaitSemaphores),
		Swapchains:     []khr_swapchain.Swapchain{handle[khr_swapchain.Swapchain](info.Swapchain)},
		ImageIndices:   []int{info.ImageIndex},
	})
	return result(res, err)
}

func (d *Device) Destroy() {
	d.driver.DestroyDevice(nil)
}

// result folds the return codes the frame loop recovers from into a
// hal.Result with no error. Everything else keeps its error.
func result(res common.VkResult, err error) (hal.Result, error) {
	switch res {
	case khr_swapchain.VKSuboptimal:
		return hal.Suboptimal, nil
	case khr_swapchain.VKErrorOutOfDate:
		return hal.ErrorOutOfDate, nil
	case core1_0.VKTimeout, core1_0.VKNotReady:
		return hal.Timeout, nil
	case core1_0.VKErrorDeviceLost:
		if err == nil {
			err = errors.New("device lost")
		}
		return hal.ErrorDeviceLost, err
	}

	if err != nil {
		return hal.ErrorUnknown, err
	}
	return hal.Success, nil
}

func viewport(v hal.Viewport) core1_0.Viewport {
	return core1_0.Viewport{
		X:        v.X,
		Y:        v.Y,
		Width:    v.Width,
		Height:   v.Height,
		MinDepth: v.MinDepth,
		MaxDepth: v.MaxDepth,
	}
}

func rect(r hal.Rect2D) core1_0.Rect2D {
	return core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: r.Offset.X, Y: r.Offset.Y},
		Extent: core1_0.Extent2D{Width: r.Extent.Width, Height: r.Extent.Height},
	}
}

func semaphores(handles []hal.Semaphore) []core1_0.Semaphore {
	converted := make([]core1_0.Semaphore, 0, len(handles))
	for _, h := range handles {
		converted = append(converted, handle[core1_0.Semaphore](h))
	}
	return converted
}

func commandBuffers(handles []hal.CommandBuffer) []core1_0.CommandBuffer {
	converted := make([]core1_0.CommandBuffer, 0, len(handles))
	for _, h := range handles {
		converted = append(converted, handle[core1_0.CommandBuffer](h))
	}
	return converted
}
