package hal

import "time"

type ImageLayout int32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

type AttachmentLoadOp int32

const (
	AttachmentLoadOpLoad     AttachmentLoadOp = 0
	AttachmentLoadOpClear    AttachmentLoadOp = 1
	AttachmentLoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp int32

const (
	AttachmentStoreOpStore    AttachmentStoreOp = 0
	AttachmentStoreOpDontCare AttachmentStoreOp = 1
)

type PipelineStage int32

const (
	PipelineStageColorAttachmentOutput PipelineStage = 0x00000400
)

type Access int32

const (
	AccessColorAttachmentWrite Access = 0x00000100
)

// SubpassExternal refers to commands outside the render pass in a dependency.
const SubpassExternal = -1

type PrimitiveTopology int32

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = 3
)

type PolygonMode int32

const (
	PolygonModeFill PolygonMode = 0
)

type CullMode int32

const (
	CullModeNone CullMode = 0
	CullModeBack CullMode = 2
)

type FrontFace int32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

type DynamicState int32

const (
	DynamicStateViewport DynamicState = 0
	DynamicStateScissor  DynamicState = 1
)

type ColorComponents int32

const (
	ColorComponentRed ColorComponents = 1 << iota
	ColorComponentGreen
	ColorComponentBlue
	ColorComponentAlpha

	ColorComponentAll = ColorComponentRed | ColorComponentGreen | ColorComponentBlue | ColorComponentAlpha
)

type InstanceInfo struct {
	ApplicationName string
	Extensions      []string
	Layers          []string
}

type QueueRequest struct {
	Family     int
	Priorities []float32
}

type DeviceInfo struct {
	Queues     []QueueRequest
	Extensions []string
}

type SwapchainInfo struct {
	Surface       Surface
	MinImageCount int
	Format        SurfaceFormat
	Extent        Extent2D
	PresentMode   PresentMode
	// QueueFamilies lists every family that touches the images. More than one
	// family switches the images to concurrent sharing.
	QueueFamilies []int
	Old           Swapchain
}

type AttachmentDescription struct {
	Format        Format
	LoadOp        AttachmentLoadOp
	StoreOp       AttachmentStoreOp
	InitialLayout ImageLayout
	FinalLayout   ImageLayout
}

type SubpassDependency struct {
	SrcSubpass    int
	DstSubpass    int
	SrcStageMask  PipelineStage
	DstStageMask  PipelineStage
	SrcAccessMask Access
	DstAccessMask Access
}

// RenderPassInfo describes a render pass with a single graphics subpass that
// writes every attachment as a color attachment.
type RenderPassInfo struct {
	Attachments         []AttachmentDescription
	ColorLayout         ImageLayout
	SubpassDependencies []SubpassDependency
}

type ShaderStageInfo struct {
	Stage      ShaderStage
	Module     ShaderModule
	EntryPoint string
}

type GraphicsPipelineInfo struct {
	Stages        []ShaderStageInfo
	Topology      PrimitiveTopology
	PolygonMode   PolygonMode
	CullMode      CullMode
	FrontFace     FrontFace
	LineWidth     float32
	Samples       int
	BlendEnabled  bool
	WriteMask     ColorComponents
	DynamicStates []DynamicState
	Viewport      Viewport
	Scissor       Rect2D
	Layout        PipelineLayout
	RenderPass    RenderPass
	Subpass       int
}

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	RenderArea  Rect2D
	ClearColor  [4]float32
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitStages       []PipelineStage
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
	// Fence is signaled once every command buffer has completed. May be nil.
	Fence Fence
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchain      Swapchain
	ImageIndex     int
}

// Loader is the entry point of a driver: what it offers before an instance
// exists, and the instance itself.
type Loader interface {
	AvailableExtensions() (map[string]struct{}, error)
	AvailableLayers() (map[string]struct{}, error)
	CreateInstance(info InstanceInfo) (Instance, error)
}

// Instance covers physical device queries, presentation surfaces and logical
// device creation.
type Instance interface {
	PhysicalDevices() ([]PhysicalDevice, error)
	DeviceProperties(device PhysicalDevice) (DeviceProperties, error)
	QueueFamilies(device PhysicalDevice) ([]QueueFamilyProperties, error)
	DeviceExtensions(device PhysicalDevice) (map[string]struct{}, error)

	// CreateSurface builds a presentation surface for a platform window. The
	// accepted window types depend on the backend.
	CreateSurface(window any) (Surface, error)
	DestroySurface(surface Surface)
	SurfaceSupport(device PhysicalDevice, family int, surface Surface) (bool, error)
	SurfaceCapabilities(device PhysicalDevice, surface Surface) (SurfaceCapabilities, error)
	SurfaceFormats(device PhysicalDevice, surface Surface) ([]SurfaceFormat, error)
	PresentModes(device PhysicalDevice, surface Surface) ([]PresentMode, error)

	CreateDebugMessenger(callback DebugCallback) (DebugMessenger, error)
	DestroyDebugMessenger(messenger DebugMessenger)

	CreateDevice(device PhysicalDevice, info DeviceInfo) (Device, error)
	Destroy()
}

// Device is a logical device. Methods returning a Result report recoverable
// presentation outcomes (Suboptimal, ErrorOutOfDate, Timeout) through the
// Result with a nil error; the error is set only for failures that are not
// one of those.
type Device interface {
	Queue(family int) Queue
	WaitIdle() error

	CreateSwapchain(info SwapchainInfo) (Swapchain, error)
	SwapchainImages(swapchain Swapchain) ([]Image, error)
	DestroySwapchain(swapchain Swapchain)

	CreateImageView(image Image, format Format) (ImageView, error)
	DestroyImageView(view ImageView)
	CreateFramebuffer(renderPass RenderPass, view ImageView, extent Extent2D) (Framebuffer, error)
	DestroyFramebuffer(framebuffer Framebuffer)
	CreateRenderPass(info RenderPassInfo) (RenderPass, error)
	DestroyRenderPass(renderPass RenderPass)

	CreateShaderModule(code []uint32) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)
	CreatePipelineLayout() (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)
	CreateGraphicsPipeline(info GraphicsPipelineInfo) (Pipeline, error)
	DestroyPipeline(pipeline Pipeline)

	CreateCommandPool(family int, resettable bool) (CommandPool, error)
	DestroyCommandPool(pool CommandPool)
	AllocateCommandBuffer(pool CommandPool) (CommandBuffer, error)
	ResetCommandBuffer(buffer CommandBuffer) error
	BeginCommandBuffer(buffer CommandBuffer, oneTime bool) error
	EndCommandBuffer(buffer CommandBuffer) error
	CmdBeginRenderPass(buffer CommandBuffer, info RenderPassBeginInfo) error
	CmdBindPipeline(buffer CommandBuffer, pipeline Pipeline)
	CmdSetViewport(buffer CommandBuffer, viewport Viewport)
	CmdSetScissor(buffer CommandBuffer, scissor Rect2D)
	// CmdDraw draws non-indexed vertices starting at vertex and instance zero.
	CmdDraw(buffer CommandBuffer, vertexCount, instanceCount int)
	CmdEndRenderPass(buffer CommandBuffer)

	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(semaphore Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(fence Fence)
	WaitForFence(fence Fence, timeout time.Duration) (Result, error)
	ResetFence(fence Fence) error

	AcquireNextImage(swapchain Swapchain, signal Semaphore, timeout time.Duration) (int, Result, error)
	QueueSubmit(queue Queue, info SubmitInfo) error
	QueuePresent(queue Queue, info PresentInfo) (Result, error)

	Destroy()
}
