package renderer

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JoeGuida/renderer/internal/hal"
)

// fakeHandle stands in for every driver object. Pointer identity is what the
// fake tracks, so two handles of the same kind never compare equal.
type fakeHandle struct {
	kind string
	id   int
}

func (h *fakeHandle) String() string {
	return fmt.Sprintf("%s#%d", h.kind, h.id)
}

type fakeGPU struct {
	props      hal.DeviceProperties
	families   []hal.QueueFamilyProperties
	present    map[int]bool
	extensions []string
	formats    []hal.SurfaceFormat
	modes      []hal.PresentMode
	handle     *fakeHandle
}

// fakeDriver records every call made through the hal interfaces and counts
// live handles per kind. A second release of the same handle is recorded in
// doubleFrees rather than panicking so tests can assert on it.
type fakeDriver struct {
	nextID int

	instanceExtensions map[string]struct{}
	layers             map[string]struct{}
	gpus               []*fakeGPU
	caps               hal.SurfaceCapabilities

	// acquire and present pop scripted results; an empty script means Success.
	acquire     []hal.Result
	present     []hal.Result
	fenceResult hal.Result
	fail        map[string]error

	calls       []string
	created     map[string]int
	destroyed   map[string]int
	live        map[*fakeHandle]bool
	doubleFrees []string
	lastInfo    hal.SwapchainInfo
	imageIndex  int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		instanceExtensions: set("VK_KHR_surface", "VK_EXT_debug_utils"),
		layers:             set("VK_LAYER_KHRONOS_validation"),
		caps: hal.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  hal.Extent2D{Width: hal.UndefinedExtent, Height: hal.UndefinedExtent},
			MinImageExtent: hal.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: hal.Extent2D{Width: 4096, Height: 4096},
		},
		fail:      map[string]error{},
		created:   map[string]int{},
		destroyed: map[string]int{},
		live:      map[*fakeHandle]bool{},
	}
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, name := range names {
		m[name] = struct{}{}
	}
	return m
}

// addGPU registers a usable device with one combined queue family.
func (f *fakeDriver) addGPU(name string, kind hal.DeviceType, maxDim int) *fakeGPU {
	gpu := &fakeGPU{
		props: hal.DeviceProperties{Name: name, Type: kind, MaxImageDimension2D: maxDim},
		families: []hal.QueueFamilyProperties{
			{Graphics: true, QueueCount: 1},
		},
		present:    map[int]bool{0: true},
		extensions: []string{"VK_KHR_swapchain"},
		formats: []hal.SurfaceFormat{
			{Format: hal.FormatB8G8R8A8UNorm, ColorSpace: hal.ColorSpaceSRGBNonlinear},
			{Format: hal.FormatB8G8R8A8SRGB, ColorSpace: hal.ColorSpaceSRGBNonlinear},
		},
		modes:  []hal.PresentMode{hal.PresentModeFIFO, hal.PresentModeMailbox},
		handle: &fakeHandle{kind: "physical device", id: len(f.gpus)},
	}
	f.gpus = append(f.gpus, gpu)
	return gpu
}

func (f *fakeDriver) gpu(device hal.PhysicalDevice) *fakeGPU {
	for _, gpu := range f.gpus {
		if gpu.handle == device {
			return gpu
		}
	}
	panic(fmt.Sprintf("unknown physical device %v", device))
}

func (f *fakeDriver) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeDriver) newHandle(kind string) (*fakeHandle, error) {
	f.record("create " + kind)
	if err := f.fail[kind]; err != nil {
		return nil, err
	}
	f.nextID++
	h := &fakeHandle{kind: kind, id: f.nextID}
	f.created[kind]++
	f.live[h] = true
	return h, nil
}

func (f *fakeDriver) release(kind string, handle any) {
	f.record("destroy " + kind)
	h, ok := handle.(*fakeHandle)
	if !ok || h.kind != kind {
		f.doubleFrees = append(f.doubleFrees, fmt.Sprintf("destroy %s given %v", kind, handle))
		return
	}
	if !f.live[h] {
		f.doubleFrees = append(f.doubleFrees, h.String())
		return
	}
	delete(f.live, h)
	f.destroyed[kind]++
}

// liveCount returns how many handles of kind are still alive.
func (f *fakeDriver) liveCount(kind string) int {
	return f.created[kind] - f.destroyed[kind]
}

func (f *fakeDriver) leaks() []string {
	var leaked []string
	for h := range f.live {
		leaked = append(leaked, h.String())
	}
	return leaked
}

// destroyOrder lists destroy calls in the order they happened, ignoring
// repeated kinds.
func (f *fakeDriver) destroyOrder() []string {
	var order []string
	seen := map[string]bool{}
	for _, call := range f.calls {
		kind, ok := strings.CutPrefix(call, "destroy ")
		if !ok {
			continue
		}
		if !seen[kind] {
			seen[kind] = true
			order = append(order, kind)
		}
	}
	return order
}

func (f *fakeDriver) countCalls(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeDriver) resetCalls() {
	f.calls = nil
}

func pop(results *[]hal.Result) hal.Result {
	if len(*results) == 0 {
		return hal.Success
	}
	res := (*results)[0]
	*results = (*results)[1:]
	return res
}

// Loader

func (f *fakeDriver) AvailableExtensions() (map[string]struct{}, error) {
	f.record("available extensions")
	return f.instanceExtensions, nil
}

func (f *fakeDriver) AvailableLayers() (map[string]struct{}, error) {
	f.record("available layers")
	return f.layers, nil
}

func (f *fakeDriver) CreateInstance(info hal.InstanceInfo) (hal.Instance, error) {
	h, err := f.newHandle("instance")
	if err != nil {
		return nil, err
	}
	return &fakeInstance{fakeDriver: f, handle: h}, nil
}

type fakeInstance struct {
	*fakeDriver
	handle *fakeHandle
}

func (i *fakeInstance) PhysicalDevices() ([]hal.PhysicalDevice, error) {
	i.record("enumerate physical devices")
	devices := make([]hal.PhysicalDevice, 0, len(i.gpus))
	for _, gpu := range i.gpus {
		devices = append(devices, gpu.handle)
	}
	return devices, nil
}

func (i *fakeInstance) DeviceProperties(device hal.PhysicalDevice) (hal.DeviceProperties, error) {
	return i.gpu(device).props, nil
}

func (i *fakeInstance) QueueFamilies(device hal.PhysicalDevice) ([]hal.QueueFamilyProperties, error) {
	return i.gpu(device).families, nil
}

func (i *fakeInstance) DeviceExtensions(device hal.PhysicalDevice) (map[string]struct{}, error) {
	return set(i.gpu(device).extensions...), nil
}

func (i *fakeInstance) CreateSurface(window any) (hal.Surface, error) {
	h, err := i.newHandle("surface")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (i *fakeInstance) DestroySurface(surface hal.Surface) {
	i.release("surface", surface)
}

func (i *fakeInstance) SurfaceSupport(device hal.PhysicalDevice, family int, surface hal.Surface) (bool, error) {
	if err := i.fail["surface support"]; err != nil {
		return false, err
	}
	return i.gpu(device).present[family], nil
}

func (i *fakeInstance) SurfaceCapabilities(device hal.PhysicalDevice, surface hal.Surface) (hal.SurfaceCapabilities, error) {
	i.record("surface capabilities")
	return i.caps, nil
}

func (i *fakeInstance) SurfaceFormats(device hal.PhysicalDevice, surface hal.Surface) ([]hal.SurfaceFormat, error) {
	return i.gpu(device).formats, nil
}

func (i *fakeInstance) PresentModes(device hal.PhysicalDevice, surface hal.Surface) ([]hal.PresentMode, error) {
	return i.gpu(device).modes, nil
}

func (i *fakeInstance) CreateDebugMessenger(callback hal.DebugCallback) (hal.DebugMessenger, error) {
	h, err := i.newHandle("debug messenger")
	if err != nil {
		return nil, err
	}
	callback(hal.SeverityWarning, "validation", "messenger attached")
	return h, nil
}

func (i *fakeInstance) DestroyDebugMessenger(messenger hal.DebugMessenger) {
	i.release("debug messenger", messenger)
}

func (i *fakeInstance) CreateDevice(device hal.PhysicalDevice, info hal.DeviceInfo) (hal.Device, error) {
	h, err := i.newHandle("device")
	if err != nil {
		return nil, err
	}
	return &fakeDevice{fakeDriver: i.fakeDriver, handle: h, info: info}, nil
}

func (i *fakeInstance) Destroy() {
	i.release("instance", i.handle)
}

type fakeDevice struct {
	*fakeDriver
	handle *fakeHandle
	info   hal.DeviceInfo
}

func (d *fakeDevice) Queue(family int) hal.Queue {
	return fmt.Sprintf("queue %d", family)
}

func (d *fakeDevice) WaitIdle() error {
	d.record("wait idle")
	return d.fail["wait idle"]
}

func (d *fakeDevice) CreateSwapchain(info hal.SwapchainInfo) (hal.Swapchain, error) {
	d.lastInfo = info
	h, err := d.newHandle("swapchain")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) SwapchainImages(swapchain hal.Swapchain) ([]hal.Image, error) {
	images := make([]hal.Image, d.lastInfo.MinImageCount)
	for idx := range images {
		images[idx] = &fakeHandle{kind: "image", id: idx}
	}
	return images, nil
}

func (d *fakeDevice) DestroySwapchain(swapchain hal.Swapchain) {
	d.release("swapchain", swapchain)
}

func (d *fakeDevice) CreateImageView(image hal.Image, format hal.Format) (hal.ImageView, error) {
	h, err := d.newHandle("image view")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyImageView(view hal.ImageView) {
	d.release("image view", view)
}

func (d *fakeDevice) CreateFramebuffer(renderPass hal.RenderPass, view hal.ImageView, extent hal.Extent2D) (hal.Framebuffer, error) {
	h, err := d.newHandle("framebuffer")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyFramebuffer(framebuffer hal.Framebuffer) {
	d.release("framebuffer", framebuffer)
}

func (d *fakeDevice) CreateRenderPass(info hal.RenderPassInfo) (hal.RenderPass, error) {
	h, err := d.newHandle("render pass")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyRenderPass(renderPass hal.RenderPass) {
	d.release("render pass", renderPass)
}

func (d *fakeDevice) CreateShaderModule(code []uint32) (hal.ShaderModule, error) {
	h, err := d.newHandle("shader module")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyShaderModule(module hal.ShaderModule) {
	d.release("shader module", module)
}

func (d *fakeDevice) CreatePipelineLayout() (hal.PipelineLayout, error) {
	h, err := d.newHandle("pipeline layout")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyPipelineLayout(layout hal.PipelineLayout) {
	d.release("pipeline layout", layout)
}

func (d *fakeDevice) CreateGraphicsPipeline(info hal.GraphicsPipelineInfo) (hal.Pipeline, error) {
	h, err := d.newHandle("pipeline")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyPipeline(pipeline hal.Pipeline) {
	d.release("pipeline", pipeline)
}

func (d *fakeDevice) CreateCommandPool(family int, resettable bool) (hal.CommandPool, error) {
	h, err := d.newHandle("command pool")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyCommandPool(pool hal.CommandPool) {
	d.release("command pool", pool)
}

func (d *fakeDevice) AllocateCommandBuffer(pool hal.CommandPool) (hal.CommandBuffer, error) {
	d.record("allocate command buffer")
	return &fakeHandle{kind: "command buffer"}, nil
}

func (d *fakeDevice) ResetCommandBuffer(buffer hal.CommandBuffer) error {
	d.record("reset command buffer")
	return nil
}

func (d *fakeDevice) BeginCommandBuffer(buffer hal.CommandBuffer, oneTime bool) error {
	d.record("begin command buffer")
	return d.fail["begin command buffer"]
}

func (d *fakeDevice) EndCommandBuffer(buffer hal.CommandBuffer) error {
	d.record("end command buffer")
	return nil
}

func (d *fakeDevice) CmdBeginRenderPass(buffer hal.CommandBuffer, info hal.RenderPassBeginInfo) error {
	d.record("begin render pass")
	return nil
}

func (d *fakeDevice) CmdBindPipeline(buffer hal.CommandBuffer, pipeline hal.Pipeline) {
	d.record("bind pipeline")
}

func (d *fakeDevice) CmdSetViewport(buffer hal.CommandBuffer, viewport hal.Viewport) {
	d.record(fmt.Sprintf("set viewport %.0fx%.0f", viewport.Width, viewport.Height))
}

func (d *fakeDevice) CmdSetScissor(buffer hal.CommandBuffer, scissor hal.Rect2D) {
	d.record("set scissor " + scissor.Extent.String())
}

func (d *fakeDevice) CmdDraw(buffer hal.CommandBuffer, vertexCount, instanceCount int) {
	d.record(fmt.Sprintf("draw %d %d", vertexCount, instanceCount))
}

func (d *fakeDevice) CmdEndRenderPass(buffer hal.CommandBuffer) {
	d.record("end render pass")
}

func (d *fakeDevice) CreateSemaphore() (hal.Semaphore, error) {
	h, err := d.newHandle("semaphore")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroySemaphore(semaphore hal.Semaphore) {
	d.release("semaphore", semaphore)
}

func (d *fakeDevice) CreateFence(signaled bool) (hal.Fence, error) {
	h, err := d.newHandle("fence")
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (d *fakeDevice) DestroyFence(fence hal.Fence) {
	d.release("fence", fence)
}

func (d *fakeDevice) WaitForFence(fence hal.Fence, timeout time.Duration) (hal.Result, error) {
	d.record("wait fence")
	return d.fenceResult, nil
}

func (d *fakeDevice) ResetFence(fence hal.Fence) error {
	d.record("reset fence")
	return nil
}

func (d *fakeDevice) AcquireNextImage(swapchain hal.Swapchain, signal hal.Semaphore, timeout time.Duration) (int, hal.Result, error) {
	d.record("acquire")
	res := pop(&d.acquire)
	switch res {
	case hal.Success, hal.Suboptimal, hal.ErrorOutOfDate, hal.Timeout:
		return d.imageIndex, res, nil
	}
	return 0, res, errors.Newf("acquire: %s", res)
}

func (d *fakeDevice) QueueSubmit(queue hal.Queue, info hal.SubmitInfo) error {
	d.record("submit")
	return d.fail["submit"]
}

func (d *fakeDevice) QueuePresent(queue hal.Queue, info hal.PresentInfo) (hal.Result, error) {
	d.record("present")
	res := pop(&d.present)
	switch res {
	case hal.Success, hal.Suboptimal, hal.ErrorOutOfDate:
		return res, nil
	}
	return res, errors.Newf("present: %s", res)
}

func (d *fakeDevice) Destroy() {
	d.release("device", d.handle)
}

type fakeWindow struct {
	width, height int
}

func (w *fakeWindow) ClientSize() (int, int) {
	return w.width, w.height
}

func (w *fakeWindow) SurfaceTarget() any {
	return w
}

type fakeShaders map[hal.ShaderStage][]byte

func (s fakeShaders) Bytecode(stage hal.ShaderStage) ([]byte, error) {
	code, ok := s[stage]
	if !ok {
		return nil, errors.Newf("no %s shader", stage)
	}
	return code, nil
}

func triangleShaders() fakeShaders {
	return fakeShaders{
		hal.StageVertex:   {0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
		hal.StageFragment: {0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testOptions() Options {
	return Options{
		ApplicationName: "test",
		Extensions: Extensions{
			Instance: []string{"VK_KHR_surface"},
			Device:   []string{"VK_KHR_swapchain"},
		},
		Preferences: SwapchainPreferences{
			Format:      hal.FormatB8G8R8A8SRGB,
			ColorSpace:  hal.ColorSpaceSRGBNonlinear,
			PresentMode: hal.PresentModeMailbox,
		},
		Shaders: triangleShaders(),
		Logger:  discardLogger(),
	}
}
