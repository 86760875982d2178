package renderer

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/JoeGuida/renderer/internal/hal"
)

// Window is what the renderer needs from the platform window.
type Window interface {
	// ClientSize is the drawable size in pixels. Zero while minimized.
	ClientSize() (width, height int)
	// SurfaceTarget is passed to hal.Instance.CreateSurface.
	SurfaceTarget() any
}

type Options struct {
	ApplicationName string
	Extensions      Extensions
	// DebugMessenger routes validation layer output to the logger. Requires
	// the debug utils instance extension in Extensions.Instance.
	DebugMessenger bool
	Preferences    SwapchainPreferences
	Shaders        ShaderLoader
	// Logger defaults to stderr with a per-session prefix.
	Logger *log.Logger
}

// Context owns every GPU object of one renderer. Create it with Init, drive it
// with DrawFrame from a single goroutine, and release it with Destroy.
type Context struct {
	logger  *log.Logger
	session string
	window  Window
	prefs   SwapchainPreferences

	instance    *owned[hal.Instance]
	messenger   *owned[hal.DebugMessenger]
	surface     *owned[hal.Surface]
	device      *Device
	deviceOwner *owned[hal.Device]
	swapchain   *Swapchain
	renderPass  *owned[hal.RenderPass]
	pipeline    *owned[*Pipeline]
	commandPool *owned[hal.CommandPool]
	command     hal.CommandBuffer
	sync        *owned[*Sync]

	state     FrameState
	resized   bool
	stats     FrameStats
	destroyed bool
}

// Init creates the whole renderer. On failure everything created so far is
// released and no Context is returned.
func Init(loader hal.Loader, window Window, opts Options) (*Context, error) {
	session := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, fmt.Sprintf("[renderer %s] ", session[:8]), log.LstdFlags)
	}
	if opts.Shaders == nil {
		return nil, markf(ErrResourceCreation, nil, "no shader loader configured")
	}

	c := &Context{
		logger:  logger,
		session: session,
		window:  window,
		prefs:   opts.Preferences,
	}

	if err := c.init(loader, opts); err != nil {
		logger.Printf("initialization failed: %v", err)
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Context) init(loader hal.Loader, opts Options) error {
	ext := opts.Extensions
	if err := CheckCapabilities(loader, ext, c.logger); err != nil {
		return err
	}

	instance, err := loader.CreateInstance(hal.InstanceInfo{
		ApplicationName: opts.ApplicationName,
		Extensions:      ext.Instance,
		Layers:          ext.Validation,
	})
	if err != nil || instance == nil {
		return creationFailed(err, "create instance")
	}
	c.instance = own(instance, func(i hal.Instance) { i.Destroy() })

	if opts.DebugMessenger {
		messenger, err := instance.CreateDebugMessenger(c.logValidation)
		if err != nil || messenger == nil {
			return creationFailed(err, "create debug messenger")
		}
		c.messenger = own(messenger, instance.DestroyDebugMessenger)
	}

	surface, err := instance.CreateSurface(c.window.SurfaceTarget())
	if err != nil || surface == nil {
		return creationFailed(err, "create window surface")
	}
	c.surface = own(surface, instance.DestroySurface)

	candidate, err := SelectPhysicalDevice(instance, surface, ext.Device, c.logger)
	if err != nil {
		return err
	}
	c.logger.Printf("selected device %q (%s), score %d", candidate.Properties.Name, candidate.Properties.Type, candidate.Score)

	c.device, err = CreateLogicalDevice(instance, candidate, surface, ext.Device)
	if err != nil {
		return err
	}
	c.deviceOwner = own(c.device.Handle, func(d hal.Device) { d.Destroy() })
	c.logger.Printf("queue families: graphics %d, presentation %d", c.device.Families.Graphics, c.device.Families.Presentation)

	device := c.device.Handle
	width, height := c.window.ClientSize()
	c.swapchain, err = CreateSwapchain(width, height, c.device, instance, surface, c.prefs, nil)
	if err != nil {
		return err
	}
	if err := c.swapchain.CreateImageViews(); err != nil {
		return err
	}

	// Rebuilds must keep the format the render pass was made for.
	c.prefs.Format = c.swapchain.Format.Format
	c.prefs.ColorSpace = c.swapchain.Format.ColorSpace

	renderPass, err := CreateRenderPass(device, c.swapchain.Format.Format)
	if err != nil {
		return err
	}
	c.renderPass = own(renderPass, device.DestroyRenderPass)

	if err := c.swapchain.CreateFramebuffers(renderPass); err != nil {
		return err
	}
	c.logSwapchain("created")

	pipeline, err := CreateGraphicsPipeline(device, opts.Shaders, c.swapchain.Extent, renderPass)
	if err != nil {
		return err
	}
	c.pipeline = own(pipeline, func(p *Pipeline) { p.Destroy(device) })

	pool, err := CreateCommandPool(device, c.device.Families.Graphics)
	if err != nil {
		return err
	}
	c.commandPool = own(pool, device.DestroyCommandPool)

	c.command, err = CreateCommandBuffer(device, pool)
	if err != nil {
		return err
	}

	sync, err := CreateSyncObjects(device)
	if err != nil {
		return err
	}
	c.sync = own(sync, func(s *Sync) { s.Destroy(device) })

	return nil
}

// Destroy waits for the device to go idle and then releases, in order: sync
// objects, the command pool, framebuffers, the pipeline, the render pass, image
// views, the swapchain, the surface, the device, the debug messenger and the
// instance. Calling it again does nothing.
func (c *Context) Destroy() {
	if c == nil || c.destroyed {
		return
	}
	c.destroyed = true

	if c.deviceOwner.Live() {
		if err := c.deviceOwner.Get().WaitIdle(); err != nil {
			c.logger.Printf("wait for device idle before teardown: %v", err)
		}
	}

	c.sync.Release()
	c.commandPool.Release()
	c.command = nil
	if c.swapchain != nil {
		c.swapchain.destroyFramebuffers()
	}
	c.pipeline.Release()
	c.renderPass.Release()
	if c.swapchain != nil {
		c.swapchain.destroyImageViews()
		c.swapchain.destroyHandle()
	}
	c.surface.Release()
	c.deviceOwner.Release()
	c.messenger.Release()
	c.instance.Release()

	c.logger.Printf("renderer destroyed after %d frames", c.stats.Presented)
}

func (c *Context) Session() string {
	return c.session
}

func (c *Context) Device() *Device {
	return c.device
}

func (c *Context) Swapchain() *Swapchain {
	return c.swapchain
}

func (c *Context) State() FrameState {
	return c.state
}

func (c *Context) Stats() FrameStats {
	return c.stats
}

func (c *Context) logValidation(severity hal.DebugSeverity, kind string, message string) {
	c.logger.Printf("[%s %s] - %s", severity, kind, message)
}

func (c *Context) logSwapchain(action string) {
	sc := c.swapchain
	if !sc.Usable() {
		c.logger.Printf("swapchain %s empty at extent %s", action, sc.Extent)
		return
	}
	c.logger.Printf("swapchain %s: %s, %s %s, %s, %d images",
		action, sc.Extent, sc.Format.Format, sc.Format.ColorSpace, sc.PresentMode, len(sc.Images))
}

func (c *Context) checkLive() error {
	if c.destroyed {
		return markf(ErrFrameAcquire, nil, "renderer used after Destroy")
	}
	return nil
}
