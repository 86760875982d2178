package renderer

import (
	"github.com/JoeGuida/renderer/internal/hal"
)

// SwapchainPreferences are matched against what the surface offers. Anything
// not offered falls back to the surface's first entry.
type SwapchainPreferences struct {
	Format      hal.Format
	ColorSpace  hal.ColorSpace
	PresentMode hal.PresentMode
}

// Swapchain owns a presentation swapchain with one image view and one
// framebuffer per image. Images belong to the swapchain handle.
//
// A swapchain created for an empty extent has no handle and no images; it must
// be rebuilt before it can be drawn to.
type Swapchain struct {
	Handle       hal.Swapchain
	Images       []hal.Image
	ImageViews   []hal.ImageView
	Framebuffers []hal.Framebuffer
	Extent       hal.Extent2D
	Format       hal.SurfaceFormat
	PresentMode  hal.PresentMode
	ImageCount   int

	device     hal.Device
	renderPass hal.RenderPass
}

func ChooseSurfaceFormat(available []hal.SurfaceFormat, want hal.SurfaceFormat) hal.SurfaceFormat {
	for _, format := range available {
		if format == want {
			return format
		}
	}
	if len(available) == 0 {
		return hal.SurfaceFormat{}
	}
	return available[0]
}

func ChoosePresentMode(available []hal.PresentMode, want hal.PresentMode) hal.PresentMode {
	for _, mode := range available {
		if mode == want {
			return mode
		}
	}
	if len(available) == 0 {
		return hal.PresentModeFIFO
	}
	return available[0]
}

// ChooseExtent uses the surface's current extent unless the surface leaves it
// undefined, in which case the window size is clamped into the supported range.
func ChooseExtent(caps hal.SurfaceCapabilities, width, height int) hal.Extent2D {
	extent := caps.CurrentExtent
	if extent.Width == hal.UndefinedExtent {
		extent.Width = clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	}
	if extent.Height == hal.UndefinedExtent {
		extent.Height = clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	}
	return extent
}

// ChooseImageCount asks for one image more than the minimum so the CPU does not
// wait on the presentation engine, capped by a nonzero maximum.
func ChooseImageCount(caps hal.SurfaceCapabilities) int {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, lo, hi int) int {
	if v < 0 {
		v = 0
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// CreateSwapchain builds a swapchain for surface sized against the window.
// old, when set, seeds the driver so it can reuse resources; it is left alive
// and the caller destroys it once the new swapchain is in place.
func CreateSwapchain(width, height int, device *Device, instance hal.Instance, surface hal.Surface, prefs SwapchainPreferences, old *Swapchain) (*Swapchain, error) {
	physical := device.Physical.Handle

	caps, err := instance.SurfaceCapabilities(physical, surface)
	if err != nil {
		return nil, creationFailed(err, "query surface capabilities")
	}
	formats, err := instance.SurfaceFormats(physical, surface)
	if err != nil {
		return nil, creationFailed(err, "query surface formats")
	}
	if len(formats) == 0 {
		return nil, creationFailed(nil, "surface reports no formats")
	}
	modes, err := instance.PresentModes(physical, surface)
	if err != nil {
		return nil, creationFailed(err, "query present modes")
	}

	sc := &Swapchain{
		Format:      ChooseSurfaceFormat(formats, hal.SurfaceFormat{Format: prefs.Format, ColorSpace: prefs.ColorSpace}),
		PresentMode: ChoosePresentMode(modes, prefs.PresentMode),
		Extent:      ChooseExtent(caps, width, height),
		ImageCount:  ChooseImageCount(caps),
		device:      device.Handle,
	}
	if sc.Extent.Empty() {
		return sc, nil
	}

	info := hal.SwapchainInfo{
		Surface:       surface,
		MinImageCount: sc.ImageCount,
		Format:        sc.Format,
		Extent:        sc.Extent,
		PresentMode:   sc.PresentMode,
	}
	if !device.Families.Shared() {
		info.QueueFamilies = device.Families.Unique()
	}
	if old != nil && old.Handle != nil {
		info.Old = old.Handle
	}

	handle, err := device.Handle.CreateSwapchain(info)
	if err != nil || handle == nil {
		return nil, creationFailed(err, "create swapchain %s", sc.Extent)
	}
	sc.Handle = handle

	images, err := device.Handle.SwapchainImages(handle)
	if err != nil {
		sc.Destroy()
		return nil, creationFailed(err, "get swapchain images")
	}
	sc.Images = images

	return sc, nil
}

// CreateImageViews creates one color view per swapchain image, stopping at the
// first failure. Views created before the failure stay owned by sc.
func (sc *Swapchain) CreateImageViews() error {
	for idx, image := range sc.Images {
		view, err := sc.device.CreateImageView(image, sc.Format.Format)
		if err != nil || view == nil {
			return creationFailed(err, "create image view %d of %d", idx, len(sc.Images))
		}
		sc.ImageViews = append(sc.ImageViews, view)
	}
	return nil
}

// CreateFramebuffers binds each image view to renderPass at the swapchain extent.
func (sc *Swapchain) CreateFramebuffers(renderPass hal.RenderPass) error {
	if len(sc.ImageViews) != len(sc.Images) {
		return creationFailed(nil, "create framebuffers: %d image views for %d images", len(sc.ImageViews), len(sc.Images))
	}

	sc.renderPass = renderPass
	for idx, view := range sc.ImageViews {
		framebuffer, err := sc.device.CreateFramebuffer(renderPass, view, sc.Extent)
		if err != nil || framebuffer == nil {
			return creationFailed(err, "create framebuffer %d of %d", idx, len(sc.ImageViews))
		}
		sc.Framebuffers = append(sc.Framebuffers, framebuffer)
	}
	return nil
}

// Usable reports whether frames can be drawn to the swapchain.
func (sc *Swapchain) Usable() bool {
	if sc == nil || sc.Handle == nil || len(sc.Images) == 0 {
		return false
	}
	return len(sc.ImageViews) == len(sc.Images) && len(sc.Framebuffers) == len(sc.Images)
}

// RenderPass returns the render pass the framebuffers were created against.
func (sc *Swapchain) RenderPass() hal.RenderPass {
	return sc.renderPass
}

// Destroy releases framebuffers, then image views, then the swapchain handle.
// It is safe to call more than once.
func (sc *Swapchain) Destroy() {
	if sc == nil {
		return
	}
	sc.destroyFramebuffers()
	sc.destroyImageViews()
	sc.destroyHandle()
}

func (sc *Swapchain) destroyFramebuffers() {
	for _, framebuffer := range sc.Framebuffers {
		sc.device.DestroyFramebuffer(framebuffer)
	}
	sc.Framebuffers = nil
}

func (sc *Swapchain) destroyImageViews() {
	for _, view := range sc.ImageViews {
		sc.device.DestroyImageView(view)
	}
	sc.ImageViews = nil
}

func (sc *Swapchain) destroyHandle() {
	if sc.Handle != nil {
		sc.device.DestroySwapchain(sc.Handle)
	}
	sc.Handle = nil
	sc.Images = nil
}

// RebuildSwapchain replaces old after waiting for the device to go idle. The
// replacement is fully built before any of old is released. On error old is
// still owned by the caller but may already be retired by the driver, so it is
// only safe to destroy, not to present.
func RebuildSwapchain(width, height int, device *Device, instance hal.Instance, surface hal.Surface, renderPass hal.RenderPass, prefs SwapchainPreferences, old *Swapchain) (*Swapchain, error) {
	if err := device.Handle.WaitIdle(); err != nil {
		return nil, markf(ErrResourceCreation, err, "wait for device idle before swapchain rebuild")
	}

	next, err := CreateSwapchain(width, height, device, instance, surface, prefs, old)
	if err != nil {
		return nil, err
	}

	if next.Handle != nil {
		if old != nil && old.Format.Format != next.Format.Format {
			next.Destroy()
			return nil, creationFailed(nil, "surface format changed from %s to %s", old.Format.Format, next.Format.Format)
		}
		if err := next.CreateImageViews(); err != nil {
			next.Destroy()
			return nil, err
		}
		if err := next.CreateFramebuffers(renderPass); err != nil {
			next.Destroy()
			return nil, err
		}
	}

	old.Destroy()
	return next, nil
}
