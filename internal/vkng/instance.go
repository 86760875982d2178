package vkng

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/JoeGuida/renderer/internal/hal"
)

type Instance struct {
	driver  core1_0.CoreInstanceDriver
	surface khr_surface.ExtensionDriver
	debug   ext_debug_utils.ExtensionDriver
}

var _ hal.Instance = (*Instance)(nil)

func (i *Instance) PhysicalDevices() ([]hal.PhysicalDevice, error) {
	devices, _, err := i.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	handles := make([]hal.PhysicalDevice, 0, len(devices))
	for _, device := range devices {
		handles = append(handles, device)
	}
	return handles, nil
}

func (i *Instance) DeviceProperties(device hal.PhysicalDevice) (hal.DeviceProperties, error) {
	properties, err := i.driver.GetPhysicalDeviceProperties(handle[core1_0.PhysicalDevice](device))
	if err != nil {
		return hal.DeviceProperties{}, err
	}

	return hal.DeviceProperties{
		Name:                properties.DriverName,
		Type:                hal.DeviceType(properties.DriverType),
		MaxImageDimension2D: properties.Limits.MaxImageDimension2D,
	}, nil
}

func (i *Instance) QueueFamilies(device hal.PhysicalDevice) ([]hal.QueueFamilyProperties, error) {
	queueFamilies := i.driver.GetPhysicalDeviceQueueFamilyProperties(handle[core1_0.PhysicalDevice](device))

	families := make([]hal.QueueFamilyProperties, 0, len(queueFamilies))
	for _, queueFamily := range queueFamilies {
		families = append(families, hal.QueueFamilyProperties{
			Graphics:   (queueFamily.QueueFlags & core1_0.QueueGraphics) != 0,
			QueueCount: queueFamily.QueueCount,
		})
	}
	return families, nil
}

func (i *Instance) DeviceExtensions(device hal.PhysicalDevice) (map[string]struct{}, error) {
	extensions, _, err := i.driver.EnumerateDeviceExtensionProperties(handle[core1_0.PhysicalDevice](device))
	if err != nil {
		return nil, err
	}
	return keys(extensions), nil
}

// CreateSurface accepts a *sdl.Window created with sdl.WINDOW_VULKAN.
func (i *Instance) CreateSurface(window any) (hal.Surface, error) {
	sdlWindow, ok := window.(*sdl.Window)
	if !ok || sdlWindow == nil {
		return nil, errors.Newf("cannot create a surface for %T", window)
	}

	surface, err := vkng_sdl2.CreateSurface(i.driver.Instance(), i.surface, sdlWindow)
	if err != nil {
		return nil, err
	}
	return surface, nil
}

func (i *Instance) DestroySurface(surface hal.Surface) {
	i.surface.DestroySurface(handle[khr_surface.Surface](surface), nil)
}

func (i *Instance) SurfaceSupport(device hal.PhysicalDevice, family int, surface hal.Surface) (bool, error) {
	supported, _, err := i.surface.GetPhysicalDeviceSurfaceSupport(
		handle[khr_surface.Surface](surface),
		handle[core1_0.PhysicalDevice](device),
		family,
	)
	return supported, err
}

func (i *Instance) SurfaceCapabilities(device hal.PhysicalDevice, surface hal.Surface) (hal.SurfaceCapabilities, error) {
	capabilities, _, err := i.surface.GetPhysicalDeviceSurfaceCapabilities(
		handle[khr_surface.Surface](surface),
		handle[core1_0.PhysicalDevice](device),
	)
	if err != nil {
		return hal.SurfaceCapabilities{}, err
	}

	return hal.SurfaceCapabilities{
		MinImageCount:  capabilities.MinImageCount,
		MaxImageCount:  capabilities.MaxImageCount,
		CurrentExtent:  extent(capabilities.CurrentExtent),
		MinImageExtent: extent(capabilities.MinImageExtent),
		MaxImageExtent: extent(capabilities.MaxImageExtent),
	}, nil
}

func (i *Instance) SurfaceFormats(device hal.PhysicalDevice, surface hal.Surface) ([]hal.SurfaceFormat, error) {
	surfaceFormats, _, err := i.surface.GetPhysicalDeviceSurfaceFormats(
		handle[khr_surface.Surface](surface),
		handle[core1_0.PhysicalDevice](device),
	)
	if err != nil {
		return nil, err
	}

	formats := make([]hal.SurfaceFormat, 0, len(surfaceFormats))
	for _, format := range surfaceFormats {
		formats = append(formats, hal.SurfaceFormat{
			Format:     hal.Format(format.Format),
			ColorSpace: hal.ColorSpace(format.ColorSpace),
		})
	}
	return formats, nil
}

func (i *Instance) PresentModes(device hal.PhysicalDevice, surface hal.Surface) ([]hal.PresentMode, error) {
	presentModes, _, err := i.surface.GetPhysicalDeviceSurfacePresentModes(
		handle[khr_surface.Surface](surface),
		handle[core1_0.PhysicalDevice](device),
	)
	if err != nil {
		return nil, err
	}

	modes := make([]hal.PresentMode, 0, len(presentModes))
	for _, mode := range presentModes {
		modes = append(modes, hal.PresentMode(mode))
	}
	return modes, nil
}

// CreateDebugMessenger forwards warnings and errors of every message type.
// VK_EXT_debug_utils must have been enabled on the instance.
func (i *Instance) CreateDebugMessenger(callback hal.DebugCallback) (hal.DebugMessenger, error) {
	if i.debug == nil {
		i.debug = ext_debug_utils.CreateExtensionDriverFromCoreDriver(i.driver)
	}

	messenger, _, err := i.debug.CreateDebugUtilsMessenger(nil, ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			callback(debugSeverity(severity), messageKind(msgType), data.Message)
			return false
		},
	})
	if err != nil {
		return nil, err
	}
	return messenger, nil
}

func (i *Instance) DestroyDebugMessenger(messenger hal.DebugMessenger) {
	if i.debug == nil {
		return
	}
	i.debug.DestroyDebugUtilsMessenger(handle[ext_debug_utils.DebugUtilsMessenger](messenger), nil)
}

// CreateDevice adds VK_KHR_portability_subset when the device reports it,
// which the Vulkan portability rules require.
func (i *Instance) CreateDevice(device hal.PhysicalDevice, info hal.DeviceInfo) (hal.Device, error) {
	physicalDevice := handle[core1_0.PhysicalDevice](device)

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queue := range info.Queues {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queue.Family,
			QueuePriorities:  queue.Priorities,
		})
	}

	extensionNames := slices.Clone(info.Extensions)
	extensions, _, err := i.driver.EnumerateDeviceExtensionProperties(physicalDevice)
	if err != nil {
		return nil, err
	}

	_, supported := extensions[khr_portability_subset.ExtensionName]
	if supported && !slices.Contains(extensionNames, khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	logicalDevice, _, err := i.driver.CreateDevice(physicalDevice, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, err
	}

	deviceDriver, err := i.driver.BuildDeviceDriver(logicalDevice)
	if err != nil {
		return nil, errors.Wrap(err, "build device driver")
	}

	return &Device{
		driver:    deviceDriver,
		swapchain: khr_swapchain.CreateExtensionDriverFromCoreDriver(deviceDriver),
		instance:  i,
		physical:  physicalDevice,
	}, nil
}

func (i *Instance) Destroy() {
	i.driver.DestroyInstance(nil)
}

func extent(e core1_0.Extent2D) hal.Extent2D {
	return hal.Extent2D{Width: e.Width, Height: e.Height}
}

func debugSeverity(severity ext_debug_utils.DebugUtilsMessageSeverityFlags) hal.DebugSeverity {
	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		return hal.SeverityError
	case severity&ext_debug_utils.SeverityWarning != 0:
		return hal.SeverityWarning
	case severity&ext_debug_utils.SeverityInfo != 0:
		return hal.SeverityInfo
	}
	return hal.SeverityVerbose
}

func messageKind(msgType ext_debug_utils.DebugUtilsMessageTypeFlags) string {
	switch {
	case msgType&ext_debug_utils.TypeValidation != 0:
		return "validation"
	case msgType&ext_debug_utils.TypePerformance != 0:
		return "performance"
	}
	return "general"
}
