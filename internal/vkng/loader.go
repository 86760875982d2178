// Package vkng implements the renderer's driver interfaces on top of
// vkngwrapper, with SDL2 supplying the loader entry point and window surfaces.
package vkng

import (
	"slices"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/JoeGuida/renderer/internal/hal"
)

const engineName = "No Engine"

type Loader struct {
	driver core1_0.GlobalDriver
}

var _ hal.Loader = (*Loader)(nil)

// NewLoader builds a loader from a vkGetInstanceProcAddr pointer.
func NewLoader(procAddr unsafe.Pointer) (*Loader, error) {
	driver, err := core.CreateDriverFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan")
	}
	return &Loader{driver: driver}, nil
}

// NewSDLLoader uses the Vulkan library SDL loaded for its windows. sdl.Init
// and a window created with sdl.WINDOW_VULKAN must come first.
func NewSDLLoader() (*Loader, error) {
	return NewLoader(sdl.VulkanGetVkGetInstanceProcAddr())
}

func (l *Loader) AvailableExtensions() (map[string]struct{}, error) {
	extensions, _, err := l.driver.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	return keys(extensions), nil
}

func (l *Loader) AvailableLayers() (map[string]struct{}, error) {
	layers, _, err := l.driver.AvailableLayers()
	if err != nil {
		return nil, err
	}
	return keys(layers), nil
}

// CreateInstance also enables portability enumeration whenever the loader
// offers it, so MoltenVK devices show up.
func (l *Loader) CreateInstance(info hal.InstanceInfo) (hal.Instance, error) {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            engineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: slices.Clone(info.Extensions),
		EnabledLayerNames:     slices.Clone(info.Layers),
	}

	extensions, _, err := l.driver.AvailableExtensions()
	if err != nil {
		return nil, err
	}

	_, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]
	if enumerationSupported && !slices.Contains(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName) {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	instance, _, err := l.driver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, err
	}

	instanceDriver, err := l.driver.BuildInstanceDriver(instance)
	if err != nil {
		return nil, errors.Wrap(err, "build instance driver")
	}

	return &Instance{
		driver:  instanceDriver,
		surface: khr_surface.CreateExtensionDriverFromCoreDriver(instanceDriver),
	}, nil
}

func keys[V any](m map[string]V) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for name := range m {
		set[name] = struct{}{}
	}
	return set
}

// handle recovers a backend value from an opaque handle. A nil handle becomes
// the zero value, which the driver reads as VK_NULL_HANDLE.
func handle[T any](h any) T {
	v, _ := h.(T)
	return v
}
