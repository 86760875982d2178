package renderer

import (
	"log"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/JoeGuida/renderer/internal/hal"
)

// Extensions are the name lists the caller asks the driver for. The renderer
// validates and enables them but never adds defaults of its own.
type Extensions struct {
	Instance   []string
	Device     []string
	Validation []string
}

func SupportedInstanceExtensions(loader hal.Loader) (map[string]struct{}, error) {
	return loader.AvailableExtensions()
}

func SupportedDeviceExtensions(instance hal.Instance, device hal.PhysicalDevice) (map[string]struct{}, error) {
	return instance.DeviceExtensions(device)
}

// ExtensionsSupported reports whether every requested name is available. An
// empty request is always satisfied.
func ExtensionsSupported(requested []string, available map[string]struct{}) bool {
	return len(missing(requested, available)) == 0
}

func ValidationLayersAvailable(loader hal.Loader, requested []string) (bool, error) {
	layers, err := loader.AvailableLayers()
	if err != nil {
		return false, err
	}
	return ExtensionsSupported(requested, layers), nil
}

// CheckCapabilities fails fast when a requested instance extension or
// validation layer is absent. Device extensions are checked per device during
// selection.
func CheckCapabilities(loader hal.Loader, ext Extensions, logger *log.Logger) error {
	available, err := SupportedInstanceExtensions(loader)
	if err != nil {
		return markf(ErrUnavailableCapability, err, "enumerate instance extensions")
	}
	logger.Printf("%d instance extensions available", len(available))

	if names := missing(ext.Instance, available); len(names) > 0 {
		for _, name := range names {
			logger.Printf("missing instance extension %s", name)
		}
		return markf(ErrUnavailableCapability, nil, "instance extensions not supported: %s", strings.Join(names, ", "))
	}

	if len(ext.Validation) == 0 {
		return nil
	}

	layers, err := loader.AvailableLayers()
	if err != nil {
		return markf(ErrUnavailableCapability, err, "enumerate validation layers")
	}
	if names := missing(ext.Validation, layers); len(names) > 0 {
		for _, name := range names {
			logger.Printf("missing validation layer %s", name)
		}
		err := markf(ErrUnavailableCapability, nil, "validation layers not available: %s", strings.Join(names, ", "))
		return errors.WithHint(err, "install the LunarG Vulkan SDK or run without -debug")
	}

	return nil
}

func missing(requested []string, available map[string]struct{}) []string {
	var names []string
	for _, name := range requested {
		if _, ok := available[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
