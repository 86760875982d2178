package renderer

import (
	"log"

	"github.com/JoeGuida/renderer/internal/hal"
)

// DiscreteBonus is added to the score of discrete GPUs. It outweighs the
// image dimension limit of any integrated part in practice.
const DiscreteBonus = 1000

// PhysicalDeviceCandidate is an enumerated device with its cached properties.
type PhysicalDeviceCandidate struct {
	Handle     hal.PhysicalDevice
	Properties hal.DeviceProperties
	Score      int
}

// Device is the logical device together with its queues.
type Device struct {
	Physical      PhysicalDeviceCandidate
	Handle        hal.Device
	Families      QueueFamily
	GraphicsQueue hal.Queue
	PresentQueue  hal.Queue
}

// IsGPUUsable is true iff the device has queue families for graphics and
// presentation, supports every required device extension, and offers at least
// one surface format and one present mode for surface. Query failures make the
// device unusable.
func IsGPUUsable(instance hal.Instance, device hal.PhysicalDevice, surface hal.Surface, required []string) bool {
	_, found, err := ResolveQueueFamily(instance, device, surface)
	if err != nil || !found {
		return false
	}

	available, err := SupportedDeviceExtensions(instance, device)
	if err != nil || !ExtensionsSupported(required, available) {
		return false
	}

	formats, err := instance.SurfaceFormats(device, surface)
	if err != nil || len(formats) == 0 {
		return false
	}

	modes, err := instance.PresentModes(device, surface)
	if err != nil || len(modes) == 0 {
		return false
	}

	return true
}

// CapabilityScore ranks a usable device by its largest 2D image dimension,
// with DiscreteBonus on top for discrete GPUs.
func CapabilityScore(props hal.DeviceProperties) int {
	score := props.MaxImageDimension2D
	if props.Type == hal.DeviceTypeDiscreteGPU {
		score += DiscreteBonus
	}
	return score
}

// ScoreDevice returns 0 for devices that fail IsGPUUsable.
func ScoreDevice(instance hal.Instance, device hal.PhysicalDevice, surface hal.Surface, required []string) (PhysicalDeviceCandidate, bool) {
	candidate := PhysicalDeviceCandidate{Handle: device}

	props, err := instance.DeviceProperties(device)
	if err != nil {
		return candidate, false
	}
	candidate.Properties = props

	if !IsGPUUsable(instance, device, surface, required) {
		return candidate, false
	}

	candidate.Score = CapabilityScore(props)
	return candidate, true
}

// SelectPhysicalDevice picks the device with the strictly highest score.
// Ties go to the device enumerated first.
func SelectPhysicalDevice(instance hal.Instance, surface hal.Surface, required []string, logger *log.Logger) (PhysicalDeviceCandidate, error) {
	devices, err := instance.PhysicalDevices()
	if err != nil {
		return PhysicalDeviceCandidate{}, markf(ErrNoSuitableDevice, err, "enumerate physical devices")
	}
	if len(devices) == 0 {
		return PhysicalDeviceCandidate{}, markf(ErrNoSuitableDevice, nil, "no physical devices found")
	}

	var best PhysicalDeviceCandidate
	for _, device := range devices {
		candidate, usable := ScoreDevice(instance, device, surface, required)
		if !usable {
			logger.Printf("device %q is not usable", candidate.Properties.Name)
			continue
		}

		logger.Printf("device %q (%s) scored %d", candidate.Properties.Name, candidate.Properties.Type, candidate.Score)
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	if best.Score <= 0 {
		return PhysicalDeviceCandidate{}, markf(ErrNoSuitableDevice, nil, "none of %d physical devices is usable", len(devices))
	}
	return best, nil
}

// CreateLogicalDevice opens candidate with one queue per distinct family and the
// given device extensions enabled.
func CreateLogicalDevice(instance hal.Instance, candidate PhysicalDeviceCandidate, surface hal.Surface, extensions []string) (*Device, error) {
	families, found, err := ResolveQueueFamily(instance, candidate.Handle, surface)
	if err != nil {
		return nil, markf(ErrQueueFamilyNotFound, err, "resolve queue families of %q", candidate.Properties.Name)
	}
	if !found {
		return nil, markf(ErrQueueFamilyNotFound, nil, "device %q has no graphics and presentation queue families", candidate.Properties.Name)
	}

	var queues []hal.QueueRequest
	for _, family := range families.Unique() {
		queues = append(queues, hal.QueueRequest{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}

	handle, err := instance.CreateDevice(candidate.Handle, hal.DeviceInfo{
		Queues:     queues,
		Extensions: extensions,
	})
	if err != nil || handle == nil {
		return nil, creationFailed(err, "create logical device on %q", candidate.Properties.Name)
	}

	return &Device{
		Physical:      candidate,
		Handle:        handle,
		Families:      families,
		GraphicsQueue: handle.Queue(families.Graphics),
		PresentQueue:  handle.Queue(families.Presentation),
	}, nil
}
