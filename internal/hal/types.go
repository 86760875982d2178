// Package hal is the narrow slice of the Vulkan API the renderer talks to.
//
// Handles are opaque: a backend stores whatever it needs in them and the renderer
// only passes them back. Value types carry the subset of driver structs the
// renderer reads or fills in, using the same numeric values as Vulkan so a
// backend converts them with a plain cast.
package hal

import (
	"fmt"
	"math"
	"time"
)

type (
	PhysicalDevice any
	Surface        any
	DebugMessenger any
	Queue          any
	Swapchain      any
	Image          any
	ImageView      any
	Framebuffer    any
	RenderPass     any
	ShaderModule   any
	PipelineLayout any
	Pipeline       any
	CommandPool    any
	CommandBuffer  any
	Semaphore      any
	Fence          any
)

// NoTimeout makes a wait block until the driver answers.
const NoTimeout time.Duration = math.MaxInt64

// UndefinedExtent is reported in SurfaceCapabilities.CurrentExtent when the
// surface size is decided by the swapchain rather than the window system.
const UndefinedExtent = -1

type Extent2D struct {
	Width  int
	Height int
}

func (e Extent2D) Empty() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent2D) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

type Offset2D struct {
	X int
	Y int
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8UNorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8UNorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "Undefined"
	case FormatR8G8B8A8UNorm:
		return "R8G8B8A8_UNORM"
	case FormatR8G8B8A8SRGB:
		return "R8G8B8A8_SRGB"
	case FormatB8G8R8A8UNorm:
		return "B8G8R8A8_UNORM"
	case FormatB8G8R8A8SRGB:
		return "B8G8R8A8_SRGB"
	}
	return fmt.Sprintf("Format(%d)", int32(f))
}

type ColorSpace int32

const (
	ColorSpaceSRGBNonlinear ColorSpace = 0
)

func (c ColorSpace) String() string {
	if c == ColorSpaceSRGBNonlinear {
		return "SRGB_NONLINEAR"
	}
	return fmt.Sprintf("ColorSpace(%d)", int32(c))
}

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

var presentModeNames = map[PresentMode]string{
	PresentModeImmediate:   "immediate",
	PresentModeMailbox:     "mailbox",
	PresentModeFIFO:        "fifo",
	PresentModeFIFORelaxed: "fifo-relaxed",
}

func (m PresentMode) String() string {
	if name, ok := presentModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PresentMode(%d)", int32(m))
}

// ParsePresentMode accepts the names printed by PresentMode.String.
func ParsePresentMode(name string) (PresentMode, bool) {
	for mode, modeName := range presentModeNames {
		if modeName == name {
			return mode, true
		}
	}
	return 0, false
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type SurfaceCapabilities struct {
	MinImageCount int
	// MaxImageCount is zero when the driver sets no upper bound.
	MaxImageCount  int
	CurrentExtent  Extent2D
	MinImageExtent Extent2D
	MaxImageExtent Extent2D
}

type QueueFamilyProperties struct {
	Graphics   bool
	QueueCount int
}

type DeviceType int32

const (
	DeviceTypeOther         DeviceType = 0
	DeviceTypeIntegratedGPU DeviceType = 1
	DeviceTypeDiscreteGPU   DeviceType = 2
	DeviceTypeVirtualGPU    DeviceType = 3
	DeviceTypeCPU           DeviceType = 4
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	}
	return "other"
}

type DeviceProperties struct {
	Name                string
	Type                DeviceType
	MaxImageDimension2D int
}

type ShaderStage int32

const (
	StageVertex   ShaderStage = 0x00000001
	StageFragment ShaderStage = 0x00000010
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(%#x)", int32(s))
}

// Result is the part of a driver's return code the frame loop branches on.
type Result int

const (
	Success Result = iota
	Suboptimal
	Timeout
	ErrorOutOfDate
	ErrorDeviceLost
	ErrorUnknown
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Suboptimal:
		return "suboptimal"
	case Timeout:
		return "timeout"
	case ErrorOutOfDate:
		return "out of date"
	case ErrorDeviceLost:
		return "device lost"
	}
	return "unknown error"
}

type DebugSeverity int

const (
	SeverityVerbose DebugSeverity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s DebugSeverity) String() string {
	switch s {
	case SeverityVerbose:
		return "verbose"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warn"
	}
	return "error"
}

// DebugCallback receives validation layer output.
type DebugCallback func(severity DebugSeverity, kind string, message string)
