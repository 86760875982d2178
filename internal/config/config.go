// Package config holds the triangle's settings and parses them from the
// command line.
package config

import (
	"flag"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JoeGuida/renderer/internal/hal"
	"github.com/JoeGuida/renderer/internal/renderer"
)

const (
	ValidationLayer     = "VK_LAYER_KHRONOS_validation"
	DebugUtilsExtension = "VK_EXT_debug_utils"
	SwapchainExtension  = "VK_KHR_swapchain"
)

type Config struct {
	Title  string
	Width  int
	Height int

	// Debug enables the validation layers and the debug messenger.
	Debug     bool
	ShaderDir string

	Format      hal.Format
	ColorSpace  hal.ColorSpace
	PresentMode hal.PresentMode

	// StatsInterval is how often frame statistics are logged. Zero turns
	// them off.
	StatsInterval time.Duration

	InstanceExtensions []string
	DeviceExtensions   []string
	ValidationLayers   []string
}

func Default() Config {
	return Config{
		Title:  "Triangle",
		Width:  1280,
		Height: 720,

		ShaderDir: "shaders",

		Format:      hal.FormatB8G8R8A8SRGB,
		ColorSpace:  hal.ColorSpaceSRGBNonlinear,
		PresentMode: hal.PresentModeMailbox,

		StatsInterval: 5 * time.Second,

		DeviceExtensions: []string{SwapchainExtension},
		ValidationLayers: []string{ValidationLayer},
	}
}

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// Parse applies command line flags on top of Default. Usage goes to output;
// -h and -help return flag.ErrHelp.
func Parse(args []string, output io.Writer) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("triangle", flag.ContinueOnError)
	fs.SetOutput(output)

	var presentMode string
	var layers, instanceExtensions, deviceExtensions stringList

	fs.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "initial window width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "initial window height")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable validation layers and log their messages")
	fs.StringVar(&cfg.ShaderDir, "shaders", cfg.ShaderDir, "directory holding vert.spv and frag.spv")
	fs.StringVar(&presentMode, "present-mode", cfg.PresentMode.String(), "preferred present mode: immediate, mailbox, fifo or fifo-relaxed")
	fs.DurationVar(&cfg.StatsInterval, "stats-interval", cfg.StatsInterval, "how often to log frame statistics, 0 to disable")
	fs.Var(&layers, "layer", "validation layer to enable with -debug, repeatable (replaces "+ValidationLayer+")")
	fs.Var(&instanceExtensions, "instance-ext", "extra instance extension, repeatable")
	fs.Var(&deviceExtensions, "device-ext", "extra device extension, repeatable")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, errors.Newf("unrecognized argument %q", fs.Arg(0))
	}

	mode, ok := hal.ParsePresentMode(presentMode)
	if !ok {
		return Config{}, errors.Newf("unknown present mode %q", presentMode)
	}
	cfg.PresentMode = mode

	if len(layers) > 0 {
		cfg.ValidationLayers = layers
	}
	cfg.InstanceExtensions = append(cfg.InstanceExtensions, instanceExtensions...)
	cfg.DeviceExtensions = append(cfg.DeviceExtensions, deviceExtensions...)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.StatsInterval < 0 {
		return errors.Newf("stats interval %s is negative", c.StatsInterval)
	}
	if c.ShaderDir == "" {
		return errors.New("shader directory is empty")
	}
	return nil
}

// Extensions lists what the renderer has to enable. windowRequired is what
// the window system needs for its surfaces. Validation layers and the debug
// utils extension are only requested with Debug set.
func (c Config) Extensions(windowRequired []string) renderer.Extensions {
	instance := slices.Clone(windowRequired)
	instance = append(instance, c.InstanceExtensions...)
	var layers []string
	if c.Debug {
		instance = append(instance, DebugUtilsExtension)
		layers = slices.Clone(c.ValidationLayers)
	}

	return renderer.Extensions{
		Instance:   unique(instance),
		Device:     unique(slices.Clone(c.DeviceExtensions)),
		Validation: unique(layers),
	}
}

func (c Config) Preferences() renderer.SwapchainPreferences {
	return renderer.SwapchainPreferences{
		Format:      c.Format,
		ColorSpace:  c.ColorSpace,
		PresentMode: c.PresentMode,
	}
}

// unique drops repeated names, keeping the first occurrence.
func unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
