package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/JoeGuida/renderer/internal/clock"
	"github.com/JoeGuida/renderer/internal/config"
	"github.com/JoeGuida/renderer/internal/input"
	"github.com/JoeGuida/renderer/internal/platform"
	"github.com/JoeGuida/renderer/internal/renderer"
	"github.com/JoeGuida/renderer/internal/shaders"
	"github.com/JoeGuida/renderer/internal/vkng"
)

func run(cfg config.Config) error {
	shaderSet, err := shaders.LoadDir(context.Background(), cfg.ShaderDir)
	if err != nil {
		return errors.WithHint(err, "compile the shaders with go generate ./internal/shaders")
	}

	window, err := platform.Open(cfg.Title, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer window.Close()

	loader, err := vkng.NewSDLLoader()
	if err != nil {
		return err
	}

	ctx, err := renderer.Init(loader, window, renderer.Options{
		ApplicationName: cfg.Title,
		Extensions:      cfg.Extensions(window.RequiredExtensions()),
		DebugMessenger:  cfg.Debug,
		Preferences:     cfg.Preferences(),
		Shaders:         shaderSet,
	})
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	keys := input.New()
	if cfg.Debug {
		for _, action := range []input.Action{input.ActionForward, input.ActionBack, input.ActionLeft, input.ActionRight} {
			keys.On(action, false, func() {
				x, y := keys.Axis()
				log.Printf("move %s, axis (%d, %d)", action, x, y)
			})
		}
	}

	frameClock := clock.New(cfg.StatsInterval)
	return window.Run(platform.Hooks{
		Input:   keys,
		Resized: ctx.NotifyResized,
		Frame: func() error {
			frameClock.Tick()
			if err := ctx.DrawFrame(); err != nil {
				return err
			}

			if report, ok := frameClock.Report(); ok {
				stats := ctx.Stats()
				log.Printf("%s (presented %d, skipped %d, rebuilds %d)", report, stats.Presented, stats.Skipped, stats.Rebuilds)
			}
			return nil
		},
	})
}

func main() {
	runtime.LockOSThread()

	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		log.Fatalf("%+v\n", err)
	}

	err = run(cfg)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
