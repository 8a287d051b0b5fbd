package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/r3e-network/llrt-go/internal/config"
	"github.com/r3e-network/llrt-go/internal/console"
	"github.com/r3e-network/llrt-go/internal/engine"
	"github.com/r3e-network/llrt-go/internal/invocation"
	"github.com/r3e-network/llrt-go/internal/modules"
	"github.com/r3e-network/llrt-go/internal/netio"
	"github.com/r3e-network/llrt-go/internal/require"
	"github.com/r3e-network/llrt-go/pkg/logger"
)

// runEval evaluates inline source with no module resolution (spec.md §6
// "llrt -e <source>"): no require() is attached, matching a bare script
// with no file of its own to resolve relative specifiers against.
func runEval(source string, log *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	host := newHost(cfg)

	log.Debugf("evaluating %d bytes of inline source", len(source))
	var runErr error
	host.RunAndHandleExceptions(func() error {
		_, runErr = host.RunModule("<eval>", source)
		return runErr
	})
	return nil
}

// runFile evaluates a JS module file. When AWS_LAMBDA_RUNTIME_API is set
// it instead resolves _HANDLER/LAMBDA_HANDLER against the file's module
// and drives the invocation loop (spec.md §4.5) until _EXIT_ITERATIONS
// is reached, SIGTERM/SIGINT arrives, or the control plane is lost.
func runFile(path string, log *logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	host := newHost(cfg)
	resolver, loader := newModuleIO(cfg)
	bridge := wireRequire(host, resolver, loader)
	host.AttachRequire(bridge, abs)

	if cfg.RuntimeAPI == "" {
		source, err := loader.ReadFile(abs)
		if err != nil {
			return err
		}
		var runErr error
		host.RunAndHandleExceptions(func() error {
			_, runErr = host.RunModule(abs, string(source))
			return runErr
		})
		return nil
	}

	return runHandlerMode(host, bridge, cfg, abs, log)
}

// runHandlerMode drives the Lambda invocation loop: resolve the handler
// named by cfg.Handler against abs (the task root's entry file), switch
// console output to Lambda JSON log lines tagged with the current
// request id, then loop until the process is asked to stop.
func runHandlerMode(host *engine.Host, bridge *require.Bridge, cfg *config.Config, abs string, log *logger.Logger) error {
	currentRequestID := ""
	host.EnableLambdaLogging(minConsoleLevel(cfg.LogLevel), func() string { return currentRequestID })

	handler, err := invocation.ResolveHandler(bridge, abs, cfg.Handler)
	if err != nil {
		return fmt.Errorf("resolve handler %q: %w", cfg.Handler, err)
	}

	cp := invocation.NewControlPlane(cfg.RuntimeAPI)
	loop := invocation.NewLoop(cp, host, handler, cfg)
	loop.OnRequestID = func(id string) { currentRequestID = id }

	log.Infof("llrt %s: polling %s for %s", version, cfg.RuntimeAPI, cfg.Handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return loop.Run(ctx)
}

func newHost(cfg *config.Config) *engine.Host {
	return engine.New(
		engine.WithVersion(version),
		engine.WithGCThresholdMB(int64(cfg.GCThresholdMB)),
		engine.WithNetGuard(netio.Guard{
			Allow: netio.ParseHostList(cfg.NetAllow),
			Deny:  netio.ParseHostList(cfg.NetDeny),
		}),
	)
}

// newModuleIO builds the resolver/loader pair require() calls for this
// process use. Its fallback search roots are the pseudo-module directory
// (if set) followed by the task root, probed in that order after
// resolution against the referrer fails (spec.md §4.3, §6
// LLRT_PSEUDO_MODULE_DIR).
func newModuleIO(cfg *config.Config) (*modules.Resolver, *modules.Loader) {
	var roots []string
	if cfg.PseudoModuleDir != "" {
		roots = append(roots, cfg.PseudoModuleDir)
	}
	if cfg.TaskRoot != "" {
		roots = append(roots, cfg.TaskRoot)
	}
	return modules.NewResolver(map[string]bool{"net": true, "stream": true, "zlib": true}, roots), modules.NewLoader()
}

func wireRequire(host *engine.Host, resolver *modules.Resolver, loader *modules.Loader) *require.Bridge {
	runner := engine.NewRequireRunner(host)
	bridge := require.New(resolver, loader, runner)
	runner.Bind(bridge)
	host.InstallNodeBuiltins(bridge)
	return bridge
}

func minConsoleLevel(name string) console.Level {
	switch strings.ToLower(name) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn":
		return console.LevelWarn
	case "error":
		return console.LevelError
	default:
		return console.LevelInfo
	}
}
