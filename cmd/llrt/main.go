// Command llrt is the runtime's process entry point: evaluate a JS file
// or inline source, compile source to a bytecode artifact, run a test
// suite, or -- when AWS_LAMBDA_RUNTIME_API is set -- drive the
// invocation loop against a Lambda control plane (spec.md §6 "CLI").
//
// Usage:
//
//	llrt <file>                 Evaluate a JS module and exit
//	llrt -e <source>            Evaluate inline source and exit
//	llrt -v                     Print version and exit
//	llrt compile <in> [out]     Compile source to a bytecode artifact
//	llrt test [-d dir] [filter] Run *.test.* files under dir
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/r3e-network/llrt-go/pkg/logger"
)

// version is overridden via -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	var (
		showVersion = flag.BoolP("version", "v", false, "Print version and exit")
		evalSource  = flag.StringP("eval", "e", "", "Evaluate inline source and exit")
		logLevel    = flag.String("log-level", "", "Override LLRT_LOG_LEVEL (trace|debug|info|warn|error)")
	)

	// Stop parsing global flags at the first non-flag argument, so
	// "llrt compile in.js out.lrt" and "llrt test -d spec" route their
	// own flags to the subcommand instead of the top-level parser.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `llrt - a small, fast JavaScript runtime for Lambda functions

Usage:
  llrt <file>                 Evaluate a JS module and exit
  llrt -e, --eval <source>    Evaluate inline source and exit
  llrt -v, --version          Print version and exit
  llrt compile <in> [out]     Compile source to a bytecode artifact (.lrt)
  llrt test [-d dir] [filter] Discover and run *.test.* files

If AWS_LAMBDA_RUNTIME_API is set, "llrt <file>" instead resolves
_HANDLER/LAMBDA_HANDLER against the given entry module and drives the
Lambda invocation loop (spec.md §4.5) rather than evaluating once.
`)
	}

	flag.Parse()

	log := logger.New(logger.LoggingConfig{
		Level:  firstNonEmpty(*logLevel, os.Getenv("LLRT_LOG_LEVEL"), "info"),
		Format: firstNonEmpty(os.Getenv("LLRT_LOG_FORMAT"), "text"),
		Output: "stdout",
	})

	if *showVersion {
		fmt.Println(version)
		return
	}

	args := flag.Args()

	if *evalSource != "" {
		if err := runEval(*evalSource, log); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		return
	}

	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "compile":
		err = runCompile(args[1:])
	case "test":
		err = runTest(args[1:])
	default:
		err = runFile(args[0], log)
	}

	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
