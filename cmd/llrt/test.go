package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/r3e-network/llrt-go/internal/config"
	"github.com/r3e-network/llrt-go/internal/testharness"
)

// runTest implements "llrt test [-d dir] <filters...>" (spec.md §6):
// discover *.test.* files under dir (default "."), skipping
// node_modules and dotfiles/dotdirs, and run each through the built-in
// test harness, one fresh Host per file so a failure or global leak in
// one file cannot contaminate another.
func runTest(args []string) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	dir := fs.StringP("dir", "d", ".", "root directory to search for *.test.* files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filters := fs.Args()

	files, err := discoverTestFiles(*dir, filters)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("no test files found")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	totalFailed := 0
	for _, file := range files {
		passed, failed, err := runTestFile(cfg, file)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", file, err)
			totalFailed++
			continue
		}
		for _, r := range passed {
			fmt.Printf("  ok  %s > %s\n", r.Suite, r.Name)
		}
		for _, r := range failed {
			fmt.Printf("  FAIL %s > %s: %v\n", r.Suite, r.Name, r.Err)
		}
		totalFailed += len(failed)
	}

	fmt.Printf("\n%d file(s), %d failing assertion(s)\n", len(files), totalFailed)
	if totalFailed > 0 {
		return fmt.Errorf("%d test(s) failed", totalFailed)
	}
	return nil
}

func runTestFile(cfg *config.Config, file string) (passed, failed []testharness.Result, err error) {
	host := newHost(cfg)
	harness := testharness.Install(host)

	source, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}

	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("panic: %v", r)
			}
		}()
		_, runErr = host.RunModule(file, string(source))
	}()
	if runErr != nil {
		return nil, nil, runErr
	}

	for _, r := range harness.Results() {
		if r.Passed {
			passed = append(passed, r)
		} else {
			failed = append(failed, r)
		}
	}
	return passed, failed, nil
}

// discoverTestFiles walks root looking for files matching *.test.*,
// skipping node_modules directories and any dotfile/dotdir, and keeping
// only paths containing at least one of filters (a plain substring
// match) when filters is non-empty.
func discoverTestFiles(root string, filters []string) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		base := info.Name()
		if info.IsDir() {
			if base == "node_modules" || (strings.HasPrefix(base, ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") {
			return nil
		}
		if !isTestFileName(base) {
			return nil
		}
		if len(filters) > 0 && !matchesAnyFilter(path, filters) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isTestFileName(name string) bool {
	for _, ext := range []string{".js", ".mjs", ".cjs", ".ts"} {
		if strings.HasSuffix(name, ".test"+ext) {
			return true
		}
	}
	return false
}

func matchesAnyFilter(path string, filters []string) bool {
	for _, f := range filters {
		if strings.Contains(path, f) {
			return true
		}
	}
	return false
}
