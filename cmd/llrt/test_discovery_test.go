package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, dir, rel string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("test('x', function(){});"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverTestFilesSkipsNodeModulesAndDotDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.test.js")
	writeFile(t, root, "sub/b.test.mjs")
	writeFile(t, root, "node_modules/pkg/c.test.js")
	writeFile(t, root, ".hidden/d.test.js")
	writeFile(t, root, "sub/not-a-test.js")

	files, err := discoverTestFiles(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)

	want := []string{
		filepath.Join(root, "a.test.js"),
		filepath.Join(root, "sub/b.test.mjs"),
	}
	sort.Strings(want)

	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("got %v, want %v", files, want)
		}
	}
}

func TestDiscoverTestFilesAppliesFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "foo.test.js")
	writeFile(t, root, "bar.test.js")

	files, err := discoverTestFiles(root, []string{"foo"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "foo.test.js" {
		t.Fatalf("unexpected filtered result: %v", files)
	}
}

func TestIsTestFileName(t *testing.T) {
	cases := map[string]bool{
		"foo.test.js":  true,
		"foo.test.mjs": true,
		"foo.test.cjs": true,
		"foo.test.ts":  true,
		"foo.js":       false,
		"foo.spec.js":  false,
	}
	for name, want := range cases {
		if got := isTestFileName(name); got != want {
			t.Errorf("isTestFileName(%q) = %v, want %v", name, got, want)
		}
	}
}
