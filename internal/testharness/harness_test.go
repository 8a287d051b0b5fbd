package testharness

import (
	"testing"

	"github.com/r3e-network/llrt-go/internal/engine"
)

func run(t *testing.T, source string) *Harness {
	t.Helper()
	host := engine.New()
	h := Install(host)
	if _, err := host.RunModule("<test>", source); err != nil {
		t.Fatalf("unexpected error running source: %v", err)
	}
	return h
}

func TestPassingAssertionsRecordSuccess(t *testing.T) {
	h := run(t, `
		describe("math", function() {
			test("adds", function() {
				expect(1 + 1).toBe(2);
			});
		});
	`)

	results := h.Results()
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("expected test to pass, got error: %v", results[0].Err)
	}
	if results[0].Suite != "math" || results[0].Name != "adds" {
		t.Fatalf("unexpected suite/name: %+v", results[0])
	}
	if h.Failed() {
		t.Fatal("expected Failed() to be false")
	}
}

func TestFailingAssertionRecordsFailure(t *testing.T) {
	h := run(t, `
		test("breaks", function() {
			expect(1).toBe(2);
		});
	`)

	results := h.Results()
	if len(results) != 1 || results[0].Passed {
		t.Fatalf("expected a recorded failure, got %+v", results)
	}
	if !h.Failed() {
		t.Fatal("expected Failed() to be true")
	}
}

func TestToEqualDeepComparesObjects(t *testing.T) {
	h := run(t, `
		test("deep equal", function() {
			expect({ a: 1, b: [1, 2] }).toEqual({ a: 1, b: [1, 2] });
		});
	`)
	if h.Failed() {
		t.Fatalf("expected pass, got %+v", h.Results())
	}
}

func TestToThrowRequiresFunctionToThrow(t *testing.T) {
	h := run(t, `
		test("throws", function() {
			expect(function() { throw new Error("boom"); }).toThrow();
		});
		test("does not throw", function() {
			expect(function() { return 1; }).toThrow();
		});
	`)

	results := h.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("expected first test to pass: %v", results[0].Err)
	}
	if results[1].Passed {
		t.Fatal("expected second test to fail")
	}
}
