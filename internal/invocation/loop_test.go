package invocation

import (
	"context"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/llrt-go/internal/config"
	"github.com/r3e-network/llrt-go/internal/engine"
	"github.com/r3e-network/llrt-go/internal/invocation/testserver"
	"github.com/r3e-network/llrt-go/internal/modules"
	requirepkg "github.com/r3e-network/llrt-go/internal/require"
)

type fakeFS struct{ files map[string][]byte }

func (f *fakeFS) exists(path string) bool              { _, ok := f.files[path]; return ok }
func (f *fakeFS) read(path string) ([]byte, error)     { return f.files[path], nil }

// buildHandler wires a fresh engine.Host and require.Bridge over a
// single in-memory module at /app/index.js, and resolves "index.handler"
// against it -- the same construction every test scenario needs before
// driving a Loop.
func buildHandler(t *testing.T, source string) (*engine.Host, goja.Callable) {
	t.Helper()
	fs := &fakeFS{files: map[string][]byte{"/app/index.js": []byte(source)}}
	resolver := &modules.Resolver{Builtins: map[string]bool{}, Exists: fs.exists}
	loader := &modules.Loader{ReadFile: fs.read}

	host := engine.New()
	runner := engine.NewRequireRunner(host)
	bridge := requirepkg.New(resolver, loader, runner)
	runner.Bind(bridge)

	handler, err := ResolveHandler(bridge, "/app/entry.js", "index.handler")
	require.NoError(t, err)
	return host, handler
}

func TestHappyPathThreeIterations(t *testing.T) {
	host, handler := buildHandler(t, `exports.handler = function(event, context) {
		return { seen: event.n, requestId: context.awsRequestId };
	};`)

	srv := testserver.New([]testserver.Event{
		{DeadlineMS: 9999999999999, InvokedFunctionARN: "arn:1", Body: `{"n":1}`},
		{DeadlineMS: 9999999999999, InvokedFunctionARN: "arn:1", Body: `{"n":2}`},
		{DeadlineMS: 9999999999999, InvokedFunctionARN: "arn:1", Body: `{"n":3}`},
	})
	defer srv.Close()

	cfg := &config.Config{ExitIterations: 3}
	cp := NewControlPlane(srv.Addr())

	loop := NewLoop(cp, host, handler, cfg)
	require.NoError(t, loop.Run(context.Background()))

	posted := srv.Posted()
	require.Len(t, posted, 3)
	for i, p := range posted {
		assert.Equal(t, "response", p.Kind)
		assert.Equal(t, float64(i+1), p.Body["seen"])
	}
}

func TestHandlerThrowsPostsClassifiedError(t *testing.T) {
	host, handler := buildHandler(t, `exports.handler = function(event, context) {
		throw new Error("boom");
	};`)

	srv := testserver.New([]testserver.Event{
		{DeadlineMS: 9999999999999, InvokedFunctionARN: "arn:1", Body: `{}`},
	})
	defer srv.Close()

	cfg := &config.Config{ExitIterations: 1}
	cp := NewControlPlane(srv.Addr())

	loop := NewLoop(cp, host, handler, cfg)
	require.NoError(t, loop.Run(context.Background()))

	posted := srv.Posted()
	require.Len(t, posted, 1)
	assert.Equal(t, "error", posted[0].Kind)
	assert.Equal(t, "boom", posted[0].Body["errorMessage"])
}

func TestNonAcceptedPostResponseIsFatal(t *testing.T) {
	host, handler := buildHandler(t, `exports.handler = function(event, context) {
		return { ok: true };
	};`)

	srv := testserver.New([]testserver.Event{
		{DeadlineMS: 9999999999999, InvokedFunctionARN: "arn:1", Body: `{}`},
		{DeadlineMS: 9999999999999, InvokedFunctionARN: "arn:1", Body: `{}`},
	})
	defer srv.Close()
	srv.FailResponses()

	cfg := &config.Config{ExitIterations: 2}
	cp := NewControlPlane(srv.Addr())

	loop := NewLoop(cp, host, handler, cfg)
	err := loop.Run(context.Background())
	require.Error(t, err)

	// The loop must stop after the first failed POST rather than
	// continuing to poll for a second invocation.
	assert.Empty(t, srv.Posted())
}

func TestResolveHandlerRejectsNonCallableExport(t *testing.T) {
	fs := &fakeFS{files: map[string][]byte{"/app/index.js": []byte(`exports.handler = 42;`)}}
	resolver := &modules.Resolver{Builtins: map[string]bool{}, Exists: fs.exists}
	loader := &modules.Loader{ReadFile: fs.read}
	host := engine.New()
	runner := engine.NewRequireRunner(host)
	bridge := requirepkg.New(resolver, loader, runner)
	runner.Bind(bridge)

	_, err := ResolveHandler(bridge, "/app/entry.js", "index.handler")
	assert.Error(t, err)
}
