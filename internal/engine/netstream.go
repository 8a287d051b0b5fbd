package engine

import (
	"net"
	"strconv"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/compress"
	"github.com/r3e-network/llrt-go/internal/events"
	"github.com/r3e-network/llrt-go/internal/jsbuffer"
	"github.com/r3e-network/llrt-go/internal/netio"
	"github.com/r3e-network/llrt-go/internal/require"
	"github.com/r3e-network/llrt-go/internal/streams"
)

// InstallNodeBuiltins registers the "net", "stream" and "zlib"
// require()-able builtin modules against bridge (spec.md §4.6 Stream Pair, §4.7 Socket
// and Server), so internal/netio and internal/streams -- fully
// implemented but otherwise only unit-tested in isolation -- become
// reachable from a script. Grounded on system/tee/script_engine.go's
// vm.NewObject()/vm.Set() host-object idiom, the same one
// registerBuiltinClasses uses for every other class surface.
func (h *Host) InstallNodeBuiltins(bridge *require.Bridge) {
	bridge.RegisterBuiltin("net", h.netModuleExports())
	bridge.RegisterBuiltin("stream", h.streamModuleExports())
	bridge.RegisterBuiltin("zlib", h.zlibModuleExports())
}

// --- zlib ------------------------------------------------------------------

// zlibModuleExports gives a script the synchronous gzip/deflate
// functions described in SPEC_FULL.md §4.12, each a Buffer-to-Buffer
// call backed by internal/compress.
func (h *Host) zlibModuleExports() require.Exports {
	vm := h.VM

	wrap := func(fn func([]byte) ([]byte, error)) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			out, err := fn(bytesFromJSValue(call.Argument(0)))
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}
			return h.wrapBuffer(jsbuffer.FromBytes(out))
		}
	}

	return require.Exports{
		"gzipSync":       vm.ToValue(wrap(compress.GzipSync)),
		"gunzipSync":     vm.ToValue(wrap(compress.GunzipSync)),
		"deflateSync":    vm.ToValue(wrap(compress.DeflateSync)),
		"inflateSync":    vm.ToValue(wrap(compress.InflateSync)),
		"deflateRawSync": vm.ToValue(wrap(compress.DeflateRawSync)),
		"inflateRawSync": vm.ToValue(wrap(compress.InflateRawSync)),
	}
}

// --- net -----------------------------------------------------------------

func (h *Host) netModuleExports() require.Exports {
	vm := h.VM

	connect := func(call goja.FunctionCall) goja.Value {
		addr := parseNetAddress(call)
		sock := netio.NewSocket(addr, false)
		obj := h.wrapSocket(sock)
		go func() {
			if err := sock.Connect(h.opts.netGuard, net.Dial); err != nil {
				h.scheduler.Defer(func() { sock.Emitter.Emit("error", false, err) })
			}
		}()
		return obj
	}

	return require.Exports{
		"createConnection": vm.ToValue(connect),
		"connect":          vm.ToValue(connect),
		"createServer": vm.ToValue(func(call goja.FunctionCall) goja.Value {
			fn, _ := goja.AssertFunction(call.Argument(0))
			return h.wrapServerFactory(fn)
		}),
	}
}

// parseNetAddress accepts both of Node's net.connect call shapes: an
// options object ({port, host} or {path} for a Unix socket), or
// positional (port, host) arguments.
func parseNetAddress(call goja.FunctionCall) netio.Address {
	addr := netio.Address{Family: "tcp", Host: "127.0.0.1"}
	if opts, ok := call.Argument(0).Export().(map[string]any); ok {
		if path, ok := opts["path"].(string); ok && path != "" {
			return netio.Address{Family: "unix", Path: path}
		}
		if host, ok := opts["host"].(string); ok && host != "" {
			addr.Host = host
		}
		addr.Port = intFromAny(opts["port"])
		return addr
	}
	addr.Port = int(call.Argument(0).ToInteger())
	if len(call.Arguments) > 1 {
		if host := call.Argument(1).String(); host != "" {
			addr.Host = host
		}
	}
	return addr
}

func intFromAny(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// wrapSocket exposes a *netio.Socket as the minimal subset of Node's
// net.Socket surface a script needs: on/write/end/destroy. "data" and
// "end" listen on the Readable side's own emitter; everything else
// (connect/error/close) listens on the socket-level emitter.
func (h *Host) wrapSocket(sock *netio.Socket) *goja.Object {
	vm := h.VM
	sock.Emitter.Scheduler = h.scheduler
	sock.Readable.Emitter.Scheduler = h.scheduler
	obj := vm.NewObject()

	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value {
		event := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return obj
		}
		switch event {
		case "data", "end":
			h.onEmitter(sock.Readable.Emitter, event, fn)
		case "drain", "finish":
			if sock.Writable != nil {
				sock.Writable.Emitter.Scheduler = h.scheduler
				h.onEmitter(sock.Writable.Emitter, event, fn)
			}
		default:
			h.onEmitter(sock.Emitter, event, fn)
		}
		return obj
	})
	_ = obj.Set("write", func(call goja.FunctionCall) goja.Value {
		if sock.Writable == nil {
			return vm.ToValue(false)
		}
		sock.Writable.Emitter.Scheduler = h.scheduler
		return vm.ToValue(sock.Writable.Write(bytesFromJSValue(call.Argument(0)), nil))
	})
	_ = obj.Set("end", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 && sock.Writable != nil {
			sock.Writable.Write(bytesFromJSValue(call.Argument(0)), nil)
		}
		sock.Close()
		return goja.Undefined()
	})
	_ = obj.Set("destroy", func(call goja.FunctionCall) goja.Value {
		sock.Close()
		return goja.Undefined()
	})
	return obj
}

// wrapServerFactory builds the object net.createServer() returns:
// listen/on/close/address, backed by a *netio.Server once listen()
// actually binds a port. Listener registrations made before listen()
// is called are queued and attached once the server exists.
func (h *Host) wrapServerFactory(onConnection goja.Callable) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()

	var srv *netio.Server
	type pendingListener struct {
		event string
		fn    goja.Callable
	}
	var pending []pendingListener

	attach := func(event string, fn goja.Callable) {
		srv.Emitter.On(event, func(args ...any) {
			jsArgs := make([]goja.Value, len(args))
			for i, a := range args {
				jsArgs[i] = h.toJSEventArg(a)
			}
			_, _ = fn(goja.Undefined(), jsArgs...)
		})
	}

	register := func(event string, fn goja.Callable) {
		if srv != nil {
			attach(event, fn)
			return
		}
		pending = append(pending, pendingListener{event, fn})
	}

	if onConnection != nil {
		register("connection", onConnection)
	}

	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return obj
		}
		register(call.Argument(0).String(), fn)
		return obj
	})

	_ = obj.Set("listen", func(call goja.FunctionCall) goja.Value {
		port := int(call.Argument(0).ToInteger())
		host := "127.0.0.1"
		var cb goja.Callable
		for _, arg := range call.Arguments[1:] {
			if fn, ok := goja.AssertFunction(arg); ok {
				cb = fn
				continue
			}
			if s, ok := arg.Export().(string); ok {
				host = s
			}
		}

		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			panic(vm.ToValue(err.Error()))
		}
		srv = netio.Listen(ln, false)
		srv.Emitter.Scheduler = h.scheduler
		for _, p := range pending {
			attach(p.event, p.fn)
		}
		pending = nil

		go func() { _ = srv.Serve() }()
		if cb != nil {
			h.scheduler.Defer(func() { _, _ = cb(goja.Undefined()) })
		}
		return obj
	})

	_ = obj.Set("close", func(call goja.FunctionCall) goja.Value {
		if srv != nil {
			_ = srv.Close()
		}
		return goja.Undefined()
	})
	_ = obj.Set("address", func(call goja.FunctionCall) goja.Value {
		if srv == nil {
			return goja.Null()
		}
		tcp, ok := srv.Addr().(*net.TCPAddr)
		if !ok {
			return goja.Null()
		}
		addrObj := vm.NewObject()
		_ = addrObj.Set("address", tcp.IP.String())
		_ = addrObj.Set("port", tcp.Port)
		return addrObj
	})
	return obj
}

func (h *Host) onEmitter(emitter *events.Emitter, event string, fn goja.Callable) {
	emitter.On(event, func(args ...any) {
		jsArgs := make([]goja.Value, len(args))
		for i, a := range args {
			jsArgs[i] = h.toJSEventArg(a)
		}
		_, _ = fn(goja.Undefined(), jsArgs...)
	})
}

// toJSEventArg converts an Emitter argument into a goja.Value, giving
// the Go-domain types an Emit call can carry (a nested *netio.Socket
// from "connection", a []byte chunk from "data", a Go error) their JS
// equivalents instead of goja's generic reflection-based conversion.
func (h *Host) toJSEventArg(a any) goja.Value {
	switch v := a.(type) {
	case *netio.Socket:
		return h.wrapSocket(v)
	case []byte:
		return h.wrapBuffer(jsbuffer.FromBytes(v))
	case error:
		return h.VM.ToValue(v.Error())
	default:
		return h.VM.ToValue(v)
	}
}

func bytesFromJSValue(v goja.Value) []byte {
	if b := bufferFromObject(v); b != nil {
		return append([]byte(nil), b.Bytes()...)
	}
	if b := exportedByteSlice(v); b != nil {
		return b
	}
	return []byte(v.String())
}

// --- stream ----------------------------------------------------------------

// streamModuleExports gives a script direct access to the Readable/
// Writable stream pair (spec.md §4.6) outside of a Socket or fetch
// Response, the way Node's "stream" module exposes its base classes.
func (h *Host) streamModuleExports() require.Exports {
	vm := h.VM

	readableCtor := func(call goja.ConstructorCall) *goja.Object {
		hwm := 0
		if opts, ok := call.Argument(0).Export().(map[string]any); ok {
			hwm = intFromAny(opts["highWaterMark"])
		}
		return h.wrapReadable(streams.NewReadable(hwm))
	}

	writableCtor := func(call goja.ConstructorCall) *goja.Object {
		var sink goja.Callable
		if obj, ok := call.Argument(0).(*goja.Object); ok {
			sink, _ = goja.AssertFunction(obj.Get("write"))
		}
		w := streams.NewWritable(func(chunk []byte) error {
			if sink == nil {
				return nil
			}
			_, err := sink(goja.Undefined(), h.wrapBuffer(jsbuffer.FromBytes(chunk)))
			return err
		}, 0)
		return h.wrapWritableStandalone(w)
	}

	return require.Exports{
		"Readable": vm.ToValue(readableCtor),
		"Writable": vm.ToValue(writableCtor),
	}
}

func (h *Host) wrapReadable(r *streams.Readable) *goja.Object {
	vm := h.VM
	r.Emitter.Scheduler = h.scheduler
	obj := vm.NewObject()
	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(1))
		if ok {
			h.onEmitter(r.Emitter, call.Argument(0).String(), fn)
		}
		return obj
	})
	_ = obj.Set("push", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(r.Push(bytesFromJSValue(call.Argument(0))))
	})
	_ = obj.Set("read", func(call goja.FunctionCall) goja.Value {
		n := -1
		if len(call.Arguments) > 0 {
			n = int(call.Argument(0).ToInteger())
		}
		return h.wrapBuffer(jsbuffer.FromBytes(r.Read(n)))
	})
	_ = obj.Set("destroy", func(call goja.FunctionCall) goja.Value {
		r.Destroy(nil)
		return goja.Undefined()
	})
	return obj
}

func (h *Host) wrapWritableStandalone(w *streams.Writable) *goja.Object {
	vm := h.VM
	w.Emitter.Scheduler = h.scheduler
	obj := vm.NewObject()
	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(1))
		if ok {
			h.onEmitter(w.Emitter, call.Argument(0).String(), fn)
		}
		return obj
	})
	_ = obj.Set("write", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(w.Write(bytesFromJSValue(call.Argument(0)), nil))
	})
	_ = obj.Set("end", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			w.Write(bytesFromJSValue(call.Argument(0)), nil)
		}
		w.End(nil)
		return goja.Undefined()
	})
	return obj
}
