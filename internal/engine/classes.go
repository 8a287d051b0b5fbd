package engine

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dop251/goja"

	"github.com/r3e-network/llrt-go/internal/events"
	"github.com/r3e-network/llrt-go/internal/fetch"
	"github.com/r3e-network/llrt-go/internal/jsbuffer"
)

// registerBuiltinClasses installs the host object classes every LLRT
// script can rely on without a require() call: Buffer, URL,
// URLSearchParams, Headers, EventTarget, AbortController/AbortSignal,
// and the fetch() global, per spec.md §4.1's fixed first registration
// step and §4.8/§4.11's class surfaces. Grounded on
// system/tee/script_engine.go's vm.NewObject()/vm.Set() idiom for
// building host objects, generalised from a single console object to
// this full class set.
func (h *Host) registerBuiltinClasses() {
	h.registerBufferClass()
	h.registerURLClasses()
	h.registerHeadersClass()
	h.registerEventTargetClass()
	h.registerAbortClasses()
	h.registerFetch()
	h.registerJSON()
}

// --- Buffer ---------------------------------------------------------

func (h *Host) registerBufferClass() {
	vm := h.VM

	ctor := func(call goja.ConstructorCall) *goja.Object {
		n := 0
		if len(call.Arguments) > 0 {
			n = int(call.Arguments[0].ToInteger())
		}
		return h.wrapBuffer(jsbuffer.Alloc(n))
	}
	bufferCtor := vm.ToValue(ctor).(*goja.Object)

	_ = bufferCtor.Set("alloc", func(call goja.FunctionCall) goja.Value {
		return h.wrapBuffer(jsbuffer.Alloc(int(call.Argument(0).ToInteger())))
	})
	_ = bufferCtor.Set("allocUnsafe", func(call goja.FunctionCall) goja.Value {
		return h.wrapBuffer(jsbuffer.AllocUnsafe(int(call.Argument(0).ToInteger())))
	})
	_ = bufferCtor.Set("allocUnsafeSlow", func(call goja.FunctionCall) goja.Value {
		return h.wrapBuffer(jsbuffer.AllocUnsafeSlow(int(call.Argument(0).ToInteger())))
	})
	_ = bufferCtor.Set("from", func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		if s, ok := arg.Export().(string); ok {
			enc := jsbuffer.UTF8
			if len(call.Arguments) > 1 {
				if e, err := jsbuffer.ParseEncoding(call.Argument(1).String()); err == nil {
					enc = e
				}
			}
			buf, err := jsbuffer.FromString(s, enc)
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}
			return h.wrapBuffer(buf)
		}
		if existing := bufferFromObject(arg); existing != nil {
			return h.wrapBuffer(jsbuffer.FromBytes(append([]byte(nil), existing.Bytes()...)))
		}
		b := exportedByteSlice(arg)
		return h.wrapBuffer(jsbuffer.FromBytes(b))
	})
	_ = bufferCtor.Set("concat", func(call goja.FunctionCall) goja.Value {
		list, _ := call.Argument(0).Export().([]any)
		bufs := make([]*jsbuffer.Buffer, 0, len(list))
		for _, item := range list {
			if ov, ok := item.(goja.Value); ok {
				if b := bufferFromObject(ov); b != nil {
					bufs = append(bufs, b)
				}
			}
		}
		total := -1
		if len(call.Arguments) > 1 {
			total = int(call.Argument(1).ToInteger())
		}
		return h.wrapBuffer(jsbuffer.Concat(bufs, total))
	})
	_ = bufferCtor.Set("isBuffer", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(bufferFromObject(call.Argument(0)) != nil)
	})
	_ = bufferCtor.Set("isEncoding", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(jsbuffer.IsEncoding(call.Argument(0).String()))
	})

	_ = vm.Set("Buffer", bufferCtor)
}

// wrapBuffer builds the per-instance Buffer object: a plain goja object
// carrying the underlying *jsbuffer.Buffer behind a hidden field plus
// the instance method surface.
func (h *Host) wrapBuffer(buf *jsbuffer.Buffer) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()
	_ = obj.Set("__buf", buf)
	_ = obj.DefineDataProperty("length", vm.ToValue(buf.Len()), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)

	_ = obj.Set("toString", func(call goja.FunctionCall) goja.Value {
		enc := jsbuffer.UTF8
		if len(call.Arguments) > 0 {
			if e, err := jsbuffer.ParseEncoding(call.Argument(0).String()); err == nil {
				enc = e
			}
		}
		s, err := buf.ToString(enc)
		if err != nil {
			panic(vm.ToValue(err.Error()))
		}
		return vm.ToValue(s)
	})
	_ = obj.Set("write", func(call goja.FunctionCall) goja.Value {
		s := call.Argument(0).String()
		offset := 0
		if len(call.Arguments) > 1 {
			offset = int(call.Argument(1).ToInteger())
		}
		enc := jsbuffer.UTF8
		if len(call.Arguments) > 2 {
			if e, err := jsbuffer.ParseEncoding(call.Argument(2).String()); err == nil {
				enc = e
			}
		}
		n, err := buf.Write(s, offset, enc)
		if err != nil {
			panic(vm.ToValue(err.Error()))
		}
		return vm.ToValue(n)
	})
	_ = obj.Set("subarray", func(call goja.FunctionCall) goja.Value {
		start, end := 0, buf.Len()
		if len(call.Arguments) > 0 {
			start = int(call.Argument(0).ToInteger())
		}
		if len(call.Arguments) > 1 {
			end = int(call.Argument(1).ToInteger())
		}
		return h.wrapBuffer(buf.Subarray(start, end))
	})
	_ = obj.Set("slice", obj.Get("subarray"))
	_ = obj.Set("copy", func(call goja.FunctionCall) goja.Value {
		target := bufferFromObject(call.Argument(0))
		if target == nil {
			return vm.ToValue(0)
		}
		targetStart, srcStart, srcEnd := 0, 0, buf.Len()
		if len(call.Arguments) > 1 {
			targetStart = int(call.Argument(1).ToInteger())
		}
		if len(call.Arguments) > 2 {
			srcStart = int(call.Argument(2).ToInteger())
		}
		if len(call.Arguments) > 3 {
			srcEnd = int(call.Argument(3).ToInteger())
		}
		return vm.ToValue(buf.Copy(target, targetStart, srcStart, srcEnd))
	})

	registerIntMethods(vm, obj, buf)
	return obj
}

// registerIntMethods wires the fixed-width read/write matrix jsbuffer.Buffer
// already exposes as Go methods onto the JS object, one closure per pair.
func registerIntMethods(vm *goja.Runtime, obj *goja.Object, buf *jsbuffer.Buffer) {
	type pair struct {
		name string
		read func(off int) (goja.Value, error)
		write func(val goja.Value, off int) (int, error)
	}
	specs := []pair{
		{"UInt8", func(o int) (goja.Value, error) { v, e := buf.ReadUInt8(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt8(byte(v.ToInteger()), o) }},
		{"Int8", func(o int) (goja.Value, error) { v, e := buf.ReadInt8(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt8(int8(v.ToInteger()), o) }},
		{"UInt16LE", func(o int) (goja.Value, error) { v, e := buf.ReadUInt16LE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt16LE(uint16(v.ToInteger()), o) }},
		{"UInt16BE", func(o int) (goja.Value, error) { v, e := buf.ReadUInt16BE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt16BE(uint16(v.ToInteger()), o) }},
		{"Int16LE", func(o int) (goja.Value, error) { v, e := buf.ReadInt16LE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt16LE(int16(v.ToInteger()), o) }},
		{"Int16BE", func(o int) (goja.Value, error) { v, e := buf.ReadInt16BE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt16BE(int16(v.ToInteger()), o) }},
		{"UInt32LE", func(o int) (goja.Value, error) { v, e := buf.ReadUInt32LE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt32LE(uint32(v.ToInteger()), o) }},
		{"UInt32BE", func(o int) (goja.Value, error) { v, e := buf.ReadUInt32BE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt32BE(uint32(v.ToInteger()), o) }},
		{"Int32LE", func(o int) (goja.Value, error) { v, e := buf.ReadInt32LE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt32LE(int32(v.ToInteger()), o) }},
		{"Int32BE", func(o int) (goja.Value, error) { v, e := buf.ReadInt32BE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt32BE(int32(v.ToInteger()), o) }},
		{"FloatLE", func(o int) (goja.Value, error) { v, e := buf.ReadFloatLE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteFloatLE(float32(v.ToFloat()), o) }},
		{"FloatBE", func(o int) (goja.Value, error) { v, e := buf.ReadFloatBE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteFloatBE(float32(v.ToFloat()), o) }},
		{"DoubleLE", func(o int) (goja.Value, error) { v, e := buf.ReadDoubleLE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteDoubleLE(v.ToFloat(), o) }},
		{"DoubleBE", func(o int) (goja.Value, error) { v, e := buf.ReadDoubleBE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteDoubleBE(v.ToFloat(), o) }},
		{"UInt64LE", func(o int) (goja.Value, error) { v, e := buf.ReadUInt64LE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt64LE(uint64(v.ToInteger()), o) }},
		{"UInt64BE", func(o int) (goja.Value, error) { v, e := buf.ReadUInt64BE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteUInt64BE(uint64(v.ToInteger()), o) }},
		{"Int64LE", func(o int) (goja.Value, error) { v, e := buf.ReadInt64LE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt64LE(v.ToInteger(), o) }},
		{"Int64BE", func(o int) (goja.Value, error) { v, e := buf.ReadInt64BE(o); return vm.ToValue(v), e },
			func(v goja.Value, o int) (int, error) { return buf.WriteInt64BE(v.ToInteger(), o) }},
	}
	for _, s := range specs {
		s := s
		_ = obj.Set("read"+s.name, func(call goja.FunctionCall) goja.Value {
			off := 0
			if len(call.Arguments) > 0 {
				off = int(call.Argument(0).ToInteger())
			}
			v, err := s.read(off)
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}
			return v
		})
		_ = obj.Set("write"+s.name, func(call goja.FunctionCall) goja.Value {
			off := 0
			if len(call.Arguments) > 1 {
				off = int(call.Argument(1).ToInteger())
			}
			n, err := s.write(call.Argument(0), off)
			if err != nil {
				panic(vm.ToValue(err.Error()))
			}
			return vm.ToValue(n)
		})
	}
}

func bufferFromObject(v goja.Value) *jsbuffer.Buffer {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	raw := obj.Get("__buf")
	if raw == nil {
		return nil
	}
	b, _ := raw.Export().(*jsbuffer.Buffer)
	return b
}

func exportedByteSlice(v goja.Value) []byte {
	switch x := v.Export().(type) {
	case []byte:
		return x
	case []any:
		out := make([]byte, len(x))
		for i, e := range x {
			switch n := e.(type) {
			case int64:
				out[i] = byte(n)
			case float64:
				out[i] = byte(n)
			}
		}
		return out
	default:
		return nil
	}
}

// --- URL / URLSearchParams ------------------------------------------

func (h *Host) registerURLClasses() {
	vm := h.VM

	urlCtor := func(call goja.ConstructorCall) *goja.Object {
		raw := call.Argument(0).String()
		var base *url.URL
		if len(call.Arguments) > 1 && !goja.IsUndefined(call.Arguments[1]) {
			if b, err := url.Parse(call.Argument(1).String()); err == nil {
				base = b
			}
		}
		u, err := url.Parse(raw)
		if err != nil {
			panic(vm.ToValue(err.Error()))
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		return h.wrapURL(u)
	}
	_ = vm.Set("URL", vm.ToValue(urlCtor))

	paramsCtor := func(call goja.ConstructorCall) *goja.Object {
		values := url.Values{}
		if len(call.Arguments) > 0 {
			switch init := call.Argument(0).Export().(type) {
			case string:
				values, _ = url.ParseQuery(strings.TrimPrefix(init, "?"))
			case map[string]any:
				for k, v := range init {
					values.Set(k, goja.Undefined().String())
					values.Set(k, toJSString(v))
				}
			}
		}
		return h.wrapSearchParams(values)
	}
	_ = vm.Set("URLSearchParams", vm.ToValue(paramsCtor))
}

func (h *Host) wrapURL(u *url.URL) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()
	_ = obj.Set("href", u.String())
	_ = obj.Set("protocol", u.Scheme+":")
	_ = obj.Set("host", u.Host)
	_ = obj.Set("hostname", u.Hostname())
	_ = obj.Set("port", u.Port())
	_ = obj.Set("pathname", u.Path)
	_ = obj.Set("search", searchString(u))
	_ = obj.Set("hash", fragmentString(u))
	_ = obj.Set("searchParams", h.wrapSearchParams(u.Query()))
	_ = obj.Set("toString", func(goja.FunctionCall) goja.Value { return vm.ToValue(u.String()) })
	return obj
}

func searchString(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}

func fragmentString(u *url.URL) string {
	if u.Fragment == "" {
		return ""
	}
	return "#" + u.Fragment
}

func (h *Host) wrapSearchParams(values url.Values) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()
	_ = obj.Set("get", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(values.Get(call.Argument(0).String()))
	})
	_ = obj.Set("getAll", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(values[call.Argument(0).String()])
	})
	_ = obj.Set("has", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(values.Has(call.Argument(0).String()))
	})
	_ = obj.Set("set", func(call goja.FunctionCall) goja.Value {
		values.Set(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("append", func(call goja.FunctionCall) goja.Value {
		values.Add(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("delete", func(call goja.FunctionCall) goja.Value {
		values.Del(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = obj.Set("toString", func(goja.FunctionCall) goja.Value { return vm.ToValue(values.Encode()) })
	return obj
}

func toJSString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// --- Headers ----------------------------------------------------------

func (h *Host) registerHeadersClass() {
	vm := h.VM
	ctor := func(call goja.ConstructorCall) *goja.Object {
		hdr := http.Header{}
		if len(call.Arguments) > 0 {
			switch init := call.Argument(0).Export().(type) {
			case map[string]any:
				for k, v := range init {
					hdr.Set(k, toJSString(v))
				}
			case []any:
				for _, pair := range init {
					if kv, ok := pair.([]any); ok && len(kv) == 2 {
						hdr.Add(toJSString(kv[0]), toJSString(kv[1]))
					}
				}
			}
		}
		return h.wrapHeaders(hdr)
	}
	_ = vm.Set("Headers", vm.ToValue(ctor))
}

func (h *Host) wrapHeaders(hdr http.Header) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()
	_ = obj.Set("get", func(call goja.FunctionCall) goja.Value {
		v := hdr.Get(call.Argument(0).String())
		if v == "" {
			return goja.Null()
		}
		return vm.ToValue(v)
	})
	_ = obj.Set("has", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(hdr.Get(call.Argument(0).String()) != "")
	})
	_ = obj.Set("set", func(call goja.FunctionCall) goja.Value {
		hdr.Set(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("append", func(call goja.FunctionCall) goja.Value {
		hdr.Add(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = obj.Set("delete", func(call goja.FunctionCall) goja.Value {
		hdr.Del(call.Argument(0).String())
		return goja.Undefined()
	})
	_ = obj.Set("forEach", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return goja.Undefined()
		}
		for k := range hdr {
			_, _ = fn(goja.Undefined(), vm.ToValue(hdr.Get(k)), vm.ToValue(strings.ToLower(k)))
		}
		return goja.Undefined()
	})
	return obj
}

// --- EventTarget -------------------------------------------------------

func (h *Host) registerEventTargetClass() {
	vm := h.VM
	ctor := func(call goja.ConstructorCall) *goja.Object {
		return h.wrapEventTarget(events.New())
	}
	_ = vm.Set("EventTarget", vm.ToValue(ctor))
}

func (h *Host) wrapEventTarget(emitter *events.Emitter) *goja.Object {
	vm := h.VM
	emitter.Scheduler = h.scheduler
	obj := vm.NewObject()
	_ = obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		event := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return goja.Undefined()
		}
		emitter.On(event, func(args ...any) {
			jsArgs := make([]goja.Value, len(args))
			for i, a := range args {
				jsArgs[i] = vm.ToValue(a)
			}
			_, _ = fn(goja.Undefined(), jsArgs...)
		})
		return goja.Undefined()
	})
	_ = obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		event := call.Argument(0).String()
		emitter.Emit(event, false)
		return vm.ToValue(true)
	})
	return obj
}

// --- AbortController / AbortSignal --------------------------------------

func (h *Host) registerAbortClasses() {
	vm := h.VM
	ctor := func(call goja.ConstructorCall) *goja.Object {
		ctrl := events.NewController()
		obj := vm.NewObject()
		_ = obj.Set("signal", h.wrapSignal(ctrl.Signal))
		_ = obj.Set("abort", func(call goja.FunctionCall) goja.Value {
			var reason any
			if len(call.Arguments) > 0 {
				reason = call.Argument(0).Export()
			}
			ctrl.Abort(reason)
			return goja.Undefined()
		})
		return obj
	}
	_ = vm.Set("AbortController", vm.ToValue(ctor))
}

func (h *Host) wrapSignal(sig *events.Signal) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()
	_ = obj.Set("aborted", sig.Aborted())
	_ = obj.Set("reason", vm.ToValue(sig.Reason()))
	_ = obj.Set("onabort", goja.Undefined())
	_ = obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if call.Argument(0).String() != "abort" {
			return goja.Undefined()
		}
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			return goja.Undefined()
		}
		sig.OnAbort(func(reason any) {
			h.scheduler.Defer(func() { _, _ = fn(goja.Undefined(), vm.ToValue(reason)) })
		})
		return goja.Undefined()
	})
	return obj
}

// --- fetch() -------------------------------------------------------------

func (h *Host) registerFetch() {
	vm := h.VM
	client := fetch.New(fetch.Config{Guard: h.opts.netGuard, Version: h.opts.version})

	_ = vm.Set("fetch", func(call goja.FunctionCall) goja.Value {
		promise, resolve, reject := vm.NewPromise()

		target := call.Argument(0).String()
		req := fetch.Request{Method: http.MethodGet, URL: target, Redirect: fetch.RedirectFollow}
		if len(call.Arguments) > 1 {
			if opts, ok := call.Argument(1).Export().(map[string]any); ok {
				if m, ok := opts["method"].(string); ok {
					req.Method = m
				}
				if b, ok := opts["body"].(string); ok {
					req.Body = []byte(b)
				}
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			reject(vm.ToValue(err.Error()))
			return vm.ToValue(promise)
		}
		resolve(h.wrapResponse(resp))
		return vm.ToValue(promise)
	})
}

func (h *Host) wrapResponse(resp *fetch.Response) *goja.Object {
	vm := h.VM
	obj := vm.NewObject()
	_ = obj.Set("status", resp.Status)
	_ = obj.Set("statusText", resp.StatusText)
	_ = obj.Set("ok", resp.Status >= 200 && resp.Status < 300)
	_ = obj.Set("url", resp.URL)
	_ = obj.Set("redirected", resp.Redirected)
	_ = obj.Set("headers", h.wrapHeaders(resp.Headers))
	_ = obj.Set("text", func(goja.FunctionCall) goja.Value {
		p, resolve, reject := vm.NewPromise()
		s, err := resp.Text()
		if err != nil {
			reject(vm.ToValue(err.Error()))
		} else {
			resolve(vm.ToValue(s))
		}
		return vm.ToValue(p)
	})
	_ = obj.Set("json", func(goja.FunctionCall) goja.Value {
		p, resolve, reject := vm.NewPromise()
		v, err := resp.JSON()
		if err != nil {
			reject(vm.ToValue(err.Error()))
		} else {
			resolve(vm.ToValue(v))
		}
		return vm.ToValue(p)
	})
	_ = obj.Set("arrayBuffer", func(goja.FunctionCall) goja.Value {
		p, resolve, reject := vm.NewPromise()
		b, err := resp.ArrayBuffer()
		if err != nil {
			reject(vm.ToValue(err.Error()))
		} else {
			resolve(h.wrapBuffer(jsbuffer.FromBytes(b)))
		}
		return vm.ToValue(p)
	})
	return obj
}
