package console

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unsafe"
)

const (
	maxInspectDepth = 4
	maxOwnKeys      = 100
)

// InspectOptions tunes Inspect's output; inspectDefaults/inspectAllOwnProps
// give the two modes spec.md §4.10 distinguishes for %o vs %O.
type InspectOptions struct {
	AllOwnProps bool
	Colors      bool
}

func inspectDefaults() InspectOptions   { return InspectOptions{} }
func inspectAllOwnProps() InspectOptions { return InspectOptions{AllOwnProps: true} }

// CustomInspecter lets a Go-side stand-in for a JS class override its
// rendering, mirroring the well-known symbol `llrt.inspect.custom`
// (spec.md §4.10). Any Go value handed to Inspect that implements this
// is rendered via InspectCustom instead of the generic reflection path.
type CustomInspecter interface {
	InspectCustom(depth int) string
}

// ErrorValue is the shape Inspect expects for JS Error-like values:
// name/message plus an optional stack trace, rendered per spec.md
// §4.10 ("errors with name/message and optional stack").
type ErrorValue struct {
	Name    string
	Message string
	Stack   string
}

// Inspect renders v the way the console inspector does: primitives
// directly, strings quoted below the root, ErrorValue as name/message
// plus stack, and objects/arrays recursively up to maxInspectDepth,
// truncating at maxOwnKeys and marking cycles. Dates and regular
// expressions have no case of their own: they go through the generic
// path like any other value and are not shown in literal form.
func Inspect(v any, opts InspectOptions) string {
	return inspect(v, opts, 0, map[uintptr]bool{})
}

func inspect(v any, opts InspectOptions, depth int, seen map[uintptr]bool) string {
	switch t := v.(type) {
	case nil:
		return "undefined"
	case CustomInspecter:
		return t.InspectCustom(depth)
	case ErrorValue:
		return formatError(t)
	case bool:
		return colorize(strconv.FormatBool(t), colorYellow, opts)
	case float64:
		return colorize(formatNumber(t), colorYellow, opts)
	case int:
		return colorize(strconv.Itoa(t), colorYellow, opts)
	case string:
		if depth == 0 {
			return t
		}
		return colorize(quoteString(t), colorGreen, opts)
	case []byte:
		return fmt.Sprintf("Uint8Array(%d) [...]", len(t))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return inspectMap(rv, opts, depth, seen)
	case reflect.Slice, reflect.Array:
		return inspectSlice(rv, opts, depth, seen)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return inspect(rv.Elem().Interface(), opts, depth, seen)
	case reflect.Struct:
		return inspectStruct(rv, opts, depth, seen)
	case reflect.Func:
		return "[Function (anonymous)]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatError(e ErrorValue) string {
	if e.Stack != "" {
		return e.Stack
	}
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func inspectMap(rv reflect.Value, opts InspectOptions, depth int, seen map[uintptr]bool) string {
	if depth > maxInspectDepth {
		return "[Object]"
	}
	ptr := rv.Pointer()
	if seen[ptr] {
		return "[Circular]"
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	keys := rv.MapKeys()
	strKeys := make([]string, len(keys))
	for i, k := range keys {
		strKeys[i] = fmt.Sprintf("%v", k.Interface())
	}
	sort.Strings(strKeys)

	truncated := false
	if !opts.AllOwnProps && len(strKeys) > maxOwnKeys {
		truncated = true
		strKeys = strKeys[:maxOwnKeys]
	}

	parts := make([]string, 0, len(strKeys))
	for _, k := range strKeys {
		val := rv.MapIndex(reflect.ValueOf(k))
		parts = append(parts, fmt.Sprintf("%s: %s", k, inspect(val.Interface(), opts, depth+1, seen)))
	}
	if truncated {
		parts = append(parts, fmt.Sprintf("... %d more items", rv.Len()-maxOwnKeys))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func inspectSlice(rv reflect.Value, opts InspectOptions, depth int, seen map[uintptr]bool) string {
	if depth > maxInspectDepth {
		return "[Array]"
	}
	var ptr uintptr
	trackable := rv.Kind() == reflect.Slice
	if trackable {
		ptr = rv.Pointer()
		if seen[ptr] {
			return "[Circular]"
		}
		seen[ptr] = true
		defer delete(seen, ptr)
	}

	n := rv.Len()
	limit := n
	truncated := false
	if !opts.AllOwnProps && limit > maxOwnKeys {
		limit = maxOwnKeys
		truncated = true
	}
	parts := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		parts = append(parts, inspect(rv.Index(i).Interface(), opts, depth+1, seen))
	}
	if truncated {
		parts = append(parts, fmt.Sprintf("... %d more items", n-maxOwnKeys))
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func inspectStruct(rv reflect.Value, opts InspectOptions, depth int, seen map[uintptr]bool) string {
	if depth > maxInspectDepth {
		return "[Object]"
	}
	t := rv.Type()
	// An addressable copy is needed to read unexported fields under
	// AllOwnProps -- rv itself may be a bare interface-derived value with
	// no addressable backing store.
	addressable := reflect.New(t).Elem()
	addressable.Set(rv)

	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		f := t.Field(i)
		fv := rv.Field(i)
		if !f.IsExported() {
			if !opts.AllOwnProps {
				continue
			}
			// %O asks for every own property, enumerable or not; an
			// unexported struct field is this package's closest analogue
			// to a JS non-enumerable own property, so surface it here
			// rather than skipping it outright.
			fv = reflect.NewAt(f.Type, unsafe.Pointer(addressable.Field(i).UnsafeAddr())).Elem()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, inspect(fv.Interface(), opts, depth+1, seen)))
	}
	name := t.Name()
	if name == "" {
		name = "Object"
	}
	return name + " { " + strings.Join(parts, ", ") + " }"
}
