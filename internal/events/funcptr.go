package events

import "reflect"

func funcPointer(f Listener) uintptr {
	return reflect.ValueOf(f).Pointer()
}
