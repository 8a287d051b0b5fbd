package console

import "github.com/r3e-network/llrt-go/internal/jsonfast"

func stringifyJSON(v any) (string, error) {
	return jsonfast.Stringify(v, jsonfast.Options{})
}
