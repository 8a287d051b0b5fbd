package require

import "github.com/r3e-network/llrt-go/internal/jsonfast"

func parseJSONModule(payload []byte) (any, error) {
	return jsonfast.Parse(payload)
}
