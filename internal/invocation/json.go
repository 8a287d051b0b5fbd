package invocation

import "github.com/r3e-network/llrt-go/internal/jsonfast"

func parseJSONLoose(s string) (any, error) {
	return jsonfast.Parse([]byte(s))
}
