package helpers

import (
	"fmt"
	"net/http"
	"strconv"
)

// ParseIdentifier reads the {identifier} path value as the public numeric
// event code. Identifiers are drawn from [0, 100000), so anything outside
// that range is rejected up front.
func ParseIdentifier(r *http.Request) (int, error) {
	raw := r.PathValue("identifier")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier %q", raw)
	}
	if id < 0 || id >= 100000 {
		return 0, fmt.Errorf("identifier %d out of range", id)
	}
	return id, nil
}
