package http

import (
	"net/http"

	"FinForge/pkg/util"
)

// ParseSeedParam parses an optional seed query value. Empty means "no seed".
func ParseSeedParam(raw string) (*uint64, error) {
	if raw == "" {
		return nil, nil
	}
	v, ok := util.ParseUint(raw)
	if !ok {
		return nil, NewAppError("ERR_NUMERIC", "seed", "seed must be a non-negative integer", http.StatusBadRequest)
	}
	return &v, nil
}

// SplitList splits a comma separated query value.
func SplitList(raw string) []string { return util.SplitCSV(raw) }
