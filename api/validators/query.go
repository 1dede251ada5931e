package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
)

// QueryInt parses an optional integer query parameter, returning fallback
// when absent.
func QueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" must be an integer")
	}
	return value, nil
}
