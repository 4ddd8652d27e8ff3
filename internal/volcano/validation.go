package volcano

import (
	"math"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

// MaxVEI is the top of the Volcanic Explosivity Index scale
const MaxVEI = 8

// ValidateVolcanoName checks that a volcano name was supplied.
func ValidateVolcanoName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apierrors.NewValidationError("volcano_name", "", "volcano name is required")
	}
	return nil
}

// ValidateLimit rejects negative result limits. Zero selects the default.
func ValidateLimit(field string, n int) error {
	if n < 0 {
		return apierrors.NewValidationError(field, strconv.Itoa(n), "cannot be negative")
	}
	return nil
}

// ValidateVEI checks an optional VEI against the 0-8 scale.
func ValidateVEI(v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v < 0 || *v > MaxVEI {
		return apierrors.NewValidationError("min_vei", strconv.FormatFloat(*v, 'f', -1, 64), "must be between 0 and 8")
	}
	return nil
}
