package doe

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a malformed design request
	ErrInvalidInput = errors.New("invalid design input")

	// ErrInvalidBounds reports a continuous variable whose bounds are not a
	// finite min <= max range. It matches ErrInvalidInput under errors.Is.
	ErrInvalidBounds = fmt.Errorf("%w: invalid bounds", ErrInvalidInput)
)
