package page

import (
	"errors"
	"fmt"
)

// Boundary names a structural element a page must contain.
type Boundary string

const (
	BoundaryName    Boundary = "name"
	BoundaryHeading Boundary = "heading"
	BoundaryFooter  Boundary = "footer"
	BoundaryTitle   Boundary = "title"
	BoundaryTable   Boundary = "table"
	BoundaryLinks   Boundary = "links"
)

// RegionNotFoundError reports a missing structural boundary. It is fatal for the
// document it was raised on.
type RegionNotFoundError struct {
	Boundary Boundary
	Detail   string
}

func (e *RegionNotFoundError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("region not found: missing %s", e.Boundary)
	}
	return fmt.Sprintf("region not found: missing %s (%s)", e.Boundary, e.Detail)
}

// ErrNoFragments is returned when a region contains no recognizable records,
// which means the page layout is not one this tool understands.
var ErrNoFragments = errors.New("no fragments found")

// IsStructural reports whether err means the document itself could not be parsed.
func IsStructural(err error) bool {
	var rnf *RegionNotFoundError
	return errors.As(err, &rnf) || errors.Is(err, ErrNoFragments)
}
