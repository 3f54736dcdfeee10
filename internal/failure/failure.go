package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOpen marks a source that could not be opened or decoded as video.
	ErrOpen = errors.New("open error")
	// ErrGeometry marks a crop box that falls outside the frame.
	ErrGeometry = errors.New("geometry error")
	// ErrComposition marks frames that do not share a height at concatenation time.
	ErrComposition = errors.New("composition error")
	// ErrWrite marks a destination that cannot be created or written.
	ErrWrite = errors.New("write error")
	// ErrAmbiguousPair marks a pairing key that cannot be disambiguated.
	ErrAmbiguousPair = errors.New("ambiguous pair")
	// ErrExternalTool marks a failing or missing external binary.
	ErrExternalTool = errors.New("external tool error")
	// ErrNotFound marks a missing input file or directory.
	ErrNotFound = errors.New("not found")
	// ErrLocked marks a dataset directory held by another benchcat run.
	ErrLocked = errors.New("locked")
	// ErrLayout marks a dataset directory whose contents do not have the expected shape.
	ErrLayout = errors.New("unexpected layout")
)

// Report codes recorded for failed items.
const (
	CodeOpen          = "open_error"
	CodeGeometry      = "geometry_error"
	CodeComposition   = "composition_error"
	CodeWrite         = "write_error"
	CodeAmbiguousPair = "ambiguous_pair"
	CodeExternalTool  = "external_tool"
	CodeNotFound      = "not_found"
	CodeLocked        = "locked"
	CodeLayout        = "layout_error"
	CodeIO            = "io_error"
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Code maps an error to the report code of its marker. Untagged errors are
// reported as io_error; nil yields an empty string.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOpen):
		return CodeOpen
	case errors.Is(err, ErrGeometry):
		return CodeGeometry
	case errors.Is(err, ErrComposition):
		return CodeComposition
	case errors.Is(err, ErrWrite):
		return CodeWrite
	case errors.Is(err, ErrAmbiguousPair):
		return CodeAmbiguousPair
	case errors.Is(err, ErrExternalTool):
		return CodeExternalTool
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrLocked):
		return CodeLocked
	case errors.Is(err, ErrLayout):
		return CodeLayout
	default:
		return CodeIO
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "benchcat failure"
	}
	return strings.Join(parts, ": ")
}
