// internal/scan/service.go
package scan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind selects how much work a scan does and how its results are folded
// into the inventory.
type Kind string

const (
	// KindQuick is a single fast pass that only adds previously unseen items.
	KindQuick Kind = "quick"
	// KindDeep is a two-pass high-recall analysis whose counts replace the
	// stored quantities.
	KindDeep Kind = "deep"
	// KindRemove asks the model which stored items are visible and
	// subtracts them.
	KindRemove Kind = "remove"
)

var (
	// ErrRateLimited is returned when scan triggers arrive faster than the
	// limiter allows.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrUnknownKind is returned for a scan kind outside quick/deep/remove.
	ErrUnknownKind = errors.New("unknown scan kind")
	// ErrNoImage is returned when the bin has no stored image to analyze.
	ErrNoImage = errors.New("bin has no image to analyze")
)

// Service triggers analysis scans. Start returns as soon as the scan is
// accepted; progress is observable through the bin's analysis status.
type Service interface {
	Start(ctx context.Context, binID string, kind Kind) (uuid.UUID, error)
}

// VisionInference is the slice of the vision client the orchestrator needs.
type VisionInference interface {
	Infer(ctx context.Context, image []byte, prompt, system string, timeout time.Duration) ([]byte, error)
}

// ImageSource resolves a stored image filename to its bytes and pixel
// dimensions.
type ImageSource interface {
	Image(ctx context.Context, binID, filename string) ([]byte, int, int, error)
}
