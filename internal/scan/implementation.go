// internal/scan/implementation.go
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"smartbin/internal/bins"
	"smartbin/internal/inventory"
	"smartbin/internal/vision"
)

// Inference time limits. Deep analysis gets the long limit per pass.
const (
	QuickTimeout    = 180 * time.Second
	RemoveTimeout   = 180 * time.Second
	DeepPassTimeout = 600 * time.Second
)

// Status messages shown alongside the state machine transitions.
const (
	msgQuickRunning = "Quick scan running (approximate)."
	msgQuickDone    = "Analysis complete."
	msgQuickNoNew   = "Analysis complete. No new items."
	msgQuickFailed  = "Quick scan failed. Try re-analyze."
	msgQuickEmpty   = "Quick scan found no items. Try re-analyze."
	msgDeepRunning  = "Deep analysis running (10 minutes max)."
	msgDeepDone     = "Deep analysis complete."
	msgDeepFailed   = "Deep analysis failed. Try re-analyze."
	msgRemoveDone   = "Removal complete."
	msgRemoveFailed = "Removal scan failed. Try re-analyze."
)

// service implements the Service interface.
type service struct {
	repo    *bins.Repository
	vision  VisionInference
	images  ImageSource
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// NewService creates a new scan orchestrator.
func NewService(repo *bins.Repository, vision VisionInference, images ImageSource) Service {
	return &service{
		repo:    repo,
		vision:  vision,
		images:  images,
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 3), // 3 burst, then one trigger per 10s
		tracer:  otel.Tracer("smartbin/scan"),
	}
}

// Start accepts a scan, flips the bin's status to the running state and
// launches the analysis in its own goroutine. The returned id identifies
// the accepted scan; results land on the bin itself.
func (s *service) Start(ctx context.Context, binID string, kind Kind) (uuid.UUID, error) {
	switch kind {
	case KindQuick, KindDeep, KindRemove:
	default:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !s.limiter.Allow() {
		return uuid.Nil, ErrRateLimited
	}

	bin, err := s.repo.Get(binID)
	if err != nil {
		return uuid.Nil, err
	}
	filename := bin.LatestImage()
	if filename == "" {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNoImage, binID)
	}

	runningState, runningMsg := bins.StateQuickRunning, msgQuickRunning
	if kind == KindDeep {
		runningState, runningMsg = bins.StateDeepRunning, msgDeepRunning
	}
	if err := s.repo.Update(ctx, binID, func(b *bins.Bin) error {
		b.SetStatus(runningState, runningMsg)
		return nil
	}); err != nil {
		return uuid.Nil, fmt.Errorf("mark scan running: %w", err)
	}

	scanID := uuid.New()
	// The trigger request ends with the 202; the scan outlives it.
	go s.run(context.Background(), scanID, binID, filename, kind)
	return scanID, nil
}

func (s *service) run(ctx context.Context, scanID uuid.UUID, binID, filename string, kind Kind) {
	ctx, span := s.tracer.Start(ctx, "scan.run",
		trace.WithAttributes(
			attribute.String("scan.id", scanID.String()),
			attribute.String("scan.kind", string(kind)),
			attribute.String("bin.id", binID),
		),
	)
	defer span.End()

	var err error
	switch kind {
	case KindQuick:
		err = s.runQuick(ctx, binID, filename)
	case KindDeep:
		err = s.runDeep(ctx, binID, filename)
	case KindRemove:
		err = s.runRemove(ctx, binID, filename)
	}
	if err != nil {
		log.Printf("scan %s (%s) on bin %s failed: %v", scanID, kind, binID, err)
	}
}

func (s *service) runQuick(ctx context.Context, binID, filename string) error {
	img, width, height, err := s.images.Image(ctx, binID, filename)
	if err != nil {
		s.fail(ctx, binID, msgQuickFailed)
		return fmt.Errorf("load image: %w", err)
	}

	known := map[string]struct{}{}
	var knownNames []string
	if bin, err := s.repo.Get(binID); err == nil {
		known = bin.Inventory.NameSet()
		knownNames = bin.Inventory.Names()
	}

	raw, err := s.vision.Infer(ctx, img, vision.QuickPrompt(knownNames), vision.QuickSystemPrompt, QuickTimeout)
	if err != nil {
		s.fail(ctx, binID, msgQuickFailed)
		return fmt.Errorf("quick inference: %w", err)
	}

	items, err := vision.Normalize(raw)
	if err != nil {
		s.fail(ctx, binID, msgQuickFailed)
		return fmt.Errorf("normalize quick response: %w", err)
	}
	if len(items) == 0 {
		s.fail(ctx, binID, msgQuickEmpty)
		return fmt.Errorf("quick scan detected nothing")
	}

	vision.ApplyPixelBoxes(items, width, height)
	fresh := items[:0]
	for _, item := range items {
		if _, seen := known[strings.ToLower(item.Name)]; seen {
			continue
		}
		item.ImageFilename = filename
		fresh = append(fresh, item)
	}

	if len(fresh) == 0 {
		// Everything detected is already tracked; success without a write.
		return s.repo.Update(ctx, binID, func(b *bins.Bin) error {
			b.SetStatus(bins.StateDone, msgQuickNoNew)
			return nil
		})
	}

	incoming := inventory.FromDetections(fresh)
	return s.repo.Update(ctx, binID, func(b *bins.Bin) error {
		b.Inventory = inventory.Merge(b.Inventory, incoming, inventory.Accumulate)
		b.AppendHistory(bins.ActionAdd, incoming, filename)
		b.SetStatus(bins.StateDone, msgQuickDone)
		return nil
	})
}

func (s *service) runDeep(ctx context.Context, binID, filename string) error {
	img, width, height, err := s.images.Image(ctx, binID, filename)
	if err != nil {
		s.fail(ctx, binID, msgDeepFailed)
		return fmt.Errorf("load image: %w", err)
	}

	first, err := s.deepPass(ctx, img, false)
	if err != nil {
		s.fail(ctx, binID, msgDeepFailed)
		return fmt.Errorf("deep pass 1: %w", err)
	}
	second, err := s.deepPass(ctx, img, true)
	if err != nil {
		s.fail(ctx, binID, msgDeepFailed)
		return fmt.Errorf("deep pass 2: %w", err)
	}

	merged := vision.MergeDualPass(first, second)
	items := vision.ObjectsToItems(merged)
	vision.ApplyPixelBoxes(items, width, height)
	for i := range items {
		items[i].ImageFilename = filename
	}

	incoming := inventory.FromDetections(items)
	return s.repo.Update(ctx, binID, func(b *bins.Bin) error {
		b.Inventory = inventory.Merge(b.Inventory, incoming, inventory.Replace)
		b.AppendHistory(bins.ActionAdd, incoming, filename)
		b.SetStatus(bins.StateDeepDone, msgDeepDone)
		return nil
	})
}

// deepPass runs one high-recall inference and returns the sanitized,
// schema-checked analysis.
func (s *service) deepPass(ctx context.Context, img []byte, smallOnly bool) (vision.Analysis, error) {
	raw, err := s.vision.Infer(ctx, img, vision.DeepPrompt(smallOnly, nil), vision.DeepSystemPrompt, DeepPassTimeout)
	if err != nil {
		return vision.Analysis{}, err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return vision.Analysis{}, fmt.Errorf("parse deep response: %w", err)
	}
	sanitized := vision.SanitizePayload(payload)
	if err := vision.ValidateDeepSchema(sanitized); err != nil {
		return vision.Analysis{}, err
	}
	return vision.DecodeAnalysis(sanitized), nil
}

func (s *service) runRemove(ctx context.Context, binID, filename string) error {
	img, _, _, err := s.images.Image(ctx, binID, filename)
	if err != nil {
		s.fail(ctx, binID, msgRemoveFailed)
		return fmt.Errorf("load image: %w", err)
	}

	known := map[string]struct{}{}
	var knownNames []string
	if bin, err := s.repo.Get(binID); err == nil {
		known = bin.Inventory.NameSet()
		knownNames = bin.Inventory.Names()
	}

	raw, err := s.vision.Infer(ctx, img, vision.RemovePrompt(knownNames), vision.QuickSystemPrompt, RemoveTimeout)
	if err != nil {
		s.fail(ctx, binID, msgRemoveFailed)
		return fmt.Errorf("remove inference: %w", err)
	}

	items, err := vision.Normalize(raw)
	if err != nil {
		s.fail(ctx, binID, msgRemoveFailed)
		return fmt.Errorf("normalize remove response: %w", err)
	}

	matched := items[:0]
	for _, item := range items {
		if _, ok := known[strings.ToLower(item.Name)]; ok {
			matched = append(matched, item)
		}
	}

	if len(matched) == 0 {
		// Nothing the model saw is in the inventory; success without a write.
		return s.repo.Update(ctx, binID, func(b *bins.Bin) error {
			b.SetStatus(bins.StateDone, msgRemoveDone)
			return nil
		})
	}

	removals := inventory.FromDetections(matched)
	return s.repo.Update(ctx, binID, func(b *bins.Bin) error {
		b.Inventory = inventory.Subtract(b.Inventory, removals)
		b.AppendHistory(bins.ActionRemove, removals, filename)
		b.SetStatus(bins.StateDone, msgRemoveDone)
		return nil
	})
}

// fail records the error state on the bin and keeps the inventory as-is.
func (s *service) fail(ctx context.Context, binID, message string) {
	if err := s.repo.Update(ctx, binID, func(b *bins.Bin) error {
		b.SetStatus(bins.StateError, message)
		return nil
	}); err != nil {
		log.Printf("failed to record error status for bin %s: %v", binID, err)
	}
}
