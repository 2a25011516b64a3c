// internal/bins/domain.go
package bins

import (
	"time"

	"github.com/google/uuid"

	"smartbin/internal/inventory"
)

// HistoryLimit caps the per-bin audit trail; the oldest events are evicted
// first.
const HistoryLimit = 100

// State is the scan lifecycle state shown to the UI. Quick and deep scans
// run through separate state pairs; the status is advisory only and never
// gates a concurrent scan.
type State string

const (
	StateIdle         State = "idle"
	StateQuickRunning State = "quick_running"
	StateDone         State = "done"
	StateError        State = "error"
	StateDeepRunning  State = "deep_running"
	StateDeepDone     State = "deep_done"
)

// AnalysisStatus is overwritten wholesale on every transition; no prior
// state is retained.
type AnalysisStatus struct {
	State     State     `json:"state"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryAction distinguishes the two ledger event kinds.
type HistoryAction string

const (
	ActionAdd    HistoryAction = "add"
	ActionRemove HistoryAction = "remove"
)

// HistoryEvent is an immutable snapshot of one add/remove operation.
type HistoryEvent struct {
	ID            uuid.UUID        `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Action        HistoryAction    `json:"action"`
	Items         []inventory.Item `json:"items"`
	ImageFilename string           `json:"image_filename,omitempty"`
}

// Bin is one physical storage container: its photos, reconciled inventory,
// capped history and current scan status.
type Bin struct {
	ID             string              `json:"id"`
	Name           string              `json:"name,omitempty"`
	Images         []string            `json:"images"`
	Inventory      inventory.Inventory `json:"inventory"`
	History        []HistoryEvent      `json:"history"`
	AnalysisStatus AnalysisStatus      `json:"analysis_status"`
}

// Collection holds every known bin keyed by bin id.
type Collection map[string]*Bin

// NewBin creates a bin with default-initialized fields.
func NewBin(id string) *Bin {
	return &Bin{
		ID:     id,
		Images: []string{},
		History: []HistoryEvent{},
		AnalysisStatus: AnalysisStatus{
			State:     StateIdle,
			Message:   "Ready.",
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// SetStatus replaces the whole analysis status.
func (b *Bin) SetStatus(state State, message string) {
	b.AnalysisStatus = AnalysisStatus{
		State:     state,
		Message:   message,
		UpdatedAt: time.Now().UTC(),
	}
}

// AppendHistory records an add/remove event with a snapshot of the items
// involved, evicting the oldest entries beyond HistoryLimit.
func (b *Bin) AppendHistory(action HistoryAction, items []inventory.Item, imageFilename string) {
	snapshot := make([]inventory.Item, len(items))
	copy(snapshot, items)

	b.History = append(b.History, HistoryEvent{
		ID:            uuid.New(),
		Timestamp:     time.Now().UTC(),
		Action:        action,
		Items:         snapshot,
		ImageFilename: imageFilename,
	})
	if len(b.History) > HistoryLimit {
		b.History = append([]HistoryEvent(nil), b.History[len(b.History)-HistoryLimit:]...)
	}
}

// AppendImage adds a filename to the ordered image list unless present.
func (b *Bin) AppendImage(filename string) bool {
	for _, existing := range b.Images {
		if existing == filename {
			return false
		}
	}
	b.Images = append(b.Images, filename)
	return true
}

// RemoveImage drops a filename from the image list.
func (b *Bin) RemoveImage(filename string) bool {
	for i, existing := range b.Images {
		if existing == filename {
			b.Images = append(b.Images[:i], b.Images[i+1:]...)
			return true
		}
	}
	return false
}

// LatestImage returns the most recently appended filename, or "".
func (b *Bin) LatestImage() string {
	if len(b.Images) == 0 {
		return ""
	}
	return b.Images[len(b.Images)-1]
}

// Clone deep-copies the bin so snapshots can be serialized while the
// original keeps mutating under its lock.
func (b *Bin) Clone() *Bin {
	out := *b
	out.Images = append([]string(nil), b.Images...)
	out.Inventory = b.Inventory.Clone()
	out.History = make([]HistoryEvent, len(b.History))
	for i, event := range b.History {
		event.Items = append([]inventory.Item(nil), event.Items...)
		out.History[i] = event
	}
	return &out
}

// Clone deep-copies the whole collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for id, bin := range c {
		out[id] = bin.Clone()
	}
	return out
}
