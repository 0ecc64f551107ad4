// Package uploads stages listing media per category before final dispatch.
// Staging is independent of the form's validity: files can be added and
// removed at any step, and only the aggregate image count gates step 3.
package uploads

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryExterior    Category = "exterior"
	CategoryLivingRoom  Category = "living_room"
	CategoryKitchen     Category = "kitchen"
	CategoryBedroom     Category = "bedroom"
	CategoryBathroom    Category = "bathroom"
	CategoryFloorPlan   Category = "floor_plan"
	CategoryMasterPlan  Category = "master_plan"
	CategoryLocationMap Category = "location_map"
	CategoryOther       Category = "other"
	CategoryVideo       Category = "video"
)

var Categories = []Category{
	CategoryExterior, CategoryLivingRoom, CategoryKitchen, CategoryBedroom,
	CategoryBathroom, CategoryFloorPlan, CategoryMasterPlan,
	CategoryLocationMap, CategoryOther, CategoryVideo,
}

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

const (
	maxImageBytes = 10 << 20
	maxVideoBytes = 100 << 20

	// Simulated progress advances in fixed increments until 100, after
	// which the driving timer is stopped.
	progressIncrement = 10
	progressInterval  = 200 * time.Millisecond
)

// baseLimits holds the per-category maximum file counts. The bedroom limit
// scales with the draft's bedroom count (5 per bedroom).
var baseLimits = map[Category]int{
	CategoryExterior:    5,
	CategoryLivingRoom:  5,
	CategoryKitchen:     5,
	CategoryBedroom:     5,
	CategoryBathroom:    5,
	CategoryFloorPlan:   3,
	CategoryMasterPlan:  3,
	CategoryLocationMap: 2,
	CategoryOther:       10,
	CategoryVideo:       2,
}

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var videoMimeTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
}

// FileRecord is one staged file. Data holds the raw bytes only until the
// file is hosted (ServerURI set); restored records never carry bytes.
type FileRecord struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	ByteSize    int64     `json:"byte_size"`
	MimeType    string    `json:"mime_type"`
	PreviewURI  string    `json:"preview_uri"`
	ServerURI   string    `json:"server_uri,omitempty"`
	Status      Status    `json:"status"`

	Data []byte `json:"-"`
}

// Incoming is a file as selected by the user, before validation.
type Incoming struct {
	Name     string
	Size     int64
	MimeType string
	Data     []byte
}

// Rejected records why one selected file was not staged.
type Rejected struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// StagedFileMeta is the lossy persisted form of a FileRecord: everything
// except the binary round-trips through the session store.
type StagedFileMeta struct {
	ID          uuid.UUID `json:"id"`
	Category    Category  `json:"category"`
	DisplayName string    `json:"display_name"`
	ByteSize    int64     `json:"byte_size"`
	MimeType    string    `json:"mime_type"`
	ServerURI   string    `json:"server_url,omitempty"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
}

// HostFunc uploads a staged file to external hosting and returns its public
// URL. A nil HostFunc switches the tracker to simulated progress.
type HostFunc func(category Category, filename string, data []byte) (string, error)

// Tracker keeps the ordered per-category file sequences for one wizard
// session.
type Tracker struct {
	mu        sync.Mutex
	files     map[Category][]*FileRecord
	progress  map[uuid.UUID]int
	stops     map[uuid.UUID]chan struct{}
	previews  *PreviewRegistry
	host      HostFunc
	bedroomFn func() int
}

func NewTracker(previews *PreviewRegistry, host HostFunc, bedroomFn func() int) *Tracker {
	if previews == nil {
		previews = NewPreviewRegistry()
	}
	return &Tracker{
		files:     make(map[Category][]*FileRecord),
		progress:  make(map[uuid.UUID]int),
		stops:     make(map[uuid.UUID]chan struct{}),
		previews:  previews,
		host:      host,
		bedroomFn: bedroomFn,
	}
}

func ValidCategory(c Category) bool {
	_, ok := baseLimits[c]
	return ok
}

// Limit returns the current maximum count for a category.
func (t *Tracker) Limit(category Category) int {
	limit := baseLimits[category]
	if category == CategoryBedroom && t.bedroomFn != nil {
		if n := t.bedroomFn(); n > 1 {
			limit = 5 * n
		}
	}
	return limit
}

func (t *Tracker) checkFile(category Category, in Incoming) string {
	// The declared size is client input; the cap applies to whichever of
	// the header and the payload is larger.
	size := in.Size
	if actual := int64(len(in.Data)); actual > size {
		size = actual
	}
	mime := strings.ToLower(in.MimeType)
	if category == CategoryVideo {
		if !videoMimeTypes[mime] {
			return fmt.Sprintf("unsupported video type %q", in.MimeType)
		}
		if size > maxVideoBytes {
			return fmt.Sprintf("video exceeds %d MB limit", maxVideoBytes>>20)
		}
		return ""
	}
	if !imageMimeTypes[mime] {
		return fmt.Sprintf("unsupported image type %q", in.MimeType)
	}
	if size > maxImageBytes {
		return fmt.Sprintf("image exceeds %d MB limit", maxImageBytes>>20)
	}
	return ""
}

// Accept validates and stages one batch of selected files. Over-limit,
// over-size and wrong-type files are rejected at selection time; already
// staged files are never evicted. Accepted files begin hosting (or
// simulated progress) immediately.
func (t *Tracker) Accept(category Category, incoming []Incoming) ([]*FileRecord, []Rejected) {
	if !ValidCategory(category) {
		rejected := make([]Rejected, len(incoming))
		for i, in := range incoming {
			rejected[i] = Rejected{Name: in.Name, Reason: fmt.Sprintf("unknown category %q", category)}
		}
		return nil, rejected
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	limit := t.Limit(category)
	accepted := make([]*FileRecord, 0, len(incoming))
	var rejected []Rejected

	for _, in := range incoming {
		if len(t.files[category]) >= limit {
			rejected = append(rejected, Rejected{
				Name:   in.Name,
				Reason: fmt.Sprintf("category %s is full (max %d files)", category, limit),
			})
			continue
		}
		if reason := t.checkFile(category, in); reason != "" {
			rejected = append(rejected, Rejected{Name: in.Name, Reason: reason})
			continue
		}

		record := &FileRecord{
			ID:          uuid.New(),
			DisplayName: in.Name,
			ByteSize:    in.Size,
			MimeType:    in.MimeType,
			PreviewURI:  t.previews.Allocate(),
			Status:      StatusPending,
			Data:        in.Data,
		}
		t.files[category] = append(t.files[category], record)
		t.progress[record.ID] = 0
		accepted = append(accepted, record)

		if t.host != nil {
			t.hostLocked(category, record)
		} else {
			t.simulateLocked(record.ID)
		}
	}

	return accepted, rejected
}

// hostLocked uploads the record synchronously and attaches the server URL.
func (t *Tracker) hostLocked(category Category, record *FileRecord) {
	url, err := t.host(category, record.DisplayName, record.Data)
	if err != nil {
		record.Status = StatusError
		return
	}
	record.ServerURI = url
	record.Status = StatusSuccess
	record.Data = nil
	t.progress[record.ID] = 100
}

// simulateLocked drives fake progress for local development without a
// hosting backend. The goroutine owns its ticker and exits on the done
// channel, so a removed or closed session leaves nothing running.
func (t *Tracker) simulateLocked(id uuid.UUID) {
	done := make(chan struct{})
	t.stops[id] = done
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			t.mu.Lock()
			p, ok := t.progress[id]
			if !ok {
				t.stopSimulationLocked(id)
				t.mu.Unlock()
				return
			}
			p += progressIncrement
			if p >= 100 {
				t.progress[id] = 100
				if rec := t.findLocked(id); rec != nil && rec.Status == StatusPending {
					rec.Status = StatusSuccess
				}
				t.stopSimulationLocked(id)
				t.mu.Unlock()
				return
			}
			t.progress[id] = p
			t.mu.Unlock()
		}
	}()
}

func (t *Tracker) stopSimulationLocked(id uuid.UUID) {
	if done, ok := t.stops[id]; ok {
		close(done)
		delete(t.stops, id)
	}
}

func (t *Tracker) findLocked(id uuid.UUID) *FileRecord {
	for _, records := range t.files {
		for _, r := range records {
			if r.ID == id {
				return r
			}
		}
	}
	return nil
}

// Remove deletes one staged file by id and releases its preview. Removing
// an absent id is a no-op; the rest of the category keeps its order.
func (t *Tracker) Remove(category Category, id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := t.files[category]
	for i, r := range records {
		if r.ID == id {
			t.files[category] = append(records[:i], records[i+1:]...)
			t.previews.Release(r.PreviewURI)
			delete(t.progress, id)
			t.stopSimulationLocked(id)
			return true
		}
	}
	return false
}

// Files returns the ordered records for one category.
func (t *Tracker) Files(category Category) []*FileRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*FileRecord, len(t.files[category]))
	copy(out, t.files[category])
	return out
}

// AllFiles returns every staged record keyed by category.
func (t *Tracker) AllFiles() map[Category][]*FileRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Category][]*FileRecord, len(t.files))
	for c, records := range t.files {
		cp := make([]*FileRecord, len(records))
		copy(cp, records)
		out[c] = cp
	}
	return out
}

// Progress returns the 0-100 progress value for a staged file.
func (t *Tracker) Progress(id uuid.UUID) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.progress[id]
	return p, ok
}

// TotalImages counts staged files across every category except video. This
// is the count that gates step 3 -> step 4 advancement.
func (t *Tracker) TotalImages() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for c, records := range t.files {
		if c == CategoryVideo {
			continue
		}
		total += len(records)
	}
	return total
}

// Snapshot exports the staged metadata for persistence. Binary data is not
// included; a later Restore yields zero-byte placeholders.
func (t *Tracker) Snapshot() []StagedFileMeta {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []StagedFileMeta
	for _, c := range Categories {
		for i, r := range t.files[c] {
			out = append(out, StagedFileMeta{
				ID:          r.ID,
				Category:    c,
				DisplayName: r.DisplayName,
				ByteSize:    r.ByteSize,
				MimeType:    r.MimeType,
				ServerURI:   r.ServerURI,
				Status:      r.Status,
				Position:    i,
			})
		}
	}
	return out
}

// Restore rebuilds the staged sequences from persisted metadata. Restored
// records carry a fresh preview and no bytes, so only files that already
// have a ServerURI can reach the dispatcher as references.
func (t *Tracker) Restore(metas []StagedFileMeta) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sort.SliceStable(metas, func(i, j int) bool { return metas[i].Position < metas[j].Position })
	for _, m := range metas {
		record := &FileRecord{
			ID:          m.ID,
			DisplayName: m.DisplayName,
			ByteSize:    0,
			MimeType:    m.MimeType,
			PreviewURI:  t.previews.Allocate(),
			ServerURI:   m.ServerURI,
			Status:      m.Status,
		}
		t.files[m.Category] = append(t.files[m.Category], record)
		if m.Status == StatusSuccess {
			t.progress[m.ID] = 100
		} else {
			t.progress[m.ID] = 0
		}
	}
}

// Close stops all simulated uploads and releases every live preview.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.stops {
		t.stopSimulationLocked(id)
	}
	t.previews.ReleaseAll()
}

// Previews exposes the registry for lifecycle assertions.
func (t *Tracker) Previews() *PreviewRegistry {
	return t.previews
}
