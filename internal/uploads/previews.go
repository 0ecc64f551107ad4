package uploads

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PreviewRegistry owns the local preview resources allocated for staged
// files. Every allocation must be paired with a release, either when the
// file is removed or in bulk when the wizard is torn down; the counters
// exist so a lifecycle test can assert released == created.
type PreviewRegistry struct {
	mu       sync.Mutex
	live     map[string]bool
	created  int
	released int
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{live: make(map[string]bool)}
}

func (r *PreviewRegistry) Allocate() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	uri := fmt.Sprintf("preview://%s", uuid.New().String())
	r.live[uri] = true
	r.created++
	return uri
}

// Release frees one preview URI. Releasing an unknown or already-released
// URI is a no-op.
func (r *PreviewRegistry) Release(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live[uri] {
		delete(r.live, uri)
		r.released++
	}
}

// ReleaseAll frees every live preview. Called on wizard teardown.
func (r *PreviewRegistry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uri := range r.live {
		delete(r.live, uri)
		r.released++
	}
}

func (r *PreviewRegistry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *PreviewRegistry) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

func (r *PreviewRegistry) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}
