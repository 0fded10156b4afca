package navigator

import (
	"context"
	"sync"

	"github.com/vaultbank/vaultbank-web/internal/domain"
)

// Recorder is a navigator.Navigator that records navigations instead of performing them.
// The web adapter uses one per request and turns the last entry into a redirect.
// It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	hist []domain.Page
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Navigate(ctx context.Context, to domain.Page) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hist = append(r.hist, to)
	return nil
}

// Last returns the most recent navigation target.
func (r *Recorder) Last() (domain.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hist) == 0 {
		return "", false
	}
	return r.hist[len(r.hist)-1], true
}

// History returns a copy of every recorded navigation, oldest first.
func (r *Recorder) History() []domain.Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Page(nil), r.hist...)
}
