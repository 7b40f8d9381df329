package feedback

import (
	"sync"

	"feedbackwidget/internal/domain"
)

// conversationGuard tracks conversations that have a model call in flight.
// A second turn for the same key is refused instead of queued so two replies
// can never race against one history.
type conversationGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newConversationGuard() *conversationGuard {
	return &conversationGuard{inFlight: make(map[string]struct{})}
}

// acquire marks key as busy. The returned release func must be called once
// the turn is done. Returns domain.ErrConversationBusy if key is taken.
func (g *conversationGuard) acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, domain.ErrConversationBusy
	}
	g.inFlight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, key)
			g.mu.Unlock()
		})
	}, nil
}

// checkTurnLimit rejects histories longer than limit.
func checkTurnLimit(turns, limit int) error {
	if turns > limit {
		return &domain.TurnLimitError{Turns: turns, Limit: limit}
	}
	return nil
}
