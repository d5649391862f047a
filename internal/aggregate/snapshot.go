package aggregate

import (
	"sync"
	"time"

	"github.com/freefromtrial/backend/internal/models"
)

// Snapshot — неизменяемый снимок коллекции подписок пользователя на момент
// последней успешной загрузки. Снимок заменяется целиком после каждой
// мутации; поэлементного изменения не существует.
//
// Available различает "пусто, потому что у пользователя нет подписок"
// и "пусто, потому что загрузка не удалась".
type Snapshot struct {
	trials    []models.Trial
	fetchedAt time.Time
	available bool
}

// NewSnapshot создаёт доступный снимок из списка подписок.
func NewSnapshot(trials []models.Trial, fetchedAt time.Time) Snapshot {
	copied := make([]models.Trial, len(trials))
	copy(copied, trials)
	return Snapshot{trials: copied, fetchedAt: fetchedAt, available: true}
}

// Unavailable возвращает пустой снимок, помеченный как недоступный.
func Unavailable() Snapshot {
	return Snapshot{}
}

// Trials возвращает копию списка подписок снимка.
func (s Snapshot) Trials() []models.Trial {
	copied := make([]models.Trial, len(s.trials))
	copy(copied, s.trials)
	return copied
}

// Available сообщает, была ли загрузка снимка успешной.
func (s Snapshot) Available() bool { return s.available }

// FetchedAt возвращает момент загрузки снимка.
func (s Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// Holder хранит снимки коллекций по пользователям. Единственный способ
// изменить состояние — заменить снимок целиком через Replace.
type Holder struct {
	mu     sync.RWMutex
	byUser map[string]Snapshot
}

// NewHolder создаёт пустое хранилище снимков.
func NewHolder() *Holder {
	return &Holder{byUser: make(map[string]Snapshot)}
}

// Get возвращает снимок пользователя, если он есть.
func (h *Holder) Get(userUID string) (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snap, ok := h.byUser[userUID]
	return snap, ok
}

// Replace заменяет снимок пользователя целиком.
func (h *Holder) Replace(userUID string, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byUser[userUID] = snap
}

// Drop удаляет снимок пользователя, например при выходе из системы.
func (h *Holder) Drop(userUID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.byUser, userUID)
}
