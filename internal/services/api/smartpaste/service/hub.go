package service

import (
	"time"

	"smartpaste/internal/adapters/navigate"
	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/smartpaste"
	"smartpaste/internal/platform/logger"
	ptime "smartpaste/internal/platform/time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an untouched session lives
const DefaultSessionTTL = 30 * time.Minute

// entry is one client session
type entry struct {
	id    string
	eng   *smartpaste.Engine
	route *navigate.Route
}

// Hub owns client sessions in a TTL cache; eviction or deletion disposes the engine
type Hub struct {
	cache *cache.Cache
	cfg   smartpaste.Config
	cls   *classifier.Classifier
	cat   *catalog.Catalog
	clock ptime.Clock
	newID func() string
	log   *logger.Logger
}

// NewHub creates a Hub sharing one classifier across sessions
func NewHub(cfg smartpaste.Config, cls *classifier.Classifier, cat *catalog.Catalog, ttl time.Duration, clock ptime.Clock) *Hub {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if clock == nil {
		clock = ptime.System()
	}
	h := &Hub{
		cache: cache.New(ttl, ttl/2),
		cfg:   cfg,
		cls:   cls,
		cat:   cat,
		clock: clock,
		newID: uuid.NewString,
		log:   logger.Named("smartpaste.hub"),
	}
	h.cache.OnEvicted(func(id string, v any) {
		if e, ok := v.(*entry); ok {
			e.eng.Close()
			h.log.Debug().Str("session_id", id).Msg("session disposed")
		}
	})
	return h
}

// create starts a new session
func (h *Hub) create() (*entry, error) {
	id := h.newID()
	route := navigate.NewRoute(h.cat, nil)
	eng, err := smartpaste.New(h.cfg, route, smartpaste.WithClassifier(h.cls), smartpaste.WithClock(h.clock))
	if err != nil {
		return nil, err
	}
	e := &entry{id: id, eng: eng, route: route}
	h.cache.Set(id, e, cache.DefaultExpiration)
	return e, nil
}

// touched runs between lookup and refresh in get
var touched = func(string) {}

// get returns a live session and extends its TTL
// Replace fails once the janitor evicted the id, so a disposed engine is never re-inserted
func (h *Hub) get(id string) (*entry, bool) {
	v, ok := h.cache.Get(id)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	touched(id)
	if e.eng.Session().Closed() {
		h.cache.Delete(id)
		return nil, false
	}
	if err := h.cache.Replace(id, e, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	if e.eng.Session().Closed() {
		h.cache.Delete(id)
		return nil, false
	}
	return e, true
}

// remove disposes a session, reporting whether it existed
func (h *Hub) remove(id string) bool {
	if _, ok := h.cache.Get(id); !ok {
		return false
	}
	h.cache.Delete(id)
	return true
}

// Len returns the number of live sessions
func (h *Hub) Len() int { return h.cache.ItemCount() }

// Flush disposes every session
func (h *Hub) Flush() {
	for id := range h.cache.Items() {
		h.cache.Delete(id)
	}
}
