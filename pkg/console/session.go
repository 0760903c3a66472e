package console

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harveywai/jokeadmin/pkg/apiclient"
	"github.com/harveywai/jokeadmin/pkg/listview"
	"github.com/harveywai/jokeadmin/pkg/models"
	"go.uber.org/zap"
)

const (
	sessionCookie     = "jokeadmin_session"
	contextSessionKey = "session"
	contextFreshKey   = "sessionFresh"
)

// Session is the console state of one browser: one managed list per page.
type Session struct {
	ID         string
	Triggers   *listview.View[models.Trigger]
	Jokes      *listview.Scoped[models.Joke]
	Standalone *listview.View[models.StandaloneJoke]
}

func newSession(id string, client *apiclient.Client, logger *zap.Logger) *Session {
	logger = logger.With(zap.String("session", id))
	return &Session{
		ID:         id,
		Triggers:   listview.New[models.Trigger]("triggers", apiclient.TriggerResource{Client: client}, logger),
		Jokes:      listview.NewScoped[models.Joke]("jokes", client.JokesOf, logger),
		Standalone: listview.New[models.StandaloneJoke]("jokes-x", apiclient.StandaloneResource{Client: client}, logger),
	}
}

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// SessionStore keeps sessions in memory. Sessions idle for longer than the
// TTL are evicted whenever the store is accessed.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	client   *apiclient.Client
	logger   *zap.Logger
	sessions map[string]*sessionEntry
}

// NewSessionStore creates an empty store whose sessions talk to client.
func NewSessionStore(client *apiclient.Client, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		client:   client,
		logger:   logger,
		sessions: make(map[string]*sessionEntry),
	}
}

// Acquire returns the live session for id, or a new one when id is unknown
// or expired. fresh reports whether the session was just created.
func (s *SessionStore) Acquire(id string) (session *Session, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	if entry, ok := s.sessions[id]; ok {
		entry.lastSeen = now
		return entry.session, false
	}

	id = uuid.NewString()
	session = newSession(id, s.client, s.logger)
	s.sessions[id] = &sessionEntry{session: session, lastSeen: now}
	s.logger.Debug("session created", zap.String("session", id))
	return session, true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())
	return len(s.sessions)
}

func (s *SessionStore) evictLocked(now time.Time) {
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.sessions, id)
			s.logger.Debug("session evicted", zap.String("session", id))
		}
	}
}

// sessionMiddleware attaches the caller's session to the context and refreshes
// the cookie.
func sessionMiddleware(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		session, fresh := store.Acquire(id)

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.ID,
			Path:     "/",
			MaxAge:   int(store.ttl / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(contextSessionKey, session)
		c.Set(contextFreshKey, fresh)

		c.Next()
	}
}

func currentSession(c *gin.Context) (*Session, bool) {
	return c.MustGet(contextSessionKey).(*Session), c.GetBool(contextFreshKey)
}
