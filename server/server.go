package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-qa-web/api"
	"github.com/jrsteele09/go-qa-web/appstate"
	"github.com/jrsteele09/go-qa-web/internal/config"
	"github.com/jrsteele09/go-qa-web/internal/metrics"
	"github.com/jrsteele09/go-qa-web/session"
	"github.com/jrsteele09/go-qa-web/storage"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the web layer is wired with
type Deps struct {
	API     *api.Client
	Storage storage.Repo
	States  *appstate.Registry
	Metrics *metrics.Recorder
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	api     *api.Client
	storage storage.Repo
	states  *appstate.Registry
	metrics *metrics.Recorder

	managers     map[string]*session.Manager // browserID -> manager
	managersLock sync.Mutex
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.API == nil {
		return nil, fmt.Errorf("[Server New] api client is required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("[Server New] storage is required")
	}
	if deps.States == nil {
		deps.States = appstate.NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		api:      deps.API,
		storage:  deps.Storage,
		states:   deps.States,
		metrics:  deps.Metrics,
		managers: make(map[string]*session.Manager),
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// sessionManager returns the manager of one browser, creating it and its state on first use
func (s *Server) sessionManager(browserID string) (*session.Manager, error) {
	s.managersLock.Lock()
	defer s.managersLock.Unlock()

	state, err := s.states.Get(browserID)
	if err != nil {
		return nil, fmt.Errorf("[Server sessionManager] %w", err)
	}

	m, ok := s.managers[browserID]
	if !ok {
		m = session.NewManager(
			s.api,
			storage.Scoped(s.storage, browserID),
			state,
			session.WithObserver(s.metrics),
			session.WithLogger(log.With().Str("browser", browserID).Logger()),
		)
		s.managers[browserID] = m
	}
	return m, nil
}

// sessionView reads a browser's state without registering it. Browsers that
// never logged in see the zero snapshot.
func (s *Server) sessionView(browserID string) (appstate.Snapshot, bool) {
	s.managersLock.Lock()
	defer s.managersLock.Unlock()

	state, ok := s.states.Lookup(browserID)
	if !ok {
		return appstate.Snapshot{}, false
	}
	m := s.managers[browserID]
	return state.Snapshot(), m != nil && m.IsLoading()
}

// forgetSession drops the state and manager of one browser
func (s *Server) forgetSession(browserID string) {
	s.managersLock.Lock()
	defer s.managersLock.Unlock()

	s.states.Delete(browserID)
	delete(s.managers, browserID)
}

// idleTimeout never outlives the stored tokens
func (s *Server) idleTimeout() time.Duration {
	idle := s.config.GetSessionIdleTimeout()
	if ttl := s.config.GetStorageTTL(); ttl > 0 && ttl < idle {
		idle = ttl
	}
	return idle
}

// EvictIdle forgets every browser session not seen for the idle timeout
// before now, together with its stored tokens. It returns how many went.
func (s *Server) EvictIdle(ctx context.Context, now time.Time) int {
	s.managersLock.Lock()
	evicted := s.states.EvictIdle(now.Add(-s.idleTimeout()))
	for _, id := range evicted {
		delete(s.managers, id)
	}
	s.managersLock.Unlock()

	for _, id := range evicted {
		kv := storage.Scoped(s.storage, id)
		for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken} {
			if err := kv.RemoveItem(ctx, key); err != nil {
				log.Warn().Err(err).Str("browser", id).Str("key", key).Msg("Failed to remove token of idle session")
			}
		}
	}
	if len(evicted) > 0 {
		log.Debug().Int("count", len(evicted)).Msg("Evicted idle browser sessions")
	}
	return len(evicted)
}

// RunJanitor evicts idle sessions every interval until ctx ends
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.EvictIdle(ctx, now)
		}
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
