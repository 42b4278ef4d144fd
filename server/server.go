package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"youtube_gpt_creator/config"
	"youtube_gpt_creator/generator"
	"youtube_gpt_creator/render"
)

//go:embed web/index.html
var embeddedWeb embed.FS

const (
	sessionCookie = "ytgpt_session"
	// sessions idle longer than this are dropped
	sessionTTL = 24 * time.Hour
	// the store is swept at most this often
	sweepInterval = time.Minute
)

// PipelineFunc builds a pipeline for one submission, usually generator.Factory.Build.
type PipelineFunc func(req generator.Request) (*generator.Pipeline, error)

type Server struct {
	cfg     config.Config
	build   PipelineFunc
	store   *sessionStore
	page    *template.Template
	logger  *log.Logger
	timeout time.Duration
	mounts  map[string]http.Handler
}

type storeEntry struct {
	sess     *generator.Session
	lastSeen time.Time
}

type sessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*storeEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newStore(ttl time.Duration) *sessionStore {
	return &sessionStore{sessions: make(map[string]*storeEntry), ttl: ttl, now: time.Now}
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = now
	return e.sess, true
}

// getOrCreate returns the session for id, creating a fresh one (with a new id) when unknown.
func (s *sessionStore) getOrCreate(id string) *generator.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	if e, ok := s.sessions[id]; ok {
		e.lastSeen = now
		return e.sess
	}
	sess := generator.NewSession(uuid.NewString())
	s.sessions[sess.ID] = &storeEntry{sess: sess, lastSeen: now}
	return sess
}

func (s *sessionStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func New(cfg config.Config, build PipelineFunc, logger *log.Logger) (*Server, error) {
	if build == nil {
		return nil, errors.New("pipeline builder required")
	}
	if logger == nil {
		logger = log.Default()
	}
	page, err := template.New("index.html").
		Funcs(template.FuncMap{"markdown": render.SafeHTML}).
		ParseFS(embeddedWeb, "web/index.html")
	if err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout * time.Second
	}
	return &Server{
		cfg:     cfg,
		build:   build,
		store:   newStore(sessionTTL),
		page:    page,
		logger:  logger,
		timeout: timeout,
		mounts:  make(map[string]http.Handler),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	for pattern, h := range s.mounts {
		mux.Handle(pattern, h)
	}
	return s.logMiddleware(mux)
}

// Mount registers an extra handler (e.g. the MCP endpoint). Call before Routes.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mounts[pattern] = h
}

// --- Handlers ---

type pageData struct {
	Topic         string
	Submitted     bool
	HasHistory    bool
	Error         string
	Result        *generator.Result
	TitleHistory  string
	ScriptHistory string
	Research      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		data := pageData{}
		if sess, ok := s.sessionFromCookie(r); ok && sess.TitleMemory.Len() > 0 {
			data.HasHistory = true
			data.TitleHistory = sess.TitleMemory.Buffer()
			data.ScriptHistory = sess.ScriptMemory.Buffer()
		}
		s.renderPage(w, http.StatusOK, data)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req := generator.Request{
			Topic:        strings.TrimSpace(r.PostFormValue("topic")),
			OpenAIAPIKey: strings.TrimSpace(r.PostFormValue("openai_api_key")),
			SerperAPIKey: strings.TrimSpace(r.PostFormValue("serper_api_key")),
		}
		// empty topic: just show the form again
		if req.Topic == "" {
			s.renderPage(w, http.StatusOK, pageData{})
			return
		}

		sess := s.sessionForWrite(w, r)
		data := pageData{Topic: req.Topic, Submitted: true}
		res, err := s.run(r.Context(), sess, req)
		status := http.StatusOK
		if err != nil {
			status = statusFor(err)
			data.Error = err.Error()
		} else {
			data.Result = &res
			data.Research = res.Research
		}
		data.TitleHistory = sess.TitleMemory.Buffer()
		data.ScriptHistory = sess.ScriptMemory.Buffer()
		s.renderPage(w, status, data)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type generateReq struct {
	generator.Request
	SessionID string `json:"session_id"`
}

type generateResp struct {
	SessionID     string `json:"session_id"`
	Title         string `json:"title"`
	Script        string `json:"script"`
	Research      string `json:"research"`
	TitleHistory  string `json:"title_history"`
	ScriptHistory string `json:"script_history"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: generator.ErrEmptyTopic.Error()})
		return
	}
	sess := s.store.getOrCreate(req.SessionID)
	res, err := s.run(r.Context(), sess, req.Request)
	if err != nil {
		writeJSON(w, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, generateResp{
		SessionID:     sess.ID,
		Title:         res.Title,
		Script:        res.Script,
		Research:      res.Research,
		TitleHistory:  sess.TitleMemory.Buffer(),
		ScriptHistory: sess.ScriptMemory.Buffer(),
	})
}

type sessionResp struct {
	SessionID     string                       `json:"session_id"`
	CreatedAt     time.Time                    `json:"created_at"`
	TitleHistory  string                       `json:"title_history"`
	ScriptHistory string                       `json:"script_history"`
	Titles        []generator.GenerationRecord `json:"titles"`
	Scripts       []generator.GenerationRecord `json:"scripts"`
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	sess, ok := s.store.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{
		SessionID:     sess.ID,
		CreatedAt:     sess.CreatedAt,
		TitleHistory:  sess.TitleMemory.Buffer(),
		ScriptHistory: sess.ScriptMemory.Buffer(),
		Titles:        sess.TitleMemory.Records(),
		Scripts:       sess.ScriptMemory.Records(),
	})
}

// --- Helpers ---

func (s *Server) run(ctx context.Context, sess *generator.Session, req generator.Request) (generator.Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return generator.Result{}, generator.ErrEmptyTopic
	}
	p, err := s.build(req)
	if err != nil {
		return generator.Result{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Printf("[server] session=%s topic=%q openai_key=%s serper_key=%s",
		sess.ID, req.Topic, config.MaskKey(req.OpenAIAPIKey), config.MaskKey(req.SerperAPIKey))
	res, err := sess.Run(ctx, p, req.Topic)
	if err != nil {
		s.logger.Printf("[server] session=%s generate failed: %v", sess.ID, err)
		return generator.Result{}, err
	}
	return res, nil
}

func (s *Server) sessionFromCookie(r *http.Request) (*generator.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.store.get(c.Value)
}

func (s *Server) sessionForWrite(w http.ResponseWriter, r *http.Request) *generator.Session {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	sess := s.store.getOrCreate(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Printf("[server] render page: %v", err)
	}
}

func statusFor(err error) int {
	var tmplErr *generator.TemplateError
	var lmErr *generator.LanguageModelError
	switch {
	case errors.Is(err, generator.ErrEmptyTopic), errors.Is(err, generator.ErrMissingKey), errors.As(err, &tmplErr):
		return http.StatusBadRequest
	case errors.As(err, &lmErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (MCP) working through the middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("[server] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
