// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/eduportal-tui/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultSessionTimeout matches the production portal.
	DefaultSessionTimeout = 15 * time.Minute

	// AdminUsername is the built-in administrator.
	AdminUsername = "ADMIN"

	DefaultAdminPassword    = "admin123"
	DefaultAcademicPassword = "acad123"
	DefaultStudentPassword  = "stud123"

	// MinPasswordLength is enforced on password changes.
	MinPasswordLength = 6

	// MaxRequestBodySize caps request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024
)

// ============================================================================
// STATE
// ============================================================================

// Account is a user who can sign in.
type Account struct {
	ID               string
	Username         string
	Password         string
	Role             string
	Status           string
	RegistrationID   string
	ProfileCompleted bool
	PasswordChanged  bool
	Profile          model.Profile
	Theme            string
	LastLogin        string
	LoginCount       int
	CreatedAt        string
}

// defaultPassword reports whether the account still uses its role's issued
// password.
func (a *Account) defaultPassword() bool {
	switch a.Role {
	case "Faculty":
		return a.Password == DefaultAcademicPassword
	case "Student":
		return a.Password == DefaultStudentPassword
	}
	return false
}

func (a *Account) record() model.UserRecord {
	status := "Incomplete"
	if a.ProfileCompleted {
		status = "Completed"
	}
	return model.UserRecord{
		ID:               a.ID,
		Username:         a.Username,
		Role:             a.Role,
		Status:           a.Status,
		Email:            a.Profile.Email,
		LastLogin:        a.LastLogin,
		RegistrationID:   a.RegistrationID,
		ProfileCompleted: a.ProfileCompleted,
		ProfileStatus:    status,
	}
}

type session struct {
	username string
	role     string
	expires  time.Time
}

// Request is a request the portal received.
type Request struct {
	Method    string
	Path      string
	Query     string
	Token     string
	RequestID string
	Body      []byte
}

// Portal is an in-memory EduPortal server.
type Portal struct {
	mu sync.Mutex

	accounts      map[string]*Account
	sessions      map[string]*session
	academics     []model.Academic
	students      []model.Student
	events        []model.Event
	registrations map[string][]model.Registration
	timetable     model.Timetable
	activities    []model.Activity

	timeout time.Duration
	secret  []byte
	now     func() time.Time
	log     zerolog.Logger

	forcedRemaining *int
	statusFails     bool
	overrides       map[string]http.HandlerFunc
	requests        []Request

	router chi.Router
	srv    *http.Server
}

// Option configures a Portal.
type Option func(*Portal)

// WithSessionTimeout sets the session lifetime.
func WithSessionTimeout(d time.Duration) Option {
	return func(p *Portal) { p.timeout = d }
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(p *Portal) { p.now = now }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Portal) { p.log = log }
}

// New creates a portal holding only the built-in administrator.
func New(opts ...Option) *Portal {
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	p := &Portal{
		accounts:      make(map[string]*Account),
		sessions:      make(map[string]*session),
		registrations: make(map[string][]model.Registration),
		timetable:     make(model.Timetable),
		timeout:       DefaultSessionTimeout,
		secret:        secret,
		now:           time.Now,
		log:           zerolog.Nop(),
		overrides:     make(map[string]http.HandlerFunc),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, day := range model.Days {
		p.timetable[day] = nil
	}
	p.accounts[AdminUsername] = &Account{
		ID:               AdminUsername,
		Username:         AdminUsername,
		Password:         DefaultAdminPassword,
		Role:             "Admin",
		Status:           "active",
		RegistrationID:   p.registrationID(),
		ProfileCompleted: true,
		PasswordChanged:  true,
		Profile: model.Profile{
			FirstName:     "System",
			LastName:      "Administrator",
			DOB:           "1990-01-01",
			Gender:        "Other",
			MaritalStatus: "Single",
			FatherName:    "N/A",
			MotherName:    "N/A",
			Email:         "admin@eduportal.com",
		},
		Theme:     "light",
		CreatedAt: p.timestamp(),
	}
	p.router = p.routes()
	return p
}

// Handler returns the portal's HTTP handler.
func (p *Portal) Handler() http.Handler {
	return p.router
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// ListenAndServe serves on addr until Shutdown.
func (p *Portal) ListenAndServe(addr string) error {
	p.mu.Lock()
	p.srv = &http.Server{
		Addr:         addr,
		Handler:      p.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	srv := p.srv
	p.mu.Unlock()

	p.log.Info().Str("event", "server_start").Str("addr", addr).Msg("portal listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a server started with ListenAndServe.
func (p *Portal) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv := p.srv
	p.mu.Unlock()
	if srv == nil {
		return nil
	}
	p.log.Info().Str("event", "server_shutdown").Msg("portal stopping")
	return srv.Shutdown(ctx)
}

// ============================================================================
// TEST CONTROLS
// ============================================================================

// AddAccount registers a. Missing fields get defaults.
func (p *Portal) AddAccount(a Account) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a.Status == "" {
		a.Status = "active"
	}
	if a.ID == "" {
		a.ID = p.newID("USR")
	}
	if a.RegistrationID == "" {
		a.RegistrationID = p.registrationID()
	}
	if a.Theme == "" {
		a.Theme = "light"
	}
	if a.CreatedAt == "" {
		a.CreatedAt = p.timestamp()
	}
	p.accounts[a.Username] = &a
}

// Account returns a copy of the named account.
func (p *Portal) Account(username string) (Account, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accounts[username]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// IssueToken opens a session for username without a password check.
func (p *Portal) IssueToken(username string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accounts[username]
	if !ok {
		return "", fmt.Errorf("unknown account %q", username)
	}
	return p.openSession(a)
}

// ForceRemaining makes session-status report n seconds. A negative n
// restores the real value.
func (p *Portal) ForceRemaining(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 0 {
		p.forcedRemaining = nil
		return
	}
	p.forcedRemaining = &n
}

// FailSessionStatus makes session-status answer 200 with success=false.
func (p *Portal) FailSessionStatus(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusFails = fail
}

// ExpireSessions drops every session; later requests get 401.
func (p *Portal) ExpireSessions() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = make(map[string]*session)
}

// Override answers "METHOD /path" with h instead of the built-in route.
func (p *Portal) Override(method, path string, h http.HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.overrides[strings.ToUpper(method)+" "+path] = h
}

// Requests returns every request received so far.
func (p *Portal) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Request(nil), p.requests...)
}

// RequestsTo returns the requests whose path equals path.
func (p *Portal) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range p.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ============================================================================
// SESSIONS
// ============================================================================

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// openSession issues a signed token. Callers hold p.mu.
func (p *Portal) openSession(a *Account) (string, error) {
	now := p.now()
	exp := now.Add(p.timeout)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	p.sessions[signed] = &session{username: a.Username, role: a.Role, expires: exp}
	return signed, nil
}

// lookup validates token. Callers hold p.mu.
func (p *Portal) lookup(token string) (*session, bool) {
	s, ok := p.sessions[token]
	if !ok {
		return nil, false
	}
	if p.now().After(s.expires) {
		delete(p.sessions, token)
		return nil, false
	}
	return s, true
}

// ============================================================================
// HELPERS
// ============================================================================

func (p *Portal) timestamp() string {
	return p.now().UTC().Format(model.TimestampLayout)
}

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return string(b)
}

func (p *Portal) newID(prefix string) string {
	return prefix + "_" + p.now().Format("20060102150405") + randomSuffix(3)
}

func (p *Portal) registrationID() string {
	return "REG-" + p.now().Format("20060102150405") + "-" + randomSuffix(4)
}

// username derives a unique login from a display name. Callers hold p.mu.
func (p *Portal) username(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('.')
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 1; ; i++ {
		if _, taken := p.accounts[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// logActivity appends an audit entry. Callers hold p.mu.
func (p *Portal) logActivity(user, action, entityType, entityID, description string) {
	p.activities = append(p.activities, model.Activity{
		Timestamp:   p.timestamp(),
		User:        user,
		Action:      action,
		Description: description,
		Status:      "success",
		EntityType:  entityType,
		EntityID:    entityID,
	})
}
