// Package services provides the identity bridge for StudioShell.
// The bridge accepts identity messages from the embedding host, exchanges the
// supplied user identifier for a short-lived bearer token from the Studio
// backend, and exposes a single-resolution ready signal other components can
// wait on. The origin allow-list check is the sole trust boundary.
package services

import (
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	studioctx "studioshell/internal/context"
	"studioshell/internal/logger"
	"studioshell/pkg/studiotypes"
)

// IdentityMessageType is the type tag identity envelopes must carry.
const IdentityMessageType = "studio.identity"

// supportedAPIRange is the backend API version range this shell understands.
const supportedAPIRange = ">= 1.0.0, < 3.0.0"

// IdentityState tracks the bridge lifecycle.
type IdentityState string

// Identity bridge states.
const (
	IdentityUninitialized IdentityState = "uninitialized"
	IdentityAwaiting      IdentityState = "awaiting_identity"
	IdentityTokenMinted   IdentityState = "token_minted"
	IdentityNone          IdentityState = "no_identity"
)

// IdentityService is the identity bridge. Envelope verification is exposed
// directly (HandleEnvelope) so the trust boundary is unit-testable with
// synthetic events.
type IdentityService struct {
	initialized bool
	ctx         studiotypes.Context
	source      IdentitySource
	allowed     map[string]bool

	mu    sync.Mutex
	state IdentityState

	ready     chan struct{}
	readyOnce sync.Once

	// api is resolved from the registry; tests may set it directly.
	api *APIClientService

	logger *log.Logger
}

// NewIdentityService creates an identity bridge fed by the given source.
// A nil source means the shell is not embedded; the bridge resolves ready
// immediately with empty identity.
func NewIdentityService(source IdentitySource) *IdentityService {
	return &IdentityService{
		source: source,
		state:  IdentityUninitialized,
		ready:  make(chan struct{}),
	}
}

// Name returns the service name "identity" for registration.
func (s *IdentityService) Name() string {
	return "identity"
}

// Initialize loads the origin allow-list and starts consuming envelopes.
func (s *IdentityService) Initialize(ctx studiotypes.Context) error {
	s.ctx = ctx
	s.logger = logger.NewStyledLogger("Identity")

	s.allowed = make(map[string]bool)
	if raw, ok := ctx.GetConfigValue(studioctx.ConfigKeyAllowedOrigins); ok {
		for _, origin := range strings.Split(raw, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				s.allowed[origin] = true
			}
		}
	}

	s.initialized = true

	if s.source == nil {
		// Not embedded: unauthenticated posture, ready fires at once.
		s.setState(IdentityNone)
		s.markReady()
		return nil
	}

	s.setState(IdentityAwaiting)
	go s.listen()
	return nil
}

// Ready returns a channel that closes exactly once, with whatever identity
// state is available by then (including none). Callers that need the token
// before authenticated calls wait on it; everyone else proceeds immediately.
func (s *IdentityService) Ready() <-chan struct{} {
	return s.ready
}

// State returns the current bridge state.
func (s *IdentityService) State() IdentityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleEnvelope verifies and processes one identity envelope. It returns
// true only when the envelope passed the trust boundary. Everything else is
// silently discarded.
func (s *IdentityService) HandleEnvelope(env IdentityEnvelope) bool {
	if !s.initialized {
		return false
	}
	if env.Type != IdentityMessageType {
		return false
	}
	if !s.allowed[env.Origin] {
		s.logger.Debug("Discarding identity message from unlisted origin", "origin", env.Origin)
		return false
	}
	if env.UserID == "" {
		return false
	}

	// Re-identification with the same user and a live token is a no-op,
	// avoiding token churn.
	if _, ok := s.ctx.AuthToken(); ok && s.ctx.IdentityUser() == env.UserID {
		s.markReady()
		return true
	}

	s.mint(env.UserID)
	return true
}

func (s *IdentityService) listen() {
	for env := range s.source.Envelopes() {
		s.HandleEnvelope(env)
	}
	// Source exhausted without a successful handshake: degrade gracefully.
	s.mu.Lock()
	if s.state == IdentityAwaiting {
		s.state = IdentityNone
	}
	s.mu.Unlock()
	s.markReady()
}

// mint exchanges a user identifier for a signed, time-limited token. The
// token and expiry live in volatile memory only. Failures are swallowed; the
// shell degrades to the unauthenticated posture rather than blocking.
func (s *IdentityService) mint(userID string) {
	api, err := s.apiClient()
	if err != nil {
		s.logger.Warn("Identity mint unavailable", "error", err)
		s.setState(IdentityNone)
		s.markReady()
		return
	}

	result, err := api.SendJSON("/auth/mint", map[string]any{"user_id": userID})
	if err != nil {
		s.logger.Warn("Identity mint failed", "error", err)
		s.setState(IdentityNone)
		s.markReady()
		return
	}

	token := result.Field("token").String()
	if token == "" {
		s.logger.Warn("Identity mint returned no token")
		s.setState(IdentityNone)
		s.markReady()
		return
	}

	s.ctx.SetAuthToken(token, tokenExpiry(token, result))
	s.ctx.SetIdentityUser(userID)
	s.setState(IdentityTokenMinted)
	s.checkAPIVersion(result)
	s.logger.Debug("Identity token minted", "user", userID)
	s.markReady()
}

// tokenExpiry reads the expiry from the token's exp claim, falling back to
// the mint response's exp field (unix seconds), then to no expiry.
func tokenExpiry(token string, result *APIResult) time.Time {
	parser := jwt.NewParser()
	if parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{}); err == nil {
		if expiresAt, err := parsed.Claims.GetExpirationTime(); err == nil && expiresAt != nil {
			return expiresAt.Time
		}
	}

	if exp := result.Field("exp"); exp.Exists() && exp.Int() > 0 {
		return time.Unix(exp.Int(), 0)
	}
	return time.Time{}
}

// checkAPIVersion warns when the backend reports a version outside the range
// this shell supports. Advisory only.
func (s *IdentityService) checkAPIVersion(result *APIResult) {
	reported := result.Field("api_version").String()
	if reported == "" {
		return
	}

	version, err := semver.NewVersion(reported)
	if err != nil {
		return
	}
	supported, err := semver.NewConstraint(supportedAPIRange)
	if err != nil {
		return
	}
	if !supported.Check(version) {
		s.logger.Warn("Backend API version outside supported range",
			"reported", reported, "supported", supportedAPIRange)
	}
}

func (s *IdentityService) apiClient() (*APIClientService, error) {
	if s.api != nil {
		return s.api, nil
	}
	svc, err := GetGlobalRegistry().GetService("api_client")
	if err != nil {
		return nil, err
	}
	api, ok := svc.(*APIClientService)
	if !ok {
		return nil, ErrEndpointUnavailable
	}
	return api, nil
}

func (s *IdentityService) setState(state IdentityState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *IdentityService) markReady() {
	s.readyOnce.Do(func() {
		close(s.ready)
	})
}
