package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/joaovasc10/bora/helpers"
	"github.com/joaovasc10/bora/interfaces"
	"github.com/joaovasc10/bora/types"
)

// tokenPair matches dj-rest-auth / simplejwt responses, which spell the
// keys differently between login and refresh.
type tokenPair struct {
	Access       string      `json:"access"`
	AccessToken  string      `json:"access_token"`
	Refresh      string      `json:"refresh"`
	RefreshToken string      `json:"refresh_token"`
	User         *types.User `json:"user"`
}

func (t *tokenPair) access() string {
	if t.AccessToken != "" {
		return t.AccessToken
	}
	return t.Access
}

func (t *tokenPair) refresh() string {
	if t.RefreshToken != "" {
		return t.RefreshToken
	}
	return t.Refresh
}

// SessionService owns the auth token pair and the authenticated-request
// contract: bearer attach plus a single transparent refresh-and-retry on a
// 401. The session is persisted through the store on every change.
type SessionService struct {
	baseUrl string
	client  *http.Client
	store   interfaces.SessionStoreInterface

	mu      sync.Mutex
	session *types.Session

	// OnAuthChange, when set, is called after login, logout and a failed
	// refresh. The app wires it to the auth-login / auth-logout signals.
	OnAuthChange func(loggedIn bool, user *types.User)
}

func NewSessionService(baseUrl string, store interfaces.SessionStoreInterface) *SessionService {
	s := &SessionService{
		baseUrl: baseUrl,
		client:  &http.Client{Timeout: 15 * time.Second},
		store:   store,
		session: &types.Session{},
	}
	if store != nil {
		if loaded, err := store.Load(); err == nil && loaded != nil {
			s.session = loaded
		} else if err != nil {
			log.Printf("Error loading persisted session: %v", err)
		}
	}
	return s
}

func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsAuthenticated()
}

func (s *SessionService) CurrentUser() *types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.CurrentUser
}

func (s *SessionService) tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.AccessToken, s.session.RefreshToken
}

func (s *SessionService) setSession(session *types.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Save(session); err != nil {
			log.Printf("Error persisting session: %v", err)
		}
	}
}

func (s *SessionService) clearSession() {
	s.setSession(&types.Session{})
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			log.Printf("Error clearing persisted session: %v", err)
		}
	}
}

// accessTokenExpired inspects the JWT exp claim without verifying the
// signature; verification is the backend's job. Unparseable tokens are
// treated as expired so the refresh path decides.
func accessTokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return true
	}
	// checks 10s ahead to avoid racing the expiry; tokens without an exp
	// claim pass
	return !claims.VerifyExpiresAt(time.Now().Add(10*time.Second).Unix(), false)
}

// AuthenticatedRequest issues the request with the bearer token attached.
// On a 401 it performs exactly one refresh, retries the original request
// once with the new token, and on refresh failure clears the session. The
// body is a byte slice so the retry can resend it. An empty contentType
// leaves the header unset (multipart bodies carry their own).
func (s *SessionService) AuthenticatedRequest(ctx context.Context, method, requestUrl string, body []byte, contentType string) (*http.Response, error) {
	access, refresh := s.tokens()

	if access != "" && accessTokenExpired(access) && refresh != "" {
		if s.Refresh(ctx) {
			access, _ = s.tokens()
		}
	}

	resp, err := s.doRequest(ctx, method, requestUrl, body, contentType, access)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || refresh == "" {
		return resp, nil
	}

	if !s.Refresh(ctx) {
		s.clearSession()
		if s.OnAuthChange != nil {
			s.OnAuthChange(false, nil)
		}
		// surfaced as a normal failed response, not a distinct error type
		return resp, nil
	}
	resp.Body.Close()

	access, _ = s.tokens()
	return s.doRequest(ctx, method, requestUrl, body, contentType, access)
}

func (s *SessionService) doRequest(ctx context.Context, method, requestUrl string, body []byte, contentType, access string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestUrl, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	return s.client.Do(req)
}

// Refresh exchanges the refresh token for a new token pair. It returns
// false on any failure and never panics; the old refresh token is kept when
// the server does not rotate it.
func (s *SessionService) Refresh(ctx context.Context) bool {
	_, refresh := s.tokens()
	if refresh == "" {
		return false
	}

	payload, _ := json.Marshal(map[string]string{"refresh": refresh})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseUrl+helpers.REFRESH_PATH, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Error refreshing token: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var pair tokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		log.Printf("Error decoding refresh response: %v", err)
		return false
	}
	if pair.access() == "" {
		return false
	}

	newRefresh := pair.refresh()
	if newRefresh == "" {
		newRefresh = refresh
	}

	s.mu.Lock()
	user := s.session.CurrentUser
	s.mu.Unlock()
	s.setSession(&types.Session{
		AccessToken:  pair.access(),
		RefreshToken: newRefresh,
		CurrentUser:  user,
	})

	// best-effort current-user reload with the fresh token
	if u, err := s.fetchCurrentUser(ctx); err == nil {
		s.mu.Lock()
		s.session.CurrentUser = u
		session := s.session
		s.mu.Unlock()
		s.setSession(session)
	}
	return true
}

// Login exchanges credentials for a token pair and reloads the current
// user. The persisted session is replaced on success.
func (s *SessionService) Login(ctx context.Context, email, password string) (*types.User, error) {
	return s.obtainTokens(ctx, s.baseUrl+helpers.LOGIN_PATH, map[string]string{
		"email":    email,
		"password": password,
	})
}

func (s *SessionService) Register(ctx context.Context, email, password1, password2 string) (*types.User, error) {
	return s.obtainTokens(ctx, s.baseUrl+helpers.REGISTER_PATH, map[string]string{
		"email":     email,
		"password1": password1,
		"password2": password2,
	})
}

func (s *SessionService) obtainTokens(ctx context.Context, requestUrl string, credentials map[string]string) (*types.User, error) {
	payload, _ := json.Marshal(credentials)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestUrl, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending auth request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var fieldErrs map[string][]string
		if json.Unmarshal(rawBody, &fieldErrs) == nil && len(fieldErrs) > 0 {
			return nil, &types.ValidationError{Fields: fieldErrs}
		}
		return nil, fmt.Errorf("auth failed: %s", resp.Status)
	}

	var pair tokenPair
	if err := json.Unmarshal(rawBody, &pair); err != nil {
		return nil, fmt.Errorf("error decoding auth response: %w", err)
	}
	if pair.access() == "" {
		return nil, fmt.Errorf("auth response missing access token")
	}

	s.setSession(&types.Session{
		AccessToken:  pair.access(),
		RefreshToken: pair.refresh(),
		CurrentUser:  pair.User,
	})

	user := pair.User
	if user == nil {
		if fetched, err := s.fetchCurrentUser(ctx); err == nil {
			user = fetched
			s.mu.Lock()
			s.session.CurrentUser = user
			session := s.session
			s.mu.Unlock()
			s.setSession(session)
		}
	}

	if s.OnAuthChange != nil {
		s.OnAuthChange(true, user)
	}
	return user, nil
}

func (s *SessionService) fetchCurrentUser(ctx context.Context) (*types.User, error) {
	access, _ := s.tokens()
	resp, err := s.doRequest(ctx, http.MethodGet, s.baseUrl+helpers.ME_PATH, nil, "application/json", access)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("me endpoint returned %s", resp.Status)
	}
	var user types.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("error decoding current user: %w", err)
	}
	return &user, nil
}

// Logout invalidates the refresh token server-side (best effort, failures
// ignored) and clears the local session unconditionally.
func (s *SessionService) Logout(ctx context.Context) error {
	access, refresh := s.tokens()
	if refresh != "" {
		payload, _ := json.Marshal(map[string]string{"refresh": refresh})
		resp, err := s.doRequest(ctx, http.MethodPost, s.baseUrl+helpers.LOGOUT_PATH, payload, "application/json", access)
		if err != nil {
			log.Printf("Error invalidating refresh token (ignored): %v", err)
		} else {
			resp.Body.Close()
		}
	}

	s.clearSession()
	if s.OnAuthChange != nil {
		s.OnAuthChange(false, nil)
	}
	return nil
}
