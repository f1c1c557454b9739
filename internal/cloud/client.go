// Package cloud is the transport client for the remote sync service: a
// vendor-neutral REST API offering identity, per-user game documents and
// cover blob storage. Backends in internal/auth, internal/games and
// internal/images are thin adapters over this client.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gameshelf/internal/apperr"
	"gameshelf/internal/config"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
	logger  zerolog.Logger

	tokenMu sync.RWMutex
	idToken string
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.CloudBaseURL,
		apiKey:  cfg.CloudAPIKey,
		logger:  logger,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// SetToken installs the bearer token used by document and blob requests.
// The remote auth backend owns the token lifecycle.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	c.idToken = token
}

func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.idToken
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// mapError translates the service's error codes into the taxonomy. Any
// unrecognised failure is wrapped, never surfaced raw.
func mapError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	switch eb.Error.Message {
	case "EMAIL_EXISTS":
		return apperr.ErrEmailInUse
	case "WEAK_PASSWORD":
		return apperr.ErrWeakPassword
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD", "EMAIL_NOT_FOUND",
		"USER_NOT_FOUND", "INVALID_ID_TOKEN", "TOKEN_EXPIRED":
		return apperr.ErrInvalidCredentials
	}
	if eb.Error.Message != "" {
		return fmt.Errorf("cloud service error %d: %s", status, eb.Error.Message)
	}
	return fmt.Errorf("cloud service error %d", status)
}

func do(ctx context.Context, c *Client, method, path string, body []byte, contentType string, authorized bool) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("X-Api-Key", c.apiKey)
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.token())
	}
	if body != nil {
		req.SetBody(body)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("cloud request failed: %w", err)
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return resp.StatusCode(), out, nil
}

// doJSON sends an optional JSON body and decodes a JSON response into T.
func doJSON[T any](ctx context.Context, c *Client, method, path string, payload any, authorized bool) (*T, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	status, respBody, err := do(ctx, c, method, path, body, "application/json", authorized)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, mapError(status, respBody)
	}

	var result T
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to decode cloud response: %w", err)
		}
	}
	return &result, nil
}

// ---- identity ----

type Credentials struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	return doJSON[Credentials](ctx, c, fasthttp.MethodPost, "/v1/accounts:signUp", map[string]string{
		"email":    email,
		"password": password,
	}, false)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	return doJSON[Credentials](ctx, c, fasthttp.MethodPost, "/v1/accounts:signInWithPassword", map[string]string{
		"email":    email,
		"password": password,
	}, false)
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	_, err := doJSON[struct{}](ctx, c, fasthttp.MethodPost, "/v1/accounts:sendOobCode", map[string]string{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, false)
	return err
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

// Lookup resolves the identity behind the installed token.
func (c *Client) Lookup(ctx context.Context) (id, email string, err error) {
	resp, err := doJSON[lookupResponse](ctx, c, fasthttp.MethodPost, "/v1/accounts:lookup", nil, true)
	if err != nil {
		return "", "", err
	}
	if len(resp.Users) == 0 {
		return "", "", apperr.ErrInvalidCredentials
	}
	return resp.Users[0].LocalID, resp.Users[0].Email, nil
}

func (c *Client) UpdateEmail(ctx context.Context, newEmail string) (*Credentials, error) {
	return doJSON[Credentials](ctx, c, fasthttp.MethodPost, "/v1/accounts:update", map[string]string{
		"email": newEmail,
	}, true)
}

func (c *Client) UpdatePassword(ctx context.Context, newPassword string) (*Credentials, error) {
	return doJSON[Credentials](ctx, c, fasthttp.MethodPost, "/v1/accounts:update", map[string]string{
		"password": newPassword,
	}, true)
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	_, err := doJSON[struct{}](ctx, c, fasthttp.MethodPost, "/v1/accounts:delete", nil, true)
	return err
}

// ---- game documents ----

// GameDoc is the wire form of one game document. Readers tolerate missing
// or extra fields; status is validated by the repository adapter.
type GameDoc struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
	Rating    int       `json:"rating"`
	Notes     string    `json:"notes"`
	CoverPath *string   `json:"coverPath"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type gameListResponse struct {
	Items []GameDoc `json:"items"`
}

func (c *Client) ListGames(ctx context.Context, userID string) ([]GameDoc, error) {
	resp, err := doJSON[gameListResponse](ctx, c, fasthttp.MethodGet, "/v1/users/"+userID+"/games", nil, true)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) PutGame(ctx context.Context, userID string, doc GameDoc) error {
	_, err := doJSON[struct{}](ctx, c, fasthttp.MethodPut, "/v1/users/"+userID+"/games/"+doc.ID, doc, true)
	return err
}

func (c *Client) DeleteGame(ctx context.Context, userID, gameID string) error {
	status, body, err := do(ctx, c, fasthttp.MethodDelete, "/v1/users/"+userID+"/games/"+gameID, nil, "", true)
	if err != nil {
		return err
	}
	// Deleting an absent document is a no-op, not a failure.
	if status == fasthttp.StatusNotFound {
		return nil
	}
	if status < 200 || status > 299 {
		return mapError(status, body)
	}
	return nil
}

func (c *Client) WipeGames(ctx context.Context, userID string) error {
	_, err := doJSON[struct{}](ctx, c, fasthttp.MethodDelete, "/v1/users/"+userID+"/games", nil, true)
	return err
}

// ---- cover blobs ----

type BlobRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// UploadCover stores the blob under users/{userId}/covers/{name} and
// returns its durable URL alongside the storage path.
func (c *Client) UploadCover(ctx context.Context, userID, name string, data []byte) (*BlobRef, error) {
	status, body, err := do(ctx, c, fasthttp.MethodPost, "/v1/users/"+userID+"/covers/"+name, data, "image/jpeg", true)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, mapError(status, body)
	}

	var ref BlobRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &ref, nil
}

// DeleteBlob removes the blob at the given storage path. Absent blobs are
// treated as already deleted.
func (c *Client) DeleteBlob(ctx context.Context, path string) error {
	status, body, err := do(ctx, c, fasthttp.MethodDelete, "/v1/blobs/"+path, nil, "", true)
	if err != nil {
		return err
	}
	if status == fasthttp.StatusNotFound {
		return nil
	}
	if status < 200 || status > 299 {
		return mapError(status, body)
	}
	return nil
}
