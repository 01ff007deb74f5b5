package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httpclient "authportal/internal/cli/http"
	pkgerrors "authportal/pkg/errors"
	"authportal/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	PathLogin    = "/api/login"
	PathRegister = "/api/register"
	PathUser     = "/api/user"
)

// Doer sends JSON requests. *httpclient.Client satisfies it.
type Doer interface {
	DoJSON(ctx context.Context, method, path string, headers map[string]string, payload interface{}) (httpclient.ResponseInfo, error)
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/register. The capitalized
// Username key is what the server expects.
type RegisterRequest struct {
	Username string `json:"Username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Reply is a parsed JSON response of any status.
type Reply struct {
	StatusCode int
	RequestID  string
	Message    string
	Token      string
	HasToken   bool
	Body       map[string]interface{}
}

// OK reports a 2xx status.
func (r Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Failure returns a remote error for a non-2xx reply, using the body's
// message or fallback. It returns nil for a 2xx reply.
func (r Reply) Failure(fallback string) error {
	if r.OK() {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = fallback
	}
	return pkgerrors.RemoteError(r.StatusCode, msg)
}

// UserProfile is the body of GET /api/user.
type UserProfile struct {
	Username string
	Fields   map[string]interface{}
}

// Client is the typed auth API.
type Client struct {
	http Doer
}

func New(doer Doer) *Client {
	return &Client{http: doer}
}

// Login posts credentials. The returned error is always a network error;
// remote rejections come back as a Reply with a non-2xx status.
func (c *Client) Login(ctx context.Context, req LoginRequest) (Reply, error) {
	return c.post(ctx, PathLogin, req)
}

// Register posts a new account. Error semantics match Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Reply, error) {
	return c.post(ctx, PathRegister, req)
}

// Profile fetches the current user with the given bearer token. An empty
// token is still sent; the server is expected to reject it.
func (c *Client) Profile(ctx context.Context, token string) (UserProfile, error) {
	headers := map[string]string{"Authorization": "Bearer " + token}
	resp, err := c.http.DoJSON(ctx, http.MethodGet, PathUser, headers, nil)
	if err != nil {
		return UserProfile{}, pkgerrors.NetworkError(err)
	}
	ctx = logger.WithRequestID(ctx, resp.RequestID)
	if !resp.OK() {
		logger.Warn(ctx, "profile fetch rejected", zap.Int("status", resp.StatusCode))
		return UserProfile{}, pkgerrors.RemoteError(resp.StatusCode, "Failed to fetch user data")
	}
	body, err := decodeBody(resp.Body)
	if err != nil {
		return UserProfile{}, err
	}
	profile := UserProfile{Fields: body}
	if raw, ok := body["Username"]; ok && raw != nil {
		profile.Username = fmt.Sprint(raw)
	}
	return profile, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (Reply, error) {
	resp, err := c.http.DoJSON(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return Reply{}, pkgerrors.NetworkError(err)
	}
	ctx = logger.WithRequestID(ctx, resp.RequestID)
	body, err := decodeBody(resp.Body)
	if err != nil {
		logger.Warn(ctx, "undecodable response", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return Reply{StatusCode: resp.StatusCode, RequestID: resp.RequestID}, err
	}
	reply := Reply{
		StatusCode: resp.StatusCode,
		RequestID:  resp.RequestID,
		Body:       body,
	}
	reply.Message, _ = body["message"].(string)
	if raw, ok := body["token"]; ok && raw != nil {
		reply.HasToken = true
		reply.Token = fmt.Sprint(raw)
	}
	return reply, nil
}

func decodeBody(data []byte) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, pkgerrors.Wrapf(err, pkgerrors.MalformedResponse, "malformed response: %v", err)
	}
	return body, nil
}
