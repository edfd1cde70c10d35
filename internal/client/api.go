package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tareas/internal/models"

	"github.com/gofrs/uuid"
	"golang.org/x/oauth2"
)

// API is the subset of the tareas REST API the controller drives.
type API interface {
	Register(ctx context.Context, name, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Me(ctx context.Context) (models.Profile, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task NewTask) (models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type AuthResult struct {
	Token     string         `json:"token"`
	TokenType string         `json:"token_type"`
	ExpiresIn int64          `json:"expires_in"`
	User      models.Profile `json:"user"`
}

type NewTask struct {
	Titulo      string  `json:"titulo"`
	Descripcion *string `json:"descripcion,omitempty"`
}

// TaskUpdate only sends the fields that are set. ClearDescripcion sends an
// explicit null.
type TaskUpdate struct {
	Titulo           *string
	Descripcion      *string
	ClearDescripcion bool
	Estado           *models.TaskStatus
}

func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{})
	if u.Titulo != nil {
		body["titulo"] = *u.Titulo
	}
	if u.ClearDescripcion {
		body["descripcion"] = nil
	} else if u.Descripcion != nil {
		body["descripcion"] = *u.Descripcion
	}
	if u.Estado != nil {
		body["estado"] = string(*u.Estado)
	}
	return json.Marshal(body)
}

// HTTPClient talks to the API. Authenticated calls carry the session token
// through an oauth2 transport.
type HTTPClient struct {
	baseURL string
	public  *http.Client
	authed  *http.Client
}

var _ API = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, session *Session, timeout time.Duration) *HTTPClient {
	return NewHTTPClientWithTransport(baseURL, session, timeout, http.DefaultTransport)
}

func NewHTTPClientWithTransport(baseURL string, session *Session, timeout time.Duration, base http.RoundTripper) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		public:  &http.Client{Timeout: timeout, Transport: base},
		authed: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: session, Base: base},
		},
	}
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	var result AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	err := c.do(ctx, c.public, http.MethodPost, "/register", body, &result)
	return result, err
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, c.public, http.MethodPost, "/login", body, &result)
	return result, err
}

func (c *HTTPClient) Me(ctx context.Context) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, c.authed, http.MethodGet, "/me", nil, &profile)
	return profile, err
}

func (c *HTTPClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	err := c.do(ctx, c.authed, http.MethodGet, "/tareas", nil, &tasks)
	return tasks, err
}

func (c *HTTPClient) CreateTask(ctx context.Context, task NewTask) (models.Task, error) {
	var created models.Task
	err := c.do(ctx, c.authed, http.MethodPost, "/tareas", task, &created)
	return created, err
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (models.Task, error) {
	var updated models.Task
	err := c.do(ctx, c.authed, http.MethodPut, "/tareas/"+id.String(), update, &updated)
	return updated, err
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, c.authed, http.MethodDelete, "/tareas/"+id.String(), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return &APIError{Kind: KindTransport, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode, Message: "unexpected response body", Err: err}
	}
	return nil
}

func decodeError(status int, data []byte) *APIError {
	var body struct {
		Error   string              `json:"error"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(data, &body)

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &APIError{
		Kind:    kindForStatus(status),
		Status:  status,
		Message: message,
		Fields:  body.Errors,
	}
}
