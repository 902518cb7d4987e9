// Package api talks to the question/answer backend over its JSON HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/jrsteele09/go-qa-web/internal/errors"
	"github.com/jrsteele09/go-qa-web/page"
	"github.com/jrsteele09/go-qa-web/session"
	"golang.org/x/oauth2"
)

const (
	pathLogin     = "/auth/login"
	pathRefresh   = "/auth/refresh"
	pathQuestions = "/questions"

	maxErrorBody = 4 << 10
)

// Client is the backend API client
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ session.AuthAPI = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// LoginUser exchanges credentials for a token pair
func (c *Client) LoginUser(ctx context.Context, creds session.Credentials) (session.LoginResponse, error) {
	var resp session.LoginResponse
	if err := c.postJSON(ctx, c.httpClient, pathLogin, creds, &resp); err != nil {
		return session.LoginResponse{}, fmt.Errorf("[Client LoginUser] %w", err)
	}
	return resp, nil
}

// RefreshToken exchanges a refresh token for a new access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (session.RefreshResponse, error) {
	var resp session.RefreshResponse
	if err := c.postJSON(ctx, c.httpClient, pathRefresh, refreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return session.RefreshResponse{}, fmt.Errorf("[Client RefreshToken] %w", err)
	}
	return resp, nil
}

// ListQuestions fetches the questions of a home page tab. An empty accessToken
// sends the request anonymously.
func (c *Client) ListQuestions(ctx context.Context, accessToken string, tab page.Tab) ([]page.Question, error) {
	endpoint := c.baseURL + pathQuestions + "?" + url.Values{"tab": {tab.String()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("[Client ListQuestions] %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var questions []page.Question
	if err := c.do(c.authorized(ctx, accessToken), req, &questions); err != nil {
		return nil, fmt.Errorf("[Client ListQuestions] %w", err)
	}
	return questions, nil
}

// QuestionSource binds the client to one access token for the home page
func (c *Client) QuestionSource(accessToken string) page.QuestionSource {
	return questionSource{client: c, accessToken: accessToken}
}

type questionSource struct {
	client      *Client
	accessToken string
}

func (s questionSource) Questions(ctx context.Context, tab page.Tab) ([]page.Question, error) {
	return s.client.ListQuestions(ctx, s.accessToken, tab)
}

// authorized wraps the base client so every request carries the bearer token
func (c *Client) authorized(ctx context.Context, accessToken string) *http.Client {
	if accessToken == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = c.httpClient.Timeout
	return client
}

func (c *Client) postJSON(ctx context.Context, client *http.Client, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.Wrapf(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(client, req, out)
}

func (c *Client) do(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, "%s %s %w", req.Method, req.URL.Path, apperrors.ErrRequestFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Method: req.Method, Path: req.URL.Path, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, "%s %s %w: decode response", req.Method, req.URL.Path, apperrors.ErrRequestFailed)
	}
	return nil
}
