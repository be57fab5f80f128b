package main

import (
	"context"
	"fmt"
	"time"

	"wanderly/models"
	"wanderly/utils"

	"github.com/go-resty/resty/v2"
)

// apiClient talks to the wanderly HTTP API.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL, token string, timeout time.Duration) *apiClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &apiClient{http: c}
}

// check turns a non-2xx response into an error carrying the server's message.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	if e, ok := resp.Error().(*utils.ErrorResponse); ok && e.Message != "" {
		if e.Details != "" {
			return fmt.Errorf("%s (%d): %s", e.Message, resp.StatusCode(), e.Details)
		}
		return fmt.Errorf("%s (%d)", e.Message, resp.StatusCode())
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
}

func (c *apiClient) Chat(ctx context.Context, threadID, message string) (*models.ChatResponse, error) {
	var out models.ChatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.ChatRequest{ThreadID: threadID, Message: message}).
		SetResult(&out).
		SetError(&utils.ErrorResponse{}).
		Post("/api/agent/chat")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Pay(ctx context.Context, req models.PaymentCallbackRequest) (*models.ChatResponse, error) {
	var out models.ChatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&utils.ErrorResponse{}).
		Post("/api/payments/callback")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) State(ctx context.Context, threadID string) (*models.TravelState, error) {
	var out models.TravelState
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("thread", threadID).
		SetResult(&out).
		SetError(&utils.ErrorResponse{}).
		Get("/api/agent/state/{thread}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Reset(ctx context.Context, threadID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("thread", threadID).
		SetError(&utils.ErrorResponse{}).
		Delete("/api/agent/state/{thread}")
	return check(resp, err)
}

func (c *apiClient) Graph(ctx context.Context) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/api/agent/graph")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return resp.String(), nil
}

type ordersResponse struct {
	ThreadID string         `json:"thread_id"`
	Orders   []models.Order `json:"orders"`
}

func (c *apiClient) Orders(ctx context.Context, threadID string) ([]models.Order, error) {
	var out ordersResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("thread", threadID).
		SetResult(&out).
		SetError(&utils.ErrorResponse{}).
		Get("/api/agent/orders/{thread}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out.Orders, nil
}
