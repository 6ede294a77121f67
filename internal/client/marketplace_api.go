package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fixmate/go_booking/internal/models"
)

// FallbackMessage is shown when a call fails before a structured error is
// available (network failure, unreadable response).
const FallbackMessage = "Something went wrong. Please try again."

// MarketplaceClient handles communication with the upstream marketplace API
type MarketplaceClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewMarketplaceClient creates a new marketplace API client
func NewMarketplaceClient(baseURL, token string, timeout time.Duration) *MarketplaceClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &MarketplaceClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do executes a request and decodes the response envelope. Transport-level
// failures return an UpstreamError carrying the generic fallback message;
// HTTP-level responses are returned for outcome normalization whatever
// their status code.
func (c *MarketplaceClient) do(ctx context.Context, method, path string, payload any) (*envelope, int, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, models.NewUpstreamError(0, FallbackMessage, false, err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, models.NewUpstreamError(0, FallbackMessage, false, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, models.NewUpstreamError(0, FallbackMessage, true, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, models.NewUpstreamError(resp.StatusCode, FallbackMessage, true, err)
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		// no structured error to surface
		return nil, resp.StatusCode, models.NewUpstreamError(resp.StatusCode, FallbackMessage, true, err)
	}

	return &env, resp.StatusCode, nil
}

// GetLead fetches the current state of a lead.
func (c *MarketplaceClient) GetLead(ctx context.Context, leadID int64) (*models.Lead, error) {
	env, statusCode, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/partner/leads/%d", leadID), nil)
	if err != nil {
		return nil, err
	}

	if out := env.outcome(flagStatus); !out.OK {
		return nil, models.NewUpstreamError(statusCode, out.Message, false, nil)
	}

	var lead models.Lead
	if err := json.Unmarshal(env.Data, &lead); err != nil {
		return nil, models.NewUpstreamError(statusCode, FallbackMessage, true, err)
	}

	return &lead, nil
}

// ListLeads fetches the leads currently visible to the partner.
func (c *MarketplaceClient) ListLeads(ctx context.Context) ([]models.Lead, error) {
	env, statusCode, err := c.do(ctx, http.MethodGet, "/partner/leads", nil)
	if err != nil {
		return nil, err
	}

	if out := env.outcome(flagStatus); !out.OK {
		return nil, models.NewUpstreamError(statusCode, out.Message, false, nil)
	}

	var leads []models.Lead
	if err := json.Unmarshal(env.Data, &leads); err != nil {
		return nil, models.NewUpstreamError(statusCode, FallbackMessage, true, err)
	}

	return leads, nil
}

// AcceptLead accepts a lead on behalf of the partner. No payload; success
// is signalled by the "status" flag.
func (c *MarketplaceClient) AcceptLead(ctx context.Context, leadID int64) (Outcome, int, error) {
	env, statusCode, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/partner/leads/%d/accept", leadID), nil)
	if err != nil {
		return Outcome{Message: FallbackMessage}, statusCode, err
	}
	return env.outcome(flagStatus), statusCode, nil
}

// CancelLead cancels the partner's acceptance of a lead.
func (c *MarketplaceClient) CancelLead(ctx context.Context, leadID int64) (Outcome, int, error) {
	env, statusCode, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/partner/leads/%d/cancel", leadID), nil)
	if err != nil {
		return Outcome{Message: FallbackMessage}, statusCode, err
	}
	return env.outcome(flagStatus), statusCode, nil
}

// CompleteLead submits a validated completion request. This endpoint is
// the one that signals success through the "success" flag instead of
// "status".
func (c *MarketplaceClient) CompleteLead(ctx context.Context, leadID int64, req models.CompleteLeadRequest) (Outcome, int, error) {
	env, statusCode, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/partner/leads/%d/complete", leadID), req)
	if err != nil {
		return Outcome{Message: FallbackMessage}, statusCode, err
	}
	return env.outcome(flagSuccess), statusCode, nil
}

// GetOrder fetches the current state of a customer order.
func (c *MarketplaceClient) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	env, statusCode, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/customer/orders/%d", orderID), nil)
	if err != nil {
		return nil, err
	}

	if out := env.outcome(flagStatus); !out.OK {
		return nil, models.NewUpstreamError(statusCode, out.Message, false, nil)
	}

	var order models.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, models.NewUpstreamError(statusCode, FallbackMessage, true, err)
	}

	return &order, nil
}

// CancelOrder cancels a customer order.
func (c *MarketplaceClient) CancelOrder(ctx context.Context, orderID int64) (Outcome, int, error) {
	env, statusCode, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/customer/orders/%d/cancel", orderID), nil)
	if err != nil {
		return Outcome{Message: FallbackMessage}, statusCode, err
	}
	return env.outcome(flagStatus), statusCode, nil
}

// RescheduleOrder moves a customer order to a new date and slot.
func (c *MarketplaceClient) RescheduleOrder(ctx context.Context, orderID int64, req models.RescheduleRequest) (Outcome, int, error) {
	env, statusCode, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/customer/orders/%d/reschedule", orderID), req)
	if err != nil {
		return Outcome{Message: FallbackMessage}, statusCode, err
	}
	return env.outcome(flagStatus), statusCode, nil
}

// GetEarnings fetches the settled ledger entries for a partner.
func (c *MarketplaceClient) GetEarnings(ctx context.Context, partnerID int64) ([]models.EarningEntry, error) {
	env, statusCode, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/partner/%d/earnings", partnerID), nil)
	if err != nil {
		return nil, err
	}

	if out := env.outcome(flagStatus); !out.OK {
		return nil, models.NewUpstreamError(statusCode, out.Message, false, nil)
	}

	var entries []models.EarningEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		return nil, models.NewUpstreamError(statusCode, FallbackMessage, true, err)
	}

	return entries, nil
}
