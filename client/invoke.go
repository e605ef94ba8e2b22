package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"

	"whisk-action-client/models"
)

// InvokeInput describes one invocation of an action.
type InvokeInput struct {
	Name       string
	Namespace  string
	Parameters map[string]interface{}
	Blocking   bool
}

// Invoke submits an invocation. Non-blocking calls return a submitted
// result carrying only the activation ID. Blocking calls wait inside the
// server's wait window: a synchronous activation yields completed or
// failed (by the activation's success flag), while a window that elapses
// first yields timedout with the ID — a distinct outcome, not an error.
// Concurrent invocations are correlated solely by activation ID; no
// completion ordering is assumed.
func (c *Client) Invoke(ctx context.Context, in InvokeInput) (*models.InvocationResult, error) {
	ref, err := c.resolveName(in.Name, in.Namespace)
	if err != nil {
		return nil, err
	}

	params := in.Parameters
	if params == nil {
		params = map[string]interface{}{}
	}

	query := url.Values{}
	timeout := c.cfg.Timeout
	if in.Blocking {
		query.Set("blocking", "true")
		timeout = c.cfg.BlockingTimeout
	}

	status, raw, err := c.exchange(ctx, http.MethodPost, ref.path(), query, params, timeout)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusAccepted:
		var ack struct {
			ActivationID string `json:"activationId"`
		}
		if err := json.Unmarshal(raw, &ack); err != nil || ack.ActivationID == "" {
			return nil, fmt.Errorf("invoke %s: malformed submission ack: %w", in.Name, ErrTransport)
		}
		outcome := models.StatusSubmitted
		if in.Blocking {
			// The server wait window elapsed before the activation
			// finished; the ID lets the caller poll asynchronously.
			outcome = models.StatusTimedOut
		}
		return &models.InvocationResult{Status: outcome, ActivationID: ack.ActivationID}, nil

	case http.StatusOK, http.StatusBadGateway:
		// 502 carries the full activation when the action itself errored;
		// an application failure is an outcome, not a client error.
		var activation models.Activation
		if err := json.Unmarshal(raw, &activation); err != nil || activation.ActivationID == "" {
			if status == http.StatusOK {
				return nil, fmt.Errorf("invoke %s: malformed activation: %w", in.Name, ErrTransport)
			}
			return nil, statusError(http.MethodPost, ref.path(), status, remoteMessage(raw))
		}
		outcome := models.StatusCompleted
		if !activation.Response.Success {
			outcome = models.StatusFailed
		}
		return &models.InvocationResult{
			Status:       outcome,
			ActivationID: activation.ActivationID,
			Activation:   &activation,
		}, nil

	default:
		return nil, statusError(http.MethodPost, ref.path(), status, remoteMessage(raw))
	}
}

// GetActivation fetches one activation record by ID.
func (c *Client) GetActivation(ctx context.Context, id, namespace string) (*models.Activation, error) {
	ns := c.namespaceOr(namespace)
	var activation models.Activation
	if _, err := c.do(ctx, http.MethodGet, activationPath(ns, id), nil, nil, &activation, c.cfg.Timeout); err != nil {
		return nil, err
	}
	return &activation, nil
}

// PollActivation resolves an activation that is not recorded yet, retrying
// ErrNotFound with exponential backoff until the record appears or ctx
// ends. Every other error is surfaced immediately. This is the short-poll
// half of the blocking protocol, for callers holding a submitted or
// timedout result.
func (c *Client) PollActivation(ctx context.Context, id, namespace string) (*models.Activation, error) {
	var activation *models.Activation
	fetch := func() error {
		a, err := c.GetActivation(ctx, id, namespace)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		activation = a
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, err
	}
	return activation, nil
}
