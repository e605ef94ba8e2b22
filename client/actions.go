package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"whisk-action-client/models"
)

// CreateActionInput describes a new action. Exec is required; everything
// else is optional.
type CreateActionInput struct {
	Name       string
	Namespace  string
	Exec       *models.Exec
	Parameters models.Parameters
	Limits     *models.Limits
	Publish    bool
}

// UpdateActionInput carries a partial update. Nil fields leave the remote
// value unchanged; Parameters are merged over the existing list rather than
// replacing it.
type UpdateActionInput struct {
	Name       string
	Namespace  string
	Exec       *models.Exec
	Parameters models.Parameters
	Limits     *models.Limits
	Publish    *bool
}

// List returns every action in the namespace, fully materialized. Each
// summary's namespace equals the resolved query namespace.
func (c *Client) List(ctx context.Context, namespace string) ([]models.ActionSummary, error) {
	ns := c.namespaceOr(namespace)
	var summaries []models.ActionSummary
	if _, err := c.do(ctx, http.MethodGet, actionsPath(ns), nil, nil, &summaries, c.cfg.Timeout); err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.ActionSummary{}
	}
	return summaries, nil
}

// Get fetches one action; ErrNotFound when it does not exist.
func (c *Client) Get(ctx context.Context, name, namespace string) (*models.Action, error) {
	ref, err := c.resolveName(name, namespace)
	if err != nil {
		return nil, err
	}
	var action models.Action
	if _, err := c.do(ctx, http.MethodGet, ref.path(), nil, nil, &action, c.cfg.Timeout); err != nil {
		return nil, err
	}
	return &action, nil
}

// Create registers a new action. There is no implicit overwrite: an
// existing action with the same name yields ErrConflict.
func (c *Client) Create(ctx context.Context, in CreateActionInput) (*models.Action, error) {
	ref, err := c.resolveName(in.Name, in.Namespace)
	if err != nil {
		return nil, err
	}
	if in.Exec == nil {
		return nil, fmt.Errorf("create %s: executable representation is required: %w", in.Name, ErrInvalidPayload)
	}

	body := models.Action{
		Namespace:  ref.namespace,
		Name:       ref.name,
		Exec:       in.Exec,
		Parameters: in.Parameters,
		Limits:     in.Limits,
		Publish:    in.Publish,
	}
	query := url.Values{"overwrite": []string{"false"}}

	var created models.Action
	if _, err := c.do(ctx, http.MethodPut, ref.path(), query, &body, &created, c.cfg.Timeout); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update to an existing action. It fetches the
// current record first, both because an update must never create and
// because the parameter merge and field preservation need the prior
// version. The read-modify-write is not atomic; a concurrent writer wins
// by last PUT.
func (c *Client) Update(ctx context.Context, in UpdateActionInput) (*models.Action, error) {
	ref, err := c.resolveName(in.Name, in.Namespace)
	if err != nil {
		return nil, err
	}
	existing, err := c.Get(ctx, in.Name, in.Namespace)
	if err != nil {
		return nil, err
	}

	body := *existing
	if in.Exec != nil {
		body.Exec = in.Exec
	}
	if in.Limits != nil {
		body.Limits = in.Limits
	}
	if in.Publish != nil {
		body.Publish = *in.Publish
	}
	body.Parameters = models.MergeParameters(existing.Parameters, in.Parameters)

	query := url.Values{"overwrite": []string{"true"}}
	var updated models.Action
	if _, err := c.do(ctx, http.MethodPut, ref.path(), query, &body, &updated, c.cfg.Timeout); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an action. Deleting an already-deleted action yields
// ErrNotFound; callers wanting idempotence catch that error themselves.
func (c *Client) Delete(ctx context.Context, name, namespace string) error {
	ref, err := c.resolveName(name, namespace)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, ref.path(), nil, nil, nil, c.cfg.Timeout)
	return err
}
