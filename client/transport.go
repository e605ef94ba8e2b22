package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const apiBase = "/api/v1"

// Error bodies are bounded reads; the control plane is not trusted to keep
// them small.
const maxErrorBody = 4096

// actionRef is a resolved action reference: a namespace plus a bare or
// package-qualified entity name.
type actionRef struct {
	namespace string
	name      string
}

// resolveName accepts the three reference forms — "action",
// "package/action" and fully qualified "/namespace/package/action" — and
// routes them all through one path-construction rule. The fully qualified
// form overrides the per-call namespace.
func (c *Client) resolveName(name, namespace string) (actionRef, error) {
	ns := c.namespaceOr(namespace)
	entity := name
	if strings.HasPrefix(name, "/") {
		parts := strings.SplitN(strings.TrimPrefix(name, "/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return actionRef{}, fmt.Errorf("action reference %q: %w", name, ErrBadRequest)
		}
		ns = parts[0]
		entity = parts[1]
	}
	if entity == "" {
		return actionRef{}, fmt.Errorf("empty action name: %w", ErrBadRequest)
	}
	segments := strings.Split(entity, "/")
	if len(segments) > 2 {
		return actionRef{}, fmt.Errorf("action reference %q has too many segments: %w", name, ErrBadRequest)
	}
	for _, segment := range segments {
		if segment == "" {
			return actionRef{}, fmt.Errorf("action reference %q: %w", name, ErrBadRequest)
		}
	}
	return actionRef{namespace: ns, name: entity}, nil
}

// path returns the namespace-scoped resource path, escaping each segment.
func (r actionRef) path() string {
	segments := strings.Split(r.name, "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	return fmt.Sprintf("%s/namespaces/%s/actions/%s",
		apiBase, url.PathEscape(r.namespace), strings.Join(segments, "/"))
}

func actionsPath(namespace string) string {
	return fmt.Sprintf("%s/namespaces/%s/actions", apiBase, url.PathEscape(namespace))
}

func activationPath(namespace, id string) string {
	return fmt.Sprintf("%s/namespaces/%s/activations/%s",
		apiBase, url.PathEscape(namespace), url.PathEscape(id))
}

// exchange performs one HTTP round trip and returns the status code and raw
// body. Only network-level failures produce an error here; status mapping
// is the caller's (usually do's) concern. Nothing is retried.
func (c *Client) exchange(ctx context.Context, method, path string, query url.Values, body interface{}, timeout time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.SetBasicAuth(c.authUser, c.authSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(method, 0, elapsed)
		c.logger.Debug("control plane call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return 0, nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrTransport, err)
	}
	defer resp.Body.Close()

	c.metrics.observe(method, resp.StatusCode, elapsed)
	c.logger.Debug("control plane call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	limit := io.Reader(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		limit = io.LimitReader(resp.Body, maxErrorBody)
	}
	raw, err := io.ReadAll(limit)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%s %s: %w: %v", method, path, ErrTransport, err)
	}
	return resp.StatusCode, raw, nil
}

// do runs exchange, maps non-2xx statuses onto the error taxonomy and
// decodes a successful body into out when requested.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, timeout time.Duration) (int, error) {
	status, raw, err := c.exchange(ctx, method, path, query, body, timeout)
	if err != nil {
		return status, err
	}
	if status < 200 || status >= 300 {
		return status, statusError(method, path, status, remoteMessage(raw))
	}
	if out == nil {
		return status, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return status, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return status, nil
}
