package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"whisk-action-client/client"
	"whisk-action-client/config"
	"whisk-action-client/mockplane"
	"whisk-action-client/models"
)

const testNamespace = "whisk-tests"

func newTestClient(t *testing.T, opts ...mockplane.Option) *client.Client {
	t.Helper()

	opts = append([]mockplane.Option{mockplane.WithAuth("user:secret")}, opts...)
	server := mockplane.New(opts...)
	url, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Stop() })

	c, err := client.New(config.Config{
		Host:            url,
		AuthKey:         "user:secret",
		Namespace:       testNamespace,
		Timeout:         5 * time.Second,
		BlockingTimeout: 10 * time.Second,
	}, client.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return c
}

func mustCreate(t *testing.T, c *client.Client, name, code string, params models.Parameters) *models.Action {
	t.Helper()
	exec, err := client.InlineExec(code, "nodejs:18")
	require.NoError(t, err)
	action, err := c.Create(context.Background(), client.CreateActionInput{
		Name:       name,
		Exec:       exec,
		Parameters: params,
	})
	require.NoError(t, err)
	return action
}

func TestCreateThenGet(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created := mustCreate(t, c, "echo", "function main(args) { return args; }", models.Parameters{
		{Key: "region", Value: "eu-west"},
	})
	assert.Equal(t, "echo", created.Name)
	assert.Equal(t, testNamespace, created.Namespace)
	assert.Equal(t, "0.0.1", created.Version)

	fetched, err := c.Get(ctx, "echo", "")
	require.NoError(t, err)
	assert.Equal(t, "echo", fetched.Name)
	assert.Equal(t, testNamespace, fetched.Namespace)
	assert.Equal(t, "nodejs:18", fetched.Exec.Kind)
	assert.Equal(t, "function main(args) { return args; }", fetched.Exec.Code)
	value, ok := fetched.Parameters.Get("region")
	require.True(t, ok)
	assert.Equal(t, "eu-west", value)
}

func TestCreateConflict(t *testing.T) {
	c := newTestClient(t)
	mustCreate(t, c, "echo", "function main(args) { return args; }", nil)

	exec, err := client.InlineExec("function main() { return {}; }", "nodejs:18")
	require.NoError(t, err)
	_, err = c.Create(context.Background(), client.CreateActionInput{Name: "echo", Exec: exec})
	assert.ErrorIs(t, err, client.ErrConflict)
}

func TestCreateRequiresExec(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Create(context.Background(), client.CreateActionInput{Name: "echo"})
	assert.ErrorIs(t, err, client.ErrInvalidPayload)
}

func TestGetMissing(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Get(context.Background(), "ghost", "")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestUpdateMergesParametersAndPreservesExec(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, c, "echo", "function main(args) { return args; }", models.Parameters{
		{Key: "region", Value: "eu-west"},
		{Key: "retries", Value: 3},
	})

	updated, err := c.Update(ctx, client.UpdateActionInput{
		Name: "echo",
		Parameters: models.Parameters{
			{Key: "retries", Value: 5},
			{Key: "owner", Value: "platform"},
		},
	})
	require.NoError(t, err)

	// Exec was omitted from the call and must survive the update.
	require.NotNil(t, updated.Exec)
	assert.Equal(t, "nodejs:18", updated.Exec.Kind)
	assert.Equal(t, "function main(args) { return args; }", updated.Exec.Code)
	assert.Equal(t, "0.0.2", updated.Version)

	keys := make([]string, 0, len(updated.Parameters))
	for _, kv := range updated.Parameters {
		keys = append(keys, kv.Key)
	}
	assert.Equal(t, []string{"region", "retries", "owner"}, keys)

	retries, _ := updated.Parameters.Get("retries")
	assert.EqualValues(t, 5, retries)
	region, _ := updated.Parameters.Get("region")
	assert.Equal(t, "eu-west", region)
}

func TestUpdateNeverCreates(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Update(ctx, client.UpdateActionInput{
		Name:       "ghost",
		Parameters: models.Parameters{{Key: "a", Value: 1}},
	})
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = c.Get(ctx, "ghost", "")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestDeleteMissingAndTwice(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Delete(ctx, "ghost", ""), client.ErrNotFound)

	mustCreate(t, c, "echo", "function main(args) { return args; }", nil)
	require.NoError(t, c.Delete(ctx, "echo", ""))
	assert.ErrorIs(t, c.Delete(ctx, "echo", ""), client.ErrNotFound)
}

func TestListNamespaceInvariant(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, c, "alpha", "function main(args) { return args; }", nil)
	mustCreate(t, c, "beta", "function main(args) { return args; }", nil)

	exec, err := client.InlineExec("function main(args) { return args; }", "nodejs:18")
	require.NoError(t, err)
	_, err = c.Create(ctx, client.CreateActionInput{Name: "gamma", Namespace: "other", Exec: exec})
	require.NoError(t, err)

	summaries, err := c.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, summary := range summaries {
		assert.Equal(t, testNamespace, summary.Namespace)
	}

	other, err := c.List(ctx, "other")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "other", other[0].Namespace)
	assert.Equal(t, "gamma", other[0].Name)

	empty, err := c.List(ctx, "deserted")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestStoredIdentityStableAcrossRequests(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	exec, err := client.InlineExec("function main(args) { return args; }", "nodejs:18")
	require.NoError(t, err)
	_, err = c.Create(ctx, client.CreateActionInput{Name: "gamma", Namespace: "other", Exec: exec})
	require.NoError(t, err)

	// Issue a burst of unrelated requests with different paths; stored
	// identities must not alias server request buffers that these reuse.
	for i := 0; i < 10; i++ {
		_, err := c.List(ctx, "a-much-longer-namespace-name")
		require.NoError(t, err)
		_, getErr := c.Get(ctx, "pkg/missing-action", "elsewhere")
		assert.ErrorIs(t, getErr, client.ErrNotFound)
	}

	summaries, err := c.List(ctx, "other")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "gamma", summaries[0].Name)
	assert.Equal(t, "other", summaries[0].Namespace)

	fetched, err := c.Get(ctx, "gamma", "other")
	require.NoError(t, err)
	assert.Equal(t, "gamma", fetched.Name)
	assert.Equal(t, "other", fetched.Namespace)
}

func TestQualifiedNameForms(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	mustCreate(t, c, "util/echo", "function main(args) { return args; }", nil)

	byPackage, err := c.Get(ctx, "util/echo", "")
	require.NoError(t, err)
	assert.Equal(t, "util/echo", byPackage.Name)

	// The fully qualified form routes to the same action and overrides the
	// per-call namespace.
	byFullPath, err := c.Get(ctx, "/"+testNamespace+"/util/echo", "some-other-ns")
	require.NoError(t, err)
	assert.Equal(t, byPackage.Name, byFullPath.Name)
	assert.Equal(t, byPackage.Namespace, byFullPath.Namespace)
}
