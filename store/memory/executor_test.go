package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_RecordsStatements(t *testing.T) {
	exec := NewExecutor()
	ctx := context.Background()

	_, err := exec.ExecContext(ctx, "CREATE TABLE tenant_acme.accounts (id INT)")
	require.NoError(t, err)
	_, err = exec.ExecContext(ctx, "CREATE TABLE tenant_acme.widgets (id INT)")
	require.NoError(t, err)

	stmts := exec.Statements()
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE tenant_acme.accounts (id INT)", stmts[0])
	assert.True(t, exec.Executed("widgets"))
	assert.False(t, exec.Executed("journal"))
}

func TestExecutor_FailPattern(t *testing.T) {
	exec := &Executor{FailPattern: "tenant_broken"}
	ctx := context.Background()

	_, err := exec.ExecContext(ctx, "CREATE TABLE tenant_acme.accounts (id INT)")
	assert.NoError(t, err)

	_, err = exec.ExecContext(ctx, "CREATE TABLE tenant_broken.accounts (id INT)")
	assert.Error(t, err)

	// Failed statements are not recorded
	assert.Len(t, exec.Statements(), 1)
}

func TestExecutor_RespectsContext(t *testing.T) {
	exec := NewExecutor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.ExecContext(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.Statements())
}

func TestExecutor_Reset(t *testing.T) {
	exec := NewExecutor()

	_, err := exec.ExecContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.Len(t, exec.Statements(), 1)

	exec.Reset()
	assert.Empty(t, exec.Statements())
}
