package memory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/getpup/schemafleet"
)

// Executor is an in-memory StatementExecutor for testing migration actions.
// It records every executed statement and can be configured to fail when a
// statement contains a given substring.
type Executor struct {
	mu sync.Mutex

	// FailPattern, if non-empty, makes ExecContext return an error for any
	// statement containing it.
	FailPattern string

	statements []string
}

// Compile-time check that Executor implements StatementExecutor.
var _ schemafleet.StatementExecutor = (*Executor)(nil)

// NewExecutor creates a new recording executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// ExecContext records the statement and returns a nil result.
// Fails if the statement contains FailPattern.
func (e *Executor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.FailPattern != "" && strings.Contains(query, e.FailPattern) {
		return nil, fmt.Errorf("statement matched fail pattern %q", e.FailPattern)
	}

	e.statements = append(e.statements, query)
	return nil, nil
}

// Statements returns a copy of all successfully executed statements in order.
func (e *Executor) Statements() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, len(e.statements))
	copy(out, e.statements)
	return out
}

// Executed reports whether any recorded statement contains the substring.
func (e *Executor) Executed(substr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, s := range e.statements {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// Reset clears all recorded statements.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.statements = nil
}
