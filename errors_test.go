package schemafleet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationError_Message(t *testing.T) {
	err := &MigrationError{
		TenantID: "tenant-1",
		Version:  "v1.2.0",
		Err:      errors.New("relation already exists"),
	}

	assert.Contains(t, err.Error(), "v1.2.0")
	assert.Contains(t, err.Error(), "tenant-1")
	assert.Contains(t, err.Error(), "relation already exists")
}

func TestMigrationError_Unwrap(t *testing.T) {
	cause := errors.New("syntax error")
	err := &MigrationError{TenantID: "tenant-1", Version: "v1.0.0", Err: cause}

	assert.ErrorIs(t, err, cause)

	var migErr *MigrationError
	assert.ErrorAs(t, error(err), &migErr)
	assert.Equal(t, "v1.0.0", migErr.Version)
}

func TestRollbackUnsupportedError_Message(t *testing.T) {
	err := &RollbackUnsupportedError{Version: "v1.1.0"}
	assert.Contains(t, err.Error(), "v1.1.0")
	assert.Contains(t, err.Error(), "no reverse action")
}
