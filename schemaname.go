package schemafleet

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaPrefix is the fixed namespace token prepended to every derived
// tenant schema name. It keeps tenant schemas clearly separated from
// application-owned schemas sharing the same database.
const SchemaPrefix = "tenant"

// SchemaName is a validated database schema identifier. It is the only value
// the engine ever interpolates into DDL text; anything outside the identifier
// charset is rejected by Validate before it reaches a statement.
type SchemaName string

var schemaNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate ensures the schema name contains only safe identifier characters.
// Returns an error if the name is empty or contains characters that could be
// used for SQL injection.
func (s SchemaName) Validate() error {
	if s == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if !schemaNameRegex.MatchString(string(s)) {
		return fmt.Errorf("schema name must start with a letter and contain only lowercase letters, numbers, and underscores (got: %s)", s)
	}
	return nil
}

// String returns the schema name as a plain string.
func (s SchemaName) String() string { return string(s) }

// DeriveSchemaName derives the schema name for a subdomain. The derivation is
// deterministic and injective over valid subdomains: the subdomain is
// lowercased, every run of non-alphanumeric characters collapses to a single
// underscore, and the result is prefixed with the tenant namespace token.
//
//	DeriveSchemaName("Test-Store") == "tenant_test_store"
func DeriveSchemaName(subdomain string) SchemaName {
	lower := strings.ToLower(subdomain)

	var b strings.Builder
	b.WriteString(SchemaPrefix)
	b.WriteByte('_')

	inSeparator := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			inSeparator = false
		default:
			if !inSeparator {
				b.WriteByte('_')
			}
			inSeparator = true
		}
	}

	return SchemaName(strings.TrimRight(b.String(), "_"))
}
