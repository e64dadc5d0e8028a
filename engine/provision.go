package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/metrics"
	"github.com/getpup/schemafleet/store"
)

// Consecutive hyphens are rejected so distinct subdomains can never derive
// the same schema name ("a--b" and "a-b" would both become tenant_a_b).
var subdomainRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// reservedSubdomains are names that can never be claimed by a tenant. They
// are either routed by the surrounding platform or would collide with
// database namespaces ("public" is the default PostgreSQL schema).
var reservedSubdomains = map[string]bool{
	"www":      true,
	"api":      true,
	"app":      true,
	"admin":    true,
	"mail":     true,
	"smtp":     true,
	"status":   true,
	"assets":   true,
	"static":   true,
	"support":  true,
	"billing":  true,
	"docs":     true,
	"help":     true,
	"blog":     true,
	"internal": true,
	"system":   true,
	"public":   true,
	"postgres": true,
}

const (
	subdomainMinLength = 3
	subdomainMaxLength = 63
)

// CreateTenantParams are the inputs to tenant provisioning.
type CreateTenantParams struct {
	// Name is the display name of the tenant (required).
	Name string

	// Subdomain is the subdomain the tenant will be reached under (required).
	// It must be lowercase alphanumeric with single interior hyphens, 3-63
	// characters, and not reserved or already taken.
	Subdomain string

	// ContactEmail is the primary contact address (required).
	ContactEmail string

	// ContactPhone is an optional contact phone number.
	ContactPhone string

	// Plan is the subscription plan. Defaults to the provisioner's DefaultPlan.
	Plan string
}

// ProvisionerConfig holds configuration for the Provisioner.
type ProvisionerConfig struct {
	// Store is the backing tenant store (required).
	Store store.TenantStore

	// TrialPeriod is how long new tenants stay in trial (default: 30 days).
	TrialPeriod time.Duration

	// DefaultPlan is used when CreateTenantParams.Plan is empty (default: "standard").
	DefaultPlan string

	// Logger is for observability (default: no-op).
	Logger *zap.Logger

	// Metrics collects provisioning metrics (default: shared collector).
	Metrics *metrics.Collector
}

// Provisioner creates tenants: it validates the requested subdomain, derives
// the schema name, and asks the store to create the schema and tenant row.
type Provisioner struct {
	config ProvisionerConfig
}

// NewProvisioner creates a new Provisioner with the given configuration.
// Applies default values for TrialPeriod, DefaultPlan, Logger, and Metrics.
func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	if cfg.TrialPeriod == 0 {
		cfg.TrialPeriod = 30 * 24 * time.Hour
	}
	if cfg.DefaultPlan == "" {
		cfg.DefaultPlan = "standard"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewCollector()
	}

	return &Provisioner{config: cfg}
}

// ValidateSubdomain checks the subdomain against the allowed format and the
// reserved-word list. Returns ErrSubdomainInvalid or ErrSubdomainReserved.
func ValidateSubdomain(subdomain string) error {
	if len(subdomain) < subdomainMinLength || len(subdomain) > subdomainMaxLength {
		return fmt.Errorf("subdomain %q must be %d-%d characters: %w",
			subdomain, subdomainMinLength, subdomainMaxLength, schemafleet.ErrSubdomainInvalid)
	}
	if !subdomainRegex.MatchString(subdomain) {
		return fmt.Errorf("subdomain %q must be lowercase alphanumeric with single interior hyphens: %w",
			subdomain, schemafleet.ErrSubdomainInvalid)
	}
	if reservedSubdomains[subdomain] {
		return fmt.Errorf("subdomain %q: %w", subdomain, schemafleet.ErrSubdomainReserved)
	}
	return nil
}

// CreateTenant provisions a new tenant: validates the subdomain, checks
// availability against the backing store (not any cache), derives the schema
// name, and creates the schema and tenant row. New tenants start in trial
// status with a computed trial expiry.
func (p *Provisioner) CreateTenant(ctx context.Context, params CreateTenantParams) (schemafleet.Tenant, error) {
	if params.Name == "" {
		return schemafleet.Tenant{}, fmt.Errorf("tenant name cannot be empty")
	}
	if params.ContactEmail == "" || !strings.Contains(params.ContactEmail, "@") {
		return schemafleet.Tenant{}, fmt.Errorf("contact email %q is not valid", params.ContactEmail)
	}
	if err := ValidateSubdomain(params.Subdomain); err != nil {
		return schemafleet.Tenant{}, err
	}

	taken, err := p.config.Store.SubdomainTaken(ctx, params.Subdomain)
	if err != nil {
		return schemafleet.Tenant{}, fmt.Errorf("failed to check subdomain availability: %w", err)
	}
	if taken {
		return schemafleet.Tenant{}, fmt.Errorf("subdomain %q: %w", params.Subdomain, schemafleet.ErrSubdomainTaken)
	}

	schema := schemafleet.DeriveSchemaName(params.Subdomain)
	if err := schema.Validate(); err != nil {
		return schemafleet.Tenant{}, fmt.Errorf("derived schema name is invalid: %w", err)
	}

	plan := params.Plan
	if plan == "" {
		plan = p.config.DefaultPlan
	}

	now := time.Now()
	tenant := schemafleet.Tenant{
		ID:           uuid.New().String(),
		Name:         params.Name,
		Subdomain:    params.Subdomain,
		Schema:       schema,
		Plan:         plan,
		Status:       schemafleet.TenantStatusTrial,
		Active:       true,
		ContactEmail: params.ContactEmail,
		ContactPhone: params.ContactPhone,
		TrialEndsAt:  now.Add(p.config.TrialPeriod),
		CreatedAt:    now,
	}

	if err := p.config.Store.CreateTenant(ctx, tenant); err != nil {
		if errors.Is(err, store.ErrSubdomainExists) {
			return schemafleet.Tenant{}, fmt.Errorf("subdomain %q: %w", params.Subdomain, schemafleet.ErrSubdomainTaken)
		}
		return schemafleet.Tenant{}, fmt.Errorf("failed to provision tenant: %w", err)
	}

	p.config.Metrics.IncTenantsProvisioned()
	p.config.Logger.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID),
		zap.String("subdomain", tenant.Subdomain),
		zap.String("schema", tenant.Schema.String()),
		zap.String("plan", tenant.Plan),
		zap.Time("trial_ends_at", tenant.TrialEndsAt))

	return tenant, nil
}
