package config

const (
	UnresolvedPolicyFail     = "fail"
	UnresolvedPolicyUseFirst = "use_first"
)

type ServiceConfig struct {
	Name                string         `yaml:"name"`
	Environment         string         `yaml:"environment"`
	Version             string         `yaml:"version"`
	ClientURL           string         `yaml:"client_url"`
	StripeSecretKey     string         `yaml:"stripe_secret_key"`
	StripeWebhookSecret string         `yaml:"stripe_webhook_secret"`
	EnableTestEndpoints bool           `yaml:"enable_test_endpoints"`
	Identity            IdentityConfig `yaml:"identity"`
}

// IdentityConfig controls how webhook payloads are matched to users.
type IdentityConfig struct {
	// UnresolvedPolicy is "fail" or "use_first". use_first is a local
	// development convenience and is rejected in production.
	UnresolvedPolicy string `yaml:"unresolved_policy"`
}

func (c ServiceConfig) IsProduction() bool {
	return c.Environment == "production"
}
