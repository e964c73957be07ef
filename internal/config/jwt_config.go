package config

// SigningConfig holds the shared HMAC secret for tool descriptors. Empty disables signing.
type SigningConfig struct {
	Secret string `envconfig:"TOOL_SIGNING_SECRET"`
}
