package movecompose

// ComposeOption configures a Compose run.
type ComposeOption func(*composeConfig)

type composeConfig struct {
	includeMetadata bool
}

func defaultComposeConfig() *composeConfig {
	return &composeConfig{
		includeMetadata: true,
	}
}

// WithMetadata controls whether source metadata is embedded in the emitted
// script bytecode. Enabled by default.
func WithMetadata(enabled bool) ComposeOption {
	return func(c *composeConfig) {
		c.includeMetadata = enabled
	}
}
