package config

const (
	defaultConfigPath      = "~/.config/uhdrsplit/config.toml"
	defaultImagePattern    = "{stem}_split_{index}.jpg"
	defaultMetadataPattern = "{stem}_hdrgm.txt"
	defaultBatchJobs       = 4
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			ImagePattern:    defaultImagePattern,
			MetadataPattern: defaultMetadataPattern,
			Overwrite:       true,
		},
		Batch: Batch{
			Jobs: defaultBatchJobs,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
