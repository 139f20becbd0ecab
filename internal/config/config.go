package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Runtime RuntimeConfig `mapstructure:"runtime" validate:"required"`
	Engine  EngineConfig  `mapstructure:"engine" validate:"required"`
}

// ServerConfig contains settings for the process itself and its HTTP surface.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LibraryRoot is the directory HTTP requests may read comic files from.
	LibraryRoot string `mapstructure:"library_root" validate:"required"`
}

// RuntimeConfig controls how operations are scheduled.
type RuntimeConfig struct {
	// WorkerCount is the number of worker goroutines executing operations.
	WorkerCount int `mapstructure:"worker_count" validate:"gte=0"`
	// QueueSize is the buffer size of the submission queue.
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`
	// Inline executes operations on the calling goroutine instead of the pool.
	Inline bool `mapstructure:"inline"`
}

// EngineConfig contains archive engine settings.
type EngineConfig struct {
	HashAlgorithm  string `mapstructure:"hash_algorithm" validate:"required,oneof=blake2b blake3"`
	ResizeFilter   string `mapstructure:"resize_filter" validate:"required,oneof=nearest bilinear catmullrom"`
	MaxImagePixels int    `mapstructure:"max_image_pixels" validate:"gt=0"`
	MaxEntryBytes  int64  `mapstructure:"max_entry_bytes" validate:"gt=0"`
}
