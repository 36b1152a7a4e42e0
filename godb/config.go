package godb

// Config holds the process-wide constants that must be fixed before the
// first page is read or written: the page size and the fixed width of a
// STRING field's payload. Production code sets these once at startup;
// tests are free to shrink them to exercise small, easy-to-reason-about
// page layouts.
type Config struct {
	PageSize     int
	StringLength int
}

// DefaultConfig returns the conventional sizes: a 4096-byte page and a
// 128-byte string payload.
func DefaultConfig() Config {
	return Config{PageSize: 4096, StringLength: 128}
}

// globalConfig is the active process-wide configuration. It is set once via
// SetConfig before any HeapFile or HeapPage is constructed; nothing in the
// core re-reads it mid-operation, so changing it after I/O has begun on an
// existing file produces pages of the wrong shape.
var globalConfig = DefaultConfig()

// SetConfig installs cfg as the process-wide page/string configuration.
func SetConfig(cfg Config) {
	globalConfig = cfg
}

// CurrentConfig returns the active process-wide configuration.
func CurrentConfig() Config {
	return globalConfig
}

// PageSize returns the configured page size in bytes.
func PageSize() int {
	return globalConfig.PageSize
}

// StringLength returns the configured fixed payload width of a STRING field.
func StringLength() int {
	return globalConfig.StringLength
}
