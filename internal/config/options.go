package config

// Option is one configuration key with its default and meaning.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options returns the default configuration options and their meanings.
// This is the single source of truth for default values.
func Options() []Option {
	return []Option{
		{Key: "log.level", Default: "info", Comment: "Minimum log level: debug, info, warn or error"},
		{Key: "log.format", Default: "text", Comment: "Log record format on stderr: text or json"},

		{Key: "assistant.url", Default: "http://localhost:8000", Comment: "Base URL of the research assistant API"},
		{Key: "assistant.timeout", Default: "60s", Comment: "Per-attempt timeout of assistant requests"},
		{Key: "assistant.retries", Default: 0, Comment: "Retries on transport errors and 5xx answers"},
		{Key: "assistant.backoff", Default: "500ms", Comment: "Base delay between retries, multiplied by the attempt number"},

		{Key: "normalize.unicode_form", Default: "", Comment: "Unicode form applied before the rules: NFC, NFD, NFKC, NFKD or empty"},
		{Key: "input.max_size", Default: 64 * 1024, Comment: "Largest accepted input in bytes"},

		{Key: "cache.backend", Default: "memory", Comment: "Normalization cache: none, memory or redis"},
		{Key: "cache.ttl", Default: "1h", Comment: "Lifetime of cached entries; 0 keeps them forever"},
		{Key: "cache.limit", Default: 4096, Comment: "Maximum entries of the memory cache; 0 is unbounded"},
		{Key: "cache.timeout", Default: "250ms", Comment: "Upper bound of each cache call"},
		{Key: "cache.redis.addr", Default: "localhost:6379", Comment: "Redis address"},
		{Key: "cache.redis.password", Default: "", Comment: "Redis password"},
		{Key: "cache.redis.db", Default: 0, Comment: "Redis database number"},
		{Key: "cache.redis.prefix", Default: "demark:norm:", Comment: "Key prefix of cached entries"},

		{Key: "archive.dir", Default: ".demark/transcripts", Comment: "Directory of archived transcripts"},

		{Key: "server.addr", Default: ":8080", Comment: "Listen address of the HTTP service"},
		{Key: "server.metrics", Default: true, Comment: "Expose Prometheus metrics on /metrics"},

		{Key: "mcp.transport", Default: "stdio", Comment: "MCP transport: stdio or sse"},
		{Key: "mcp.port", Default: 8081, Comment: "Port of the SSE transport"},
	}
}
