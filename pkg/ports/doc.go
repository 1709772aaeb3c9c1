/*
Package ports defines the driven ports (interfaces) used by demark.

These interfaces decouple the normalizer and the CLI from concrete backends,
so a cache or an archive can live in memory, in Redis, or on disk.

# Key Interfaces

  - Cache: Stores normalized text keyed by a digest of the raw input.
  - Archive: Persists rendered transcripts of answered queries.
*/
package ports
