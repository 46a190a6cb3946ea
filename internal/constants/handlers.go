// Package constants provides shared constants used across the codebase.
package constants

// Handler constants
const (
	// DefaultConcurrency is the default number of parallel analysis workers inside a chunk
	DefaultConcurrency = 4

	// MaxUploadSize is the maximum multipart upload size in bytes (500MB)
	MaxUploadSize = 500 << 20

	// MaxUploadMemory is the part of a multipart upload kept in memory before spilling to disk
	MaxUploadMemory = 32 << 20
)
