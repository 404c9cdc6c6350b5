package ports

import "context"

// ArtifactCache stores expanded artifacts.
// Keys are opaque digests of the macro invocation that produced the artifact.
type ArtifactCache interface {
	// Get returns domain.ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// Put stores the artifact. Implementations may expire entries.
	Put(ctx context.Context, key, artifact string) error
}
