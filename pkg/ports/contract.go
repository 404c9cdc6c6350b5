package ports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunArtifactCacheContract runs a suite of tests to verify that an ArtifactCache
// implementation adheres to the defined interface contract.
func RunArtifactCacheContract(t *testing.T, cache ArtifactCache) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("Put and Get", func(t *testing.T) {
		artifact := `<robot name="kobuki"><link name="base_footprint"/></robot>`
		require.NoError(t, cache.Put(ctx, key, artifact))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, artifact, got)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key+"-2", "first"))
		require.NoError(t, cache.Put(ctx, key+"-2", "second"))

		got, err := cache.Get(ctx, key+"-2")
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Large Artifact", func(t *testing.T) {
		big := strings.Repeat("<joint/>", 64*1024)
		require.NoError(t, cache.Put(ctx, key+"-big", big))

		got, err := cache.Get(ctx, key+"-big")
		require.NoError(t, err)
		assert.Len(t, got, len(big))
	})
}
