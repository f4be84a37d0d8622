package avatar

import (
	"context"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/internal/services"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerator_Avatar(t *testing.T) {
	dir := t.TempDir()
	cache := services.NewMemoryCache()
	gen := NewGenerator(dir, cache, quietLogger())
	ctx := context.Background()

	path, err := gen.Avatar(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "alice.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())

	cached, err := cache.Get(ctx, "avatar:alice")
	require.NoError(t, err)
	assert.Equal(t, path, cached)
}

func TestGenerator_Idempotent(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir, nil, quietLogger())
	ctx := context.Background()

	first, err := gen.Avatar(ctx, "Bob")
	require.NoError(t, err)
	before, err := os.Stat(first)
	require.NoError(t, err)

	second, err := gen.Avatar(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	after, err := os.Stat(second)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestGenerator_CacheHitSkipsRender(t *testing.T) {
	dir := t.TempDir()
	cache := services.NewMemoryCache()
	require.NoError(t, cache.Set(context.Background(), "avatar:alice", "elsewhere/alice.png", 0))

	path, err := NewGenerator(dir, cache, quietLogger()).Avatar(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, "elsewhere/alice.png", path)

	_, err = os.Stat(filepath.Join(dir, "alice.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerator_EmptyName(t *testing.T) {
	_, err := NewGenerator(t.TempDir(), nil, nil).Avatar(context.Background(), "")
	assert.Error(t, err)
}

func TestTriangle(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	img := Triangle(DefaultSize, red)

	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0), "corner is background")
	assert.Equal(t, red, img.RGBAAt(DefaultSize/2, DefaultSize-margin-1), "base centre is filled")
	assert.Equal(t, red, img.RGBAAt(DefaultSize/2, margin), "apex is filled")
}
