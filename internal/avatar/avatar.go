// Package avatar renders placeholder NPC portraits and remembers where they
// were written.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/actor"
)

const (
	DefaultSize = 150

	cacheKeyPrefix = "avatar:"
	cacheTTL       = 24 * time.Hour
	margin         = 10
)

// DefaultColor is the fill used when none is configured.
var DefaultColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// Generator writes one PNG per NPC key under dir.
type Generator struct {
	dir    string
	size   int
	fill   color.Color
	cache  services.Cache
	logger *slog.Logger
	mu     sync.Mutex
}

// NewGenerator creates a generator. cache may be nil.
func NewGenerator(dir string, cache services.Cache, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		dir:    dir,
		size:   DefaultSize,
		fill:   DefaultColor,
		cache:  cache,
		logger: logger,
	}
}

// WithColor overrides the triangle fill.
func (g *Generator) WithColor(c color.Color) *Generator {
	g.fill = c
	return g
}

// Avatar returns the file path of name's portrait, rendering it on first use.
func (g *Generator) Avatar(ctx context.Context, name string) (string, error) {
	key := actor.Key(name)
	if key == "" {
		return "", errors.New("avatar: empty name")
	}
	path := filepath.Join(g.dir, key+".png")

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cache != nil {
		cached, err := g.cache.Get(ctx, cacheKeyPrefix+key)
		if err != nil {
			g.logger.Warn("Avatar cache lookup failed", "npc", key, "error", err)
		} else if cached != "" {
			return cached, nil
		}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := g.render(path); err != nil {
			return "", err
		}
		g.logger.Debug("Avatar generated", "npc", key, "path", path)
	} else if err != nil {
		return "", fmt.Errorf("avatar: stat %s: %w", path, err)
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, cacheKeyPrefix+key, path, cacheTTL); err != nil {
			g.logger.Warn("Avatar cache store failed", "npc", key, "error", err)
		}
	}
	return path, nil
}

func (g *Generator) render(path string) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("avatar: create dir: %w", err)
	}

	img := Triangle(g.size, g.fill)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("avatar: create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("avatar: encode png: %w", err)
	}
	return f.Close()
}

// Triangle draws an upward filled triangle on a white square.
func Triangle(size int, fill color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	apex := image.Pt(size/2, margin)
	left := image.Pt(margin, size-margin)
	right := image.Pt(size-margin, size-margin)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if inside(image.Pt(x, y), apex, left, right) {
				img.Set(x, y, fill)
			} else {
				img.Set(x, y, white)
			}
		}
	}
	return img
}

// inside reports whether p lies within triangle abc, edges included.
func inside(p, a, b, c image.Point) bool {
	d1 := cross(p, a, b)
	d2 := cross(p, b, c)
	d3 := cross(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross(p, a, b image.Point) int {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}
