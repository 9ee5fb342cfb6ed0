package geometry

import (
	"fmt"

	"beamplan/pkg/domain"
)

type bboxResult struct {
	box domain.Box
	err error
}

// Cache memoizes bounding-box lookups per (cell, layer set). Area passes hit
// the same cell repeatedly after a matrix copy, so the adapter is consulted
// once per combination. Errors are cached as well: the library is read-only
// for the lifetime of a pass.
type Cache struct {
	geo   domain.Geometry
	boxes map[string]bboxResult
}

// Cached wraps a geometry adapter with lookup memoization.
func Cached(geo domain.Geometry) *Cache {
	return &Cache{geo: geo, boxes: make(map[string]bboxResult)}
}

func cacheKey(cellRef string, layers []int) string {
	return fmt.Sprintf("%s|%v", cellRef, domain.NormalizeLayers(layers))
}

// BoundingBox implements domain.Geometry.
func (c *Cache) BoundingBox(cellRef string, layers []int) (domain.Box, error) {
	key := cacheKey(cellRef, layers)
	if r, ok := c.boxes[key]; ok {
		return r.box, r.err
	}
	box, err := c.geo.BoundingBox(cellRef, layers)
	c.boxes[key] = bboxResult{box: box, err: err}
	return box, err
}

// Layers implements domain.Geometry by delegating to the wrapped adapter.
func (c *Cache) Layers(cellRef string) ([]int, error) {
	return c.geo.Layers(cellRef)
}

var _ domain.Geometry = (*Cache)(nil)
