// Package sprite builds pixel collision masks from sprite images and
// provides the built-in bird and pipe sprites.
package sprite

import (
	"image"

	"github.com/vovakirdan/flappy-neat/internal/core"
)

// alphaThreshold is the alpha value above which a pixel counts as solid.
const alphaThreshold = 127

// Mask is a per-pixel solidity bitmap. Rows are packed into 64-bit words.
type Mask struct {
	w, h   int
	stride int // words per row
	bits   []uint64
	bounds core.Rect // bounding box of solid pixels, empty if none
}

// NewMask creates an empty (all transparent) mask.
func NewMask(w, h int) *Mask {
	stride := (w + 63) / 64
	return &Mask{
		w:      w,
		h:      h,
		stride: stride,
		bits:   make([]uint64, stride*h),
	}
}

// FromImage builds a mask where every pixel with alpha > 127 is solid.
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA returns 16-bit alpha.
			if a>>8 > alphaThreshold {
				m.set(x, y)
			}
		}
	}
	m.computeBounds()
	return m
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.w }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.h }

// Bounds returns the bounding box of the solid pixels.
func (m *Mask) Bounds() core.Rect { return m.bounds }

// At reports whether the pixel at (x, y) is solid.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.stride+x/64]&(1<<(uint(x)%64)) != 0
}

// Count returns the number of solid pixels.
func (m *Mask) Count() int {
	n := 0
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.At(x, y) {
				n++
			}
		}
	}
	return n
}

// Overlap reports whether any solid pixel of m coincides with a solid
// pixel of other when other's top-left corner is placed at (dx, dy) in
// m's coordinates.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	if m == nil || other == nil {
		return false
	}
	area := m.bounds.Intersect(other.bounds.Translate(dx, dy))
	if area.Empty() {
		return false
	}
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			if m.At(x, y) && other.At(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}

// FlipVertical returns a copy of the mask mirrored top to bottom.
func (m *Mask) FlipVertical() *Mask {
	out := NewMask(m.w, m.h)
	for y := 0; y < m.h; y++ {
		copy(out.bits[y*out.stride:(y+1)*out.stride], m.bits[(m.h-1-y)*m.stride:(m.h-y)*m.stride])
	}
	out.computeBounds()
	return out
}

func (m *Mask) set(x, y int) {
	m.bits[y*m.stride+x/64] |= 1 << (uint(x) % 64)
}

func (m *Mask) computeBounds() {
	minX, minY, maxX, maxY := m.w, m.h, -1, -1
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.At(x, y) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		m.bounds = core.Rect{}
		return
	}
	m.bounds = core.NewRect(minX, minY, maxX-minX+1, maxY-minY+1)
}
