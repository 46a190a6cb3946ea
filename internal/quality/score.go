// Package quality scores photos for sharpness, lighting and composition.
// The heuristics are rough approximations meant for ranking, not vision accuracy.
package quality

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/photobook/internal/constants"
)

// Point is a position in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Score is the result of analyzing one photo. It is never modified after creation.
type Score struct {
	Overall        float64  `json:"overall"`
	Sharpness      float64  `json:"sharpness"`
	Lighting       float64  `json:"lighting"`
	Composition    float64  `json:"composition"`
	SubjectCenter  Point    `json:"subjectCenter"`
	AspectRatio    float64  `json:"aspectRatio"`
	DominantColors []string `json:"dominantColors,omitempty"`
	Fallback       bool     `json:"fallback,omitempty"`
}

// Neutral is the score used when a photo cannot be analyzed.
func Neutral(aspectRatio float64) Score {
	return Score{
		Overall:       constants.NeutralScore,
		Sharpness:     constants.NeutralScore,
		Lighting:      constants.NeutralScore,
		Composition:   constants.NeutralScore,
		SubjectCenter: Point{X: 0.5, Y: 0.5},
		AspectRatio:   aspectRatio,
		Fallback:      true,
	}
}

// Overall combines the sub-scores. Photos at least 1200px wide get a flat bonus.
func Overall(sharpness, lighting, composition float64, width int) float64 {
	v := constants.SharpnessWeight*sharpness +
		constants.LightingWeight*lighting +
		constants.CompositionWeight*composition
	if width >= constants.HighResolutionWidth {
		v += constants.ResolutionBonus
	}
	return clamp(v)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// lumaGrid holds ITU-R BT.601 luma values indexed [x][y].
type lumaGrid [][]float64

func (g lumaGrid) width() int  { return len(g) }
func (g lumaGrid) height() int { return len(g[0]) }

// downscale fits img into maxEdge on its long side. Smaller images are copied as is.
func downscale(img image.Image, maxEdge int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxEdge || h > maxEdge {
		if w >= h {
			h = max(1, h*maxEdge/w)
			w = maxEdge
		} else {
			w = max(1, w*maxEdge/h)
			h = maxEdge
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func toLuma(img *image.RGBA) lumaGrid {
	b := img.Bounds()
	grid := make(lumaGrid, b.Dx())
	for x := range grid {
		grid[x] = make([]float64, b.Dy())
		for y := range grid[x] {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			grid[x][y] = 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	return grid
}

// sharpness averages the 4-neighbour luma differences of interior pixels on a stride-3 grid.
func sharpness(g lumaGrid) float64 {
	w, h := g.width(), g.height()
	var total float64
	var n int
	for x := 1; x < w-1; x += 3 {
		for y := 1; y < h-1; y += 3 {
			c := g[x][y]
			total += math.Abs(c-g[x-1][y]) + math.Abs(c-g[x+1][y]) +
				math.Abs(c-g[x][y-1]) + math.Abs(c-g[x][y+1])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return clamp(total / float64(n) * 1.5)
}

// lighting rewards mid-gray exposure and punishes clipped shadows and highlights.
func lighting(g lumaGrid) float64 {
	w, h := g.width(), g.height()
	var sum float64
	var n, clipped int
	for x := 0; x < w; x += 4 {
		for y := 0; y < h; y += 4 {
			l := g[x][y]
			sum += l
			if l < 30 || l > 240 {
				clipped++
			}
			n++
		}
	}
	mean := sum / float64(n)
	score := 100 - math.Abs(mean-128)/128*50 - float64(clipped)/float64(n)*150
	return clamp(score)
}

// localContrast is the luma range within radius of (cx, cy).
func localContrast(g lumaGrid, cx, cy, radius int) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for x := max(0, cx-radius); x <= min(g.width()-1, cx+radius); x++ {
		for y := max(0, cy-radius); y <= min(g.height()-1, cy+radius); y++ {
			lo = math.Min(lo, g[x][y])
			hi = math.Max(hi, g[x][y])
		}
	}
	return hi - lo
}

// composition compares contrast at the rule-of-thirds points with the center.
func composition(g lumaGrid) float64 {
	w, h := g.width(), g.height()
	radius := max(2, min(w, h)/20)

	var thirds float64
	for _, fx := range []int{w / 3, 2 * w / 3} {
		for _, fy := range []int{h / 3, 2 * h / 3} {
			thirds += localContrast(g, fx, fy, radius)
		}
	}
	thirds /= 4
	center := localContrast(g, w/2, h/2, radius)

	score := 30 + thirds/255*50
	if thirds > center {
		score += 20
	}
	return clamp(score)
}

// subjectCenter is the contrast-weighted centroid of an 8x8 cell grid.
func subjectCenter(g lumaGrid) Point {
	const cells = 8
	w, h := g.width(), g.height()
	var wx, wy, total float64
	for cx := range cells {
		for cy := range cells {
			x0, x1 := cx*w/cells, (cx+1)*w/cells
			y0, y1 := cy*h/cells, (cy+1)*h/cells
			if x1 <= x0 || y1 <= y0 {
				continue
			}
			lo, hi := math.Inf(1), math.Inf(-1)
			for x := x0; x < x1; x++ {
				for y := y0; y < y1; y++ {
					lo = math.Min(lo, g[x][y])
					hi = math.Max(hi, g[x][y])
				}
			}
			weight := hi - lo
			wx += weight * (float64(cx) + 0.5) / cells
			wy += weight * (float64(cy) + 0.5) / cells
			total += weight
		}
	}
	if total == 0 {
		return Point{X: 0.5, Y: 0.5}
	}
	return Point{X: wx / total, Y: wy / total}
}
