package quality

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"golang.org/x/image/draw"

	"github.com/kozaktomas/photobook/internal/constants"
)

const (
	paletteSampleEdge = 50
	paletteIterations = 20
)

// dominantColors clusters a small thumbnail of img and returns up to k hex
// colours, most common first.
func dominantColors(img image.Image, k int) ([]string, error) {
	thumb := image.NewRGBA(image.Rect(0, 0, paletteSampleEdge, paletteSampleEdge))
	draw.BiLinear.Scale(thumb, thumb.Bounds(), img, img.Bounds(), draw.Over, nil)

	var observations clusters.Observations
	distinct := map[[3]uint8]struct{}{}
	for y := range paletteSampleEdge {
		for x := range paletteSampleEdge {
			p := thumb.RGBAAt(x, y)
			distinct[[3]uint8{p.R, p.G, p.B}] = struct{}{}
			c := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
			observations = append(observations, clusters.Coordinates{c.R, c.G, c.B})
		}
	}

	k = min(k, len(distinct))
	if k <= 1 {
		c := observations[0].Coordinates()
		return []string{colorful.Color{R: c[0], G: c[1], B: c[2]}.Hex()}, nil
	}

	parts, err := partition(observations, k)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(parts, func(i, j int) bool {
		return len(parts[i].Observations) > len(parts[j].Observations)
	})

	out := make([]string, 0, len(parts))
	for _, cl := range parts {
		if len(cl.Observations) == 0 {
			continue
		}
		out = append(out, colorful.Color{R: cl.Center[0], G: cl.Center[1], B: cl.Center[2]}.Clamped().Hex())
	}
	return out, nil
}

// partition runs Lloyd's algorithm from farthest-first seeds. Seeding and
// tie-breaks only depend on observation order, so equal pixels always give
// equal clusters.
func partition(observations clusters.Observations, k int) (clusters.Clusters, error) {
	mean, err := observations.Center()
	if err != nil {
		return nil, err
	}
	cc := clusters.Clusters{{Center: mean}}
	for len(cc) < k {
		far, farDist := 0, -1.0
		for i, o := range observations {
			if d := o.Distance(cc[cc.Nearest(o)].Center); d > farDist {
				far, farDist = i, d
			}
		}
		cc = append(cc, clusters.Cluster{Center: observations[far].Coordinates()})
	}

	assigned := make([]int, len(observations))
	for i := range assigned {
		assigned[i] = -1
	}
	for range paletteIterations {
		cc.Reset()
		changed := false
		for i, o := range observations {
			n := cc.Nearest(o)
			cc[n].Append(o)
			if assigned[i] != n {
				assigned[i] = n
				changed = true
			}
		}
		if !changed {
			break
		}
		for i := range cc {
			if len(cc[i].Observations) > 0 {
				cc[i].Recenter()
			}
		}
	}
	return cc, nil
}

// IsNearBlack reports whether a hex colour is too dark to use as a page background.
func IsNearBlack(hex string) bool {
	c, err := colorful.Hex(hex)
	if err != nil {
		return true
	}
	l, _, _ := c.Lab()
	return l < 0.2
}

// LightColor returns the first of colors light enough to sit behind photos.
func LightColor(colors []string) (string, bool) {
	for _, hex := range colors {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		if l, _, _ := c.Lab(); l >= constants.MinBackgroundLightness {
			return hex, true
		}
	}
	return "", false
}
