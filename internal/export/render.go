/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"zoomview/internal/vector"
)

// Snapshot is the viewport as the engine last presented it.
type Snapshot struct {
	Image     *image.RGBA
	Transform vector.Affine2D
	Content   vector.Rect // content bounds in viewport coordinates
}

// RenderOptions control RenderViewport. Zero values pick a dark background
// and bilinear filtering.
type RenderOptions struct {
	Background color.Color
	Interp     draw.Interpolator
}

// RenderViewport resamples src under m into a viewport-sized image. Pixels
// the content does not cover keep the background colour.
func RenderViewport(src image.Image, m vector.Affine2D, viewport vector.Size, opt RenderOptions) Snapshot {
	w := int(math.Ceil(float64(viewport.W)))
	h := int(math.Ceil(float64(viewport.H)))
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))

	bg := opt.Background
	if bg == nil {
		bg = color.RGBA{R: 0x1e, G: 0x1e, B: 0x22, A: 0xff}
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	interp := opt.Interp
	if interp == nil {
		interp = draw.BiLinear
	}
	sb := src.Bounds()
	// content coordinates start at the source's Min corner
	e := float64(m.E) - float64(m.A)*float64(sb.Min.X) - float64(m.C)*float64(sb.Min.Y)
	f := float64(m.F) - float64(m.B)*float64(sb.Min.X) - float64(m.D)*float64(sb.Min.Y)
	s2d := f64.Aff3{
		float64(m.A), float64(m.C), e,
		float64(m.B), float64(m.D), f,
	}
	if !dst.Bounds().Empty() && !sb.Empty() && m.A != 0 && m.D != 0 {
		interp.Transform(dst, s2d, src, sb, draw.Over, nil)
	}
	content := m.MapRect(vector.R(0, 0, float32(sb.Dx()), float32(sb.Dy())))
	return Snapshot{Image: dst, Transform: m, Content: content}
}
