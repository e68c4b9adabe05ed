//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"zoomview/internal/export"
	"zoomview/internal/gesture"
	"zoomview/internal/vector"
	"zoomview/internal/zoom"
)

// wheelBase is the zoom factor per scroll unit.
const wheelBase = 1.01

// ZoomImage shows one image and lets the user pan it with the mouse, zoom
// with the wheel and cycle zoom levels with a double click.
type ZoomImage struct {
	widget.BaseWidget

	engine *zoom.Engine
	driver *zoom.Driver
	cancel context.CancelFunc

	src     image.Image
	content vector.Size
	loaded  bool
	bg      color.Color

	m       vector.Affine2D
	laying  bool
	pressed bool
	start   time.Time

	// OnTransform is called after every transform change.
	OnTransform func(vector.Affine2D)
}

// NewZoomImage creates an empty viewer. post runs engine ticks on the UI
// goroutine; nil means fyne.Do.
func NewZoomImage(p zoom.Params, post func(func())) *ZoomImage {
	if post == nil {
		post = fyne.Do
	}
	z := &ZoomImage{m: vector.Identity, bg: color.RGBA{R: 30, G: 30, B: 34, A: 255}, start: time.Now()}
	z.engine = zoom.New(z, p)
	z.driver = zoom.NewDriver(z.engine, z.engine.Params().TickPeriod, post)
	z.ExtendBaseWidget(z)
	return z
}

// SetImage replaces the content. The first layout with a usable size fits it.
func (z *ZoomImage) SetImage(img image.Image) {
	z.src = img
	z.loaded = img != nil
	if img != nil {
		b := img.Bounds()
		z.content = vector.Size{W: float32(b.Dx()), H: float32(b.Dy())}
	}
	z.driver.Stop()
	z.engine.ContentChanged()
	z.engine.Layout()
	z.Refresh()
}

// SetBackground sets the colour shown around the content.
func (z *ZoomImage) SetBackground(c color.Color) {
	z.bg = c
	z.Refresh()
}

// SetEventFunc forwards engine milestones, e.g. to telemetry.
func (z *ZoomImage) SetEventFunc(fn zoom.EventFunc) { z.engine.SetEventFunc(fn) }

func (z *ZoomImage) Image() image.Image         { return z.src }
func (z *ZoomImage) Transform() vector.Affine2D { return z.m }

// State is a one-line description of the viewer for crash reports.
func (z *ZoomImage) State() string {
	e := z.engine
	return fmt.Sprintf("content=%vx%v viewport=%vx%v scale=%.4f fit=%.4f fitted=%t animating=%t m=%+v",
		z.content.W, z.content.H, z.Size().Width, z.Size().Height,
		e.Scale(), e.InitialFitScale(), e.Fitted(), e.Animating(), e.Transform())
}

// Reset drops any animation and fits the content again.
func (z *ZoomImage) Reset() {
	z.driver.Stop()
	z.engine.ContentChanged()
	z.engine.Layout()
}

// ZoomBy scales about the viewport centre, clamped like a pinch.
func (z *ZoomImage) ZoomBy(factor float32) {
	s := z.Size()
	z.engine.Pinch(factor, vector.Pt{X: s.Width / 2, Y: s.Height / 2})
}

// Snapshot renders what the viewer currently shows.
func (z *ZoomImage) Snapshot() (export.Snapshot, bool) {
	if !z.loaded || !z.engine.Fitted() {
		return export.Snapshot{}, false
	}
	return export.RenderViewport(z.src, z.m, z.ViewportSize(), export.RenderOptions{Background: z.bg}), true
}

// ViewportSize implements zoom.Host.
func (z *ZoomImage) ViewportSize() vector.Size {
	s := z.Size()
	return vector.Size{W: s.Width, H: s.Height}
}

// ContentSize implements zoom.Host.
func (z *ZoomImage) ContentSize() (vector.Size, bool) { return z.content, z.loaded }

// ApplyTransform implements zoom.Host.
func (z *ZoomImage) ApplyTransform(m vector.Affine2D) {
	z.m = m
	if z.OnTransform != nil {
		z.OnTransform(m)
	}
	if !z.laying {
		z.Refresh()
	}
}

func (z *ZoomImage) now() time.Duration { return time.Since(z.start) }

func (z *ZoomImage) frame(a gesture.Action, pos fyne.Position) {
	z.engine.HandleFrame(gesture.Frame{
		Action: a,
		Points: []vector.Pt{{X: pos.X, Y: pos.Y}},
		At:     z.now(),
	})
	z.animate()
}

func (z *ZoomImage) animate() {
	if !z.engine.Animating() || z.driver.Running() {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	if z.cancel != nil {
		z.cancel()
	}
	z.cancel = cancel
	z.driver.Kick(ctx)
}

// MouseDown implements desktop.Mouseable.
func (z *ZoomImage) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	z.pressed = true
	z.frame(gesture.Down, e.Position)
}

// MouseUp implements desktop.Mouseable.
func (z *ZoomImage) MouseUp(e *desktop.MouseEvent) {
	if !z.pressed {
		return
	}
	z.pressed = false
	z.frame(gesture.Up, e.Position)
}

// Dragged implements fyne.Draggable.
func (z *ZoomImage) Dragged(e *fyne.DragEvent) {
	if !z.pressed {
		// some drivers start the drag before MouseDown arrives
		z.pressed = true
		z.frame(gesture.Down, e.Position.Subtract(e.Dragged))
	}
	z.frame(gesture.Move, e.Position)
}

// DragEnd implements fyne.Draggable. The position is not reported, so the
// pointer is lifted where the last move left it.
func (z *ZoomImage) DragEnd() {
	if !z.pressed {
		return
	}
	z.pressed = false
	z.engine.HandleFrame(gesture.Frame{Action: gesture.Cancel, At: z.now()})
}

// Scrolled zooms about the cursor.
func (z *ZoomImage) Scrolled(e *fyne.ScrollEvent) {
	f := float32(math.Pow(wheelBase, float64(e.Scrolled.DY)))
	z.engine.Pinch(f, vector.Pt{X: e.Position.X, Y: e.Position.Y})
}

// CreateRenderer implements fyne.Widget.
func (z *ZoomImage) CreateRenderer() fyne.WidgetRenderer {
	z.engine.Attach()
	bg := canvas.NewRectangle(z.bg)
	img := canvas.NewImageFromImage(z.src)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleSmooth
	return &zoomImageRenderer{z: z, bg: bg, img: img, objects: []fyne.CanvasObject{bg, img}}
}

type zoomImageRenderer struct {
	z       *ZoomImage
	bg      *canvas.Rectangle
	img     *canvas.Image
	objects []fyne.CanvasObject
}

func (r *zoomImageRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *zoomImageRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 150) }

// Destroy stops the animation clock; the widget is gone.
func (r *zoomImageRenderer) Destroy() {
	r.z.engine.Detach()
	r.z.driver.Stop()
	if r.z.cancel != nil {
		r.z.cancel()
	}
}

func (r *zoomImageRenderer) Layout(size fyne.Size) {
	r.z.laying = true
	r.z.engine.Layout()
	r.z.laying = false
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.place()
}

func (r *zoomImageRenderer) Refresh() {
	r.bg.FillColor = r.z.bg
	if r.img.Image != r.z.src {
		r.img.Image = r.z.src
	}
	r.place()
	canvas.Refresh(r.bg)
	canvas.Refresh(r.img)
}

// place maps the content rectangle through the current transform.
func (r *zoomImageRenderer) place() {
	if !r.z.loaded {
		r.img.Hide()
		return
	}
	rect := r.z.m.MapRect(vector.R(0, 0, r.z.content.W, r.z.content.H))
	r.img.Move(fyne.NewPos(rect.X, rect.Y))
	r.img.Resize(fyne.NewSize(rect.W, rect.H))
	r.img.Show()
}

func statusLine(name string, z *ZoomImage) string {
	e := z.engine
	if !e.Fitted() {
		return name
	}
	return fmt.Sprintf("%s  %.0f%%  (fit %.0f%%)", name, e.Scale()*100, e.InitialFitScale()*100)
}

// writeSnapshot picks the encoder from the file extension.
func writeSnapshot(path string, snap export.Snapshot, title string) error {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return export.WritePDF(path, snap, export.PDFOptions{Title: title})
	}
	return export.WritePNG(path, snap.Image)
}
