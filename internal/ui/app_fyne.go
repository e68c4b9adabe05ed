//go:build fyne && cgo

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
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"zoomview/internal/config"
	"zoomview/internal/crash"
	"zoomview/internal/export"
	applog "zoomview/internal/log"
	"zoomview/internal/telemetry"
	"zoomview/internal/vector"
	"zoomview/internal/zoom"
)

// keyZoomStep is the factor applied by the zoom shortcuts.
const keyZoomStep = 1.25

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Run opens the viewer window. imagePath may be empty; File > Open picks one later.
func Run(imagePath string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("image", imagePath))

	info := &crash.Info{Content: imagePath}
	defer crash.Recover(info)

	fyneApp := app.NewWithID("zoomview")
	w := fyneApp.NewWindow("ZoomView")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 400 {
		winW = 400
	}
	if winH < 300 {
		winH = 300
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	status := widget.NewLabel("No image")
	z := NewZoomImage(zoom.ParamsFromConfig(cfg.Engine), fyne.Do)
	info.State = z.State
	if bg, err := export.ParseColor(cfg.General.Background); err == nil {
		z.SetBackground(bg)
	} else if cfg.General.Background != "" {
		l.Warn("ignoring background colour", slog.String("value", cfg.General.Background), slog.Any("err", err))
	}
	z.SetEventFunc(func(name string, props map[string]any) {
		l.Debug("engine event", slog.String("event", name), slog.Any("props", props))
		telemetry.Event("zoom."+name, props)
	})

	current := ""
	updateStatus := func() {
		if current == "" {
			status.SetText("No image")
			return
		}
		status.SetText(statusLine(filepath.Base(current), z))
	}
	z.OnTransform = func(vector.Affine2D) { updateStatus() }

	var rebuildMenu func()
	open := func(path string) {
		img, format, err := export.Load(path)
		if err != nil {
			l.Error("open image failed", slog.String("path", path), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		current = path
		info.Content = path
		w.SetTitle("ZoomView - " + filepath.Base(path))
		z.SetImage(img)
		updateStatus()
		addRecentImage(prefs, path)
		rebuildMenu()
		b := img.Bounds()
		l.Info("image opened", slog.String("path", path), slog.String("format", format), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))
		telemetry.Event("image.open", map[string]any{"format": format})
	}

	openItem := fyne.NewMenuItem("Open…", func() {
		fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if r == nil {
				return
			}
			path := r.URI().Path()
			_ = r.Close()
			open(path)
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter(imageExts))
		fd.Show()
	})
	exportItem := fyne.NewMenuItem("Export View…", func() {
		snap, ok := z.Snapshot()
		if !ok {
			dialog.ShowInformation("Export View", "Open an image first.", w)
			return
		}
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			if err := writeSnapshot(path, snap, filepath.Base(current)); err != nil {
				l.Error("export failed", slog.String("path", path), slog.Any("err", err))
				dialog.ShowError(err, w)
				return
			}
			l.Info("view exported", slog.String("path", path))
			telemetry.Event("export", map[string]any{"ext": strings.ToLower(filepath.Ext(path))})
		}, w)
		fd.SetFileName("view.png")
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".pdf"}))
		fd.Show()
	})
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	exportItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierControl}

	zoomInItem := fyne.NewMenuItem("Zoom In", func() { z.ZoomBy(keyZoomStep) })
	zoomOutItem := fyne.NewMenuItem("Zoom Out", func() { z.ZoomBy(1 / keyZoomStep) })
	fitItem := fyne.NewMenuItem("Fit to Window", func() { z.Reset() })
	zoomInItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyEqual, Modifier: fyne.KeyModifierControl}
	zoomOutItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyMinus, Modifier: fyne.KeyModifierControl}
	fitItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.Key0, Modifier: fyne.KeyModifierControl}
	viewMenu := fyne.NewMenu("View", zoomInItem, zoomOutItem, fitItem)

	rebuildMenu = func() {
		recentItem := fyne.NewMenuItem("Open Recent", nil)
		var items []*fyne.MenuItem
		for _, p := range loadRecentImages(prefs) {
			p := p
			items = append(items, fyne.NewMenuItem(p, func() { open(p) }))
		}
		if len(items) == 0 {
			none := fyne.NewMenuItem("(none)", nil)
			none.Disabled = true
			items = append(items, none)
		}
		recentItem.ChildMenu = fyne.NewMenu("Open Recent", items...)
		fileMenu := fyne.NewMenu("File", openItem, recentItem, fyne.NewMenuItemSeparator(), exportItem)
		w.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu))
	}
	rebuildMenu()

	// Menu shortcuts are only live on some drivers; register them on the canvas too.
	for _, it := range []*fyne.MenuItem{openItem, exportItem, zoomInItem, zoomOutItem, fitItem} {
		action := it.Action
		w.Canvas().AddShortcut(it.Shortcut, func(fyne.Shortcut) { action() })
	}

	w.SetContent(container.NewBorder(nil, status, nil, nil, z))
	if imagePath != "" {
		open(imagePath)
	}
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}
