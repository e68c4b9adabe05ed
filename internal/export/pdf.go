/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"zoomview/internal/version"
)

// PDFOptions controls PDF snapshots. The page is the viewport with one point
// per pixel.
//
// Guides draws the mapped content bounds as a red hairline and prints the
// current scale in the top-left corner.
type PDFOptions struct {
	Title  string
	Guides bool
}

// WritePDF writes snap as a single-page PDF at path.
func WritePDF(path string, snap Snapshot, opt PDFOptions) error {
	if snap.Image == nil || snap.Image.Bounds().Empty() {
		return fmt.Errorf("empty snapshot")
	}
	b := snap.Image.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var buf bytes.Buffer
	if err := png.Encode(&buf, snap.Image); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	title := opt.Title
	if title == "" {
		title = "Viewport snapshot"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator(version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

	imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("viewport", imgOpt, &buf)
	pdf.ImageOptions("viewport", 0, 0, w, h, false, imgOpt, 0, "")

	if opt.Guides {
		r := snap.Content
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(float64(r.X), float64(r.Y), float64(r.W), float64(r.H), "D")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(255, 0, 0)
		pdf.Text(4, 12, fmt.Sprintf("scale %.3f", snap.Transform.ScaleX()))
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
