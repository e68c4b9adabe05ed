/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"zoomview/internal/config"
	"zoomview/internal/crash"
	"zoomview/internal/export"
	applog "zoomview/internal/log"
	"zoomview/internal/script"
	"zoomview/internal/storage"
	"zoomview/internal/telemetry"
	"zoomview/internal/ui"
	"zoomview/internal/vector"
	"zoomview/internal/version"
	"zoomview/internal/zoom"
)

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "ZoomView - pan/zoom image viewer")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  zoomview version|-v|--version                 Show version")
	fmt.Fprintln(w, "  zoomview fit <contentWxH> <viewportWxH>       Print the initial fit scale and content rectangle")
	fmt.Fprintln(w, "  zoomview replay <script.yaml> [out.png|.pdf]  Replay a gesture script, optionally writing the final view")
	fmt.Fprintln(w, "  zoomview history [<script.yaml>]              List recent replays")
	fmt.Fprintln(w, "  zoomview config [init]                        Print the effective config, or write it to the user config file")
	fmt.Fprintln(w, "  zoomview ui [<image>]                         Launch desktop viewer (build with -tags fyne)")
}

func main() {
	if code := run(os.Args[1:], os.Stdout); code != 0 {
		os.Exit(code)
	}
}

// run executes one CLI command and returns the process exit code.
func run(args []string, stdout io.Writer) int {
	cfg, cfgErr := config.Load()
	applog.Init(applog.FromConfig(cfg.Logging))
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	telemetry.NewDefault(telemetry.FromAppConfig(cfg))
	defer telemetry.Close()

	info := &crash.Info{}
	defer crash.Recover(info)

	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(stdout)
		return 0
	}

	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "fit":
		if len(args) < 3 {
			fmt.Fprintln(stdout, "fit requires <contentWxH> and <viewportWxH>")
			err = errUsage
			break
		}
		err = cmdFit(stdout, args[1], args[2])
	case "replay":
		if len(args) < 2 {
			fmt.Fprintln(stdout, "replay requires <script.yaml>")
			err = errUsage
			break
		}
		out := ""
		if len(args) >= 3 {
			out = args[2]
		}
		info.Content = args[1]
		err = cmdReplay(stdout, cfg, args[1], out)
	case "history":
		only := ""
		if len(args) >= 2 {
			only = args[1]
		}
		err = cmdHistory(stdout, cfg, only)
	case "config":
		err = cmdConfig(stdout, cfg, args[1:])
	case "ui":
		var img string
		if len(args) >= 2 {
			img = args[1]
		}
		info.Content = img
		err = ui.Run(img, cfg)
	default:
		fmt.Fprintf(stdout, "unknown command %q\n", args[0])
		err = errUsage
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		usage(stdout)
		return 2
	default:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(stdout, "Error:", err)
		return 1
	}
}

// parseDim reads "WxH" with positive float components.
func parseDim(s string) (vector.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return vector.Size{}, fmt.Errorf("%w: %q is not WxH", errUsage, s)
	}
	w, err1 := strconv.ParseFloat(ws, 32)
	h, err2 := strconv.ParseFloat(hs, 32)
	if err1 != nil || err2 != nil || !(w > 0) || !(h > 0) {
		return vector.Size{}, fmt.Errorf("%w: %q is not WxH", errUsage, s)
	}
	return vector.Size{W: float32(w), H: float32(h)}, nil
}

// staticHost presents fixed sizes to the engine.
type staticHost struct {
	viewport, content vector.Size
}

func (h staticHost) ViewportSize() vector.Size        { return h.viewport }
func (h staticHost) ContentSize() (vector.Size, bool) { return h.content, true }
func (h staticHost) ApplyTransform(vector.Affine2D)   {}

func cmdFit(w io.Writer, contentArg, viewportArg string) error {
	content, err := parseDim(contentArg)
	if err != nil {
		return err
	}
	viewport, err := parseDim(viewportArg)
	if err != nil {
		return err
	}
	e := zoom.New(staticHost{viewport: viewport, content: content}, zoom.DefaultParams())
	e.Layout()
	r, _ := e.ContentRect()
	fmt.Fprintf(w, "fit %.4f\n", e.InitialFitScale())
	fmt.Fprintf(w, "content x=%.2f y=%.2f w=%.2f h=%.2f\n", r.X, r.Y, r.W, r.H)
	return nil
}

func cmdReplay(w io.Writer, cfg config.AppConfig, path, out string) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "replay")
	s, err := script.Load(path)
	if err != nil {
		var perr script.Errors
		if errors.As(err, &perr) {
			for _, e := range perr {
				fmt.Fprintln(w, e.Error())
			}
		}
		return err
	}
	res, err := script.Run(s, script.Options{
		Params:    zoom.ParamsFromConfig(cfg.Engine),
		ImageSize: export.Size,
		Events:    telemetry.Event,
	})
	if err != nil {
		return err
	}

	name := res.Name
	if name == "" {
		name = filepath.Base(path)
	}
	fmt.Fprintf(w, "%s: %d steps, %d frames, %d ticks\n", name, len(s.Steps), res.Frames, res.Ticks)
	m := res.Transform
	fmt.Fprintf(w, "scale %.4f (fit %.4f) translate %.2f,%.2f\n", res.Scale, res.Fit, m.E, m.F)
	for _, f := range res.Failures {
		fmt.Fprintln(w, "FAIL", f.String())
	}
	l.Info("replay finished", slog.String("script", path), slog.Int("failures", len(res.Failures)))
	record(cfg, path, res)

	if out != "" {
		if err := writeView(w, cfg, s, res, out); err != nil {
			return err
		}
	}
	if !res.OK() {
		return fmt.Errorf("%d expectation(s) failed", len(res.Failures))
	}
	return nil
}

// historyKeep bounds the replay history.
const historyKeep = 500

// record appends the run to the replay history. Failures are logged only.
func record(cfg config.AppConfig, path string, res script.Result) {
	l := applog.WithOperation(applog.WithComponent("cli"), "history")
	dbPath, err := storage.PathFromConfig(cfg.General)
	if errors.Is(err, storage.ErrDisabled) {
		return
	}
	if err != nil {
		l.Warn("history unavailable", slog.Any("err", err))
		return
	}
	st, err := storage.Open(dbPath)
	if err != nil {
		l.Warn("history unavailable", slog.Any("err", err))
		return
	}
	defer st.Close()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	ctx := context.Background()
	_, err = st.Record(ctx, storage.Run{
		Script:   path,
		Name:     res.Name,
		Viewport: res.Viewport,
		Content:  res.Content,
		Scale:    res.Scale,
		Fit:      res.Fit,
		Frames:   res.Frames,
		Ticks:    res.Ticks,
		Failures: len(res.Failures),
	})
	if err != nil {
		l.Warn("record run failed", slog.Any("err", err))
		return
	}
	if _, err := st.Prune(ctx, historyKeep); err != nil {
		l.Warn("prune history failed", slog.Any("err", err))
	}
}

func cmdHistory(w io.Writer, cfg config.AppConfig, scriptPath string) error {
	dbPath, err := storage.PathFromConfig(cfg.General)
	if err != nil {
		return err
	}
	st, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	if scriptPath != "" {
		if abs, err := filepath.Abs(scriptPath); err == nil {
			scriptPath = abs
		}
	}
	runs, err := st.Recent(context.Background(), scriptPath, 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no replays recorded")
		return nil
	}
	for _, r := range runs {
		status := "ok"
		if !r.OK() {
			status = fmt.Sprintf("FAIL(%d)", r.Failures)
		}
		fmt.Fprintf(w, "%s  %-8s scale %.4f fit %.4f ticks %d  %s\n",
			r.At.Local().Format("2006-01-02 15:04:05"), status, r.Scale, r.Fit, r.Ticks, r.Script)
	}
	return nil
}

func writeView(w io.Writer, cfg config.AppConfig, s script.Script, res script.Result, out string) error {
	if s.ImagePath() == "" {
		fmt.Fprintln(w, "no image in script; snapshot skipped")
		return nil
	}
	img, _, err := export.Load(s.ImagePath())
	if err != nil {
		return err
	}
	opt := export.RenderOptions{}
	if bg, err := export.ParseColor(cfg.General.Background); err == nil {
		opt.Background = bg
	}
	snap := export.RenderViewport(img, res.Transform, res.Viewport, opt)
	switch strings.ToLower(filepath.Ext(out)) {
	case ".pdf":
		err = export.WritePDF(out, snap, export.PDFOptions{Title: res.Name, Guides: true})
	case ".png":
		err = export.WritePNG(out, snap.Image)
	default:
		return fmt.Errorf("%w: output must end in .png or .pdf", errUsage)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "wrote", out)
	return nil
}

func cmdConfig(w io.Writer, cfg config.AppConfig, args []string) error {
	if len(args) > 0 {
		if args[0] != "init" {
			return errUsage
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		p, _ := config.ConfigPath()
		fmt.Fprintln(w, "wrote", p)
		return nil
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
