// Command mapviewer is an interactive demo of the map widget: pan and zoom
// an OpenStreetMap base map, edit areas, draw freehand, place labels, and
// save or load everything as GeoJSON.
//
// Keys: 1 pan, 2 modify areas, 3 draw, 4 erase, 5 place text; S saves to
// the GeoJSON file, L loads it. While a text dialog is open, type to edit,
// Enter commits, Escape cancels.
//
// Environment (also read from .env): MAPVIEW_TILE_URL overrides the tile
// server base URL, MAPVIEW_GEOJSON the save file path.
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"

	"mapview"
	"mapview/geom"
	"mapview/layers"
	maprender "mapview/render"
	ebitenrender "mapview/render/ebiten"
	"mapview/tiles"
)

const (
	screenWidth  = 1024
	screenHeight = 768
)

type tool int

const (
	toolPan tool = iota
	toolAreas
	toolDraw
	toolErase
	toolText
)

type app struct {
	m       *mapview.Map
	input   ebitenrender.InputState
	tool    tool
	areas   *layers.AreaLayer
	drawing *layers.DrawingLayer
	text    *layers.TextLayer
	file    string
	log     *slog.Logger
}

func (a *app) Update() error {
	a.handleKeys()

	frame := a.input.Frame(geom.NewRect(0, 0, screenWidth, screenHeight))
	if a.text.Editing() != nil {
		// The dialog owns the keyboard; swallow pointer gestures too so the
		// map does not move under it.
		frame.Pointer = maprender.Pointer{Hovered: frame.Pointer.Hovered}
	}
	a.m.Update(frame)
	if url, ok := a.m.AttributionClicked(); ok {
		a.log.Info("attribution", "url", url)
	}
	return nil
}

func (a *app) handleKeys() {
	if session := a.text.Editing(); session != nil {
		a.handleDialogKeys(session)
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		a.setTool(toolPan)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		a.setTool(toolAreas)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		a.setTool(toolDraw)
	case inpututil.IsKeyJustPressed(ebiten.Key4):
		a.setTool(toolErase)
	case inpututil.IsKeyJustPressed(ebiten.Key5):
		a.setTool(toolText)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		a.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		a.load()
	}
}

func (a *app) handleDialogKeys(session *layers.EditSession) {
	for _, r := range ebiten.AppendInputChars(nil) {
		session.Draft.Text += string(r)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		session.Draft.Text = trimLastRune(session.Draft.Text)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.text.CommitEdit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.text.CancelEdit()
	}
}

// trimLastRune removes the final rune, not the final byte, so multi-byte
// characters delete cleanly.
func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

func (a *app) setTool(t tool) {
	a.tool = t
	a.areas.Mode = layers.AreaDisabled
	a.drawing.Mode = layers.DrawingDisabled
	a.text.Mode = layers.TextDisabled

	switch t {
	case toolAreas:
		a.areas.Mode = layers.AreaModify
	case toolDraw:
		a.drawing.Mode = layers.DrawingDraw
	case toolErase:
		a.drawing.Mode = layers.DrawingErase
	case toolText:
		a.text.Mode = layers.TextModify
	}
}

func (a *app) save() {
	fc := a.areas.ExportGeoJSON("areas")
	for _, f := range a.drawing.ExportGeoJSON("drawing").Features {
		fc.Append(f)
	}
	for _, f := range a.text.ExportGeoJSON("text").Features {
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		a.log.Error("encode geojson", "error", err)
		return
	}
	if err := os.WriteFile(a.file, data, 0o644); err != nil {
		a.log.Error("write geojson", "path", a.file, "error", err)
		return
	}
	a.log.Info("saved", "path", a.file, "features", len(fc.Features))
}

func (a *app) load() {
	data, err := os.ReadFile(a.file)
	if err != nil {
		a.log.Error("read geojson", "path", a.file, "error", err)
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		a.log.Error("parse geojson", "path", a.file, "error", err)
		return
	}

	a.areas.Clear()
	a.drawing.Clear()
	a.text.Clear()
	if err := a.areas.ImportGeoJSON(fc, "areas"); err != nil {
		a.log.Error("import areas", "error", err)
	}
	if err := a.drawing.ImportGeoJSON(fc, "drawing"); err != nil {
		a.log.Error("import drawing", "error", err)
	}
	if err := a.text.ImportGeoJSON(fc, "text"); err != nil {
		a.log.Error("import text", "error", err)
	}
	a.log.Info("loaded", "path", a.file, "features", len(fc.Features))
}

func (a *app) Draw(screen *ebiten.Image) {
	painter := ebitenrender.NewPainter(screen)
	a.m.Draw(painter)
	a.drawStatus(painter)
}

func (a *app) drawStatus(painter *ebitenrender.Painter) {
	names := map[tool]string{
		toolPan:   "pan",
		toolAreas: "areas",
		toolDraw:  "draw",
		toolErase: "erase",
		toolText:  "text",
	}
	status := "1-5 tool: " + names[a.tool] + "  S save  L load"
	if pos, ok := a.m.MouseGeo(); ok {
		status += fmt.Sprintf("  %.5f, %.5f", pos.Lat, pos.Lon)
	}
	w, _ := painter.MeasureText(status, 13)
	painter.Text(status, geom.Point{X: w/2 + 8, Y: 14}, 13,
		color.RGBA{20, 20, 20, 255}, color.RGBA{255, 255, 255, 200})

	if session := a.text.Editing(); session != nil {
		prompt := "text: " + session.Draft.Text + "_  (Enter commits, Esc cancels)"
		painter.Text(prompt, geom.Point{X: screenWidth / 2, Y: screenHeight - 20}, 16,
			color.RGBA{20, 20, 20, 255}, color.RGBA{255, 255, 160, 230})
	}
}

func (a *app) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	_ = godotenv.Load(".env")

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	source := tiles.OpenStreetMap{BaseURL: os.Getenv("MAPVIEW_TILE_URL")}
	file := os.Getenv("MAPVIEW_GEOJSON")
	if file == "" {
		file = "mapviewer.geojson"
	}

	m := mapview.New(source, ebitenrender.NewRenderer(), mapview.WithLogger(log))
	m.Viewport().Zoom = 13

	areas := layers.NewAreaLayer()
	drawing := layers.NewDrawingLayer(layers.Stroke{Width: 2, Color: color.RGBA{220, 30, 30, 255}})
	text := layers.NewTextLayer()
	areas.SetLogger(log)
	drawing.SetLogger(log)
	text.SetLogger(log)

	if err := m.AddLayer("areas", areas); err != nil {
		log.Error("add layer", "error", err)
		os.Exit(1)
	}
	if err := m.AddLayer("drawing", drawing); err != nil {
		log.Error("add layer", "error", err)
		os.Exit(1)
	}
	if err := m.AddLayer("text", text); err != nil {
		log.Error("add layer", "error", err)
		os.Exit(1)
	}

	a := &app{
		m:       m,
		areas:   areas,
		drawing: drawing,
		text:    text,
		file:    file,
		log:     log,
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("mapviewer")
	if err := ebiten.RunGame(a); err != nil {
		log.Error("run", "error", err)
		os.Exit(1)
	}
}
