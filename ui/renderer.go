package ui

import (
	"context"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"snake-matrix/game"
	"snake-matrix/game/types"
)

const (
	borderPadding = 10
	// unlitAlpha keeps dark LEDs faintly visible, like a real panel.
	unlitAlpha = 0.08
	targetFPS  = 60
)

var ledColor = rl.Red

// Window draws the matrix as a grid of round red LEDs with a stats panel on
// the right. All calls must come from the goroutine that created it.
type Window struct {
	sink   TurnSink
	matrix types.Matrix
	info   Info

	panelWidth  int
	panelHeight int

	cellSize     int32
	screenWidth  int32
	screenHeight int32
	gameWidth    int32
	statsPanel   int32
	offsetX      int32
	offsetY      int32
}

// NewWindow opens a resizable window. Key presses are forwarded to sink.
func NewWindow(width, height int32, title string, sink TurnSink) *Window {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(width, height, title)
	rl.SetTargetFPS(targetFPS)

	w := &Window{sink: sink}
	w.UpdateDimensions()
	return w
}

func (w *Window) UpdateDimensions() {
	w.screenWidth = int32(rl.GetScreenWidth())
	w.screenHeight = int32(rl.GetScreenHeight())
	w.statsPanel = w.screenWidth / 4
	w.gameWidth = w.screenWidth - w.statsPanel
}

// Show replaces the frame being drawn.
func (w *Window) Show(m types.Matrix) {
	w.matrix = m
}

// Clear blanks the panel.
func (w *Window) Clear() {
	w.matrix = nil
}

func (w *Window) Annotate(info Info) {
	w.info = info
}

// Wait keeps drawing frames and polling keys for d.
func (w *Window) Wait(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		if w.pollKeys() {
			return ErrQuit
		}
		w.draw()
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return nil
		}
	}
}

func (w *Window) Close() error {
	rl.CloseWindow()
	return nil
}

// pollKeys reports whether the player wants to quit.
func (w *Window) pollKeys() bool {
	if rl.WindowShouldClose() || rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	keys := []struct {
		keys []int32
		dir  types.Direction
	}{
		{[]int32{rl.KeyUp, rl.KeyW}, types.Up},
		{[]int32{rl.KeyRight, rl.KeyD}, types.Right},
		{[]int32{rl.KeyDown, rl.KeyS}, types.Down},
		{[]int32{rl.KeyLeft, rl.KeyA}, types.Left},
	}
	for _, k := range keys {
		for _, key := range k.keys {
			if rl.IsKeyPressed(key) {
				w.sink.Set(k.dir)
			}
		}
	}
	return false
}

func (w *Window) draw() {
	if rl.IsWindowResized() {
		w.UpdateDimensions()
	}
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	fontSize := min(w.screenHeight/25, w.statsPanel/10)
	lineHeight := fontSize + fontSize/2

	w.drawMatrix()
	w.drawStatsPanel(fontSize, lineHeight)
	rl.EndDrawing()
}

// drawMatrix keeps the panel size of the last frame so a cleared panel still
// shows dark LEDs.
func (w *Window) drawMatrix() {
	if len(w.matrix) > 0 {
		w.panelWidth, w.panelHeight = w.matrix.Width(), w.matrix.Height()
	}
	w.drawLEDs(w.matrix, w.panelWidth, w.panelHeight)
}

func (w *Window) drawLEDs(m types.Matrix, width, height int) {
	if width == 0 || height == 0 {
		return
	}
	availableWidth := w.gameWidth - borderPadding*2
	availableHeight := w.screenHeight - borderPadding*2
	w.cellSize = min(availableWidth/int32(width), availableHeight/int32(height))
	w.offsetX = borderPadding + (availableWidth-w.cellSize*int32(width))/2
	w.offsetY = borderPadding + (availableHeight-w.cellSize*int32(height))/2

	radius := float32(w.cellSize) * 0.4
	half := w.cellSize / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var level uint8
			if len(m) > 0 {
				level = m[y][x]
			}
			rl.DrawCircle(
				w.offsetX+int32(x)*w.cellSize+half,
				w.offsetY+int32(y)*w.cellSize+half,
				radius, ledShade(level))
		}
	}
}

// ledShade maps a brightness level to the LED colour.
func ledShade(level uint8) rl.Color {
	if level == 0 {
		return rl.Fade(ledColor, unlitAlpha)
	}
	if level > game.MaxBrightness {
		level = game.MaxBrightness
	}
	alpha := unlitAlpha + (1-unlitAlpha)*float32(level)/float32(game.MaxBrightness)
	return rl.Fade(ledColor, alpha)
}

func (w *Window) drawStatsPanel(fontSize, lineHeight int32) {
	statsX := w.gameWidth + 5
	statsY := int32(10)
	rl.DrawRectangle(statsX-5, 0, w.statsPanel+5, w.screenHeight, rl.DarkGray)

	lines := []string{
		fmt.Sprintf("Round %d", w.info.Round),
		fmt.Sprintf("Score: %d", w.info.Score),
		fmt.Sprintf("Level: %d", w.info.Level),
		w.info.Status.String(),
		"",
		"Session:",
		fmt.Sprintf("Games: %d", w.info.Games),
		fmt.Sprintf("Wins: %d", w.info.Wins),
		fmt.Sprintf("Best: %d", w.info.Best),
		fmt.Sprintf("Avg: %.2f", w.info.Average),
	}
	if w.info.Autoplay {
		lines = append(lines, "", "Autopilot")
	}
	for _, line := range lines {
		rl.DrawText(line, statsX, statsY, fontSize, rl.White)
		statsY += lineHeight
	}
	rl.DrawText("Arrows/WASD, Q quits", statsX, w.screenHeight-fontSize-5, fontSize/2+fontSize/4, rl.LightGray)
}
