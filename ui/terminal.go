package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/rs/zerolog/log"

	"snake-matrix/game/types"
)

// cellWidth is how many terminal columns one LED takes; terminal cells are
// about twice as tall as they are wide.
const cellWidth = 2

// Terminal draws the matrix with block glyphs in a terminal. Key presses are
// read by a goroutine and forwarded to the sink.
type Terminal struct {
	sink   TurnSink
	matrix types.Matrix
	info   Info

	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// NewTerminal takes over the terminal until Close.
func NewTerminal(sink TurnSink) (*Terminal, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("termbox init: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()

	t := &Terminal{
		sink: sink,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.poll()
	return t, nil
}

func (t *Terminal) poll() {
	defer close(t.done)
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventKey:
			if isQuitKey(ev) {
				t.quitOnce.Do(func() { close(t.quit) })
				return
			}
			if d, ok := keyDirection(ev); ok {
				t.sink.Set(d)
			}
		case termbox.EventError:
			log.Error().Err(ev.Err).Msg("terminal input failed")
			t.quitOnce.Do(func() { close(t.quit) })
			return
		case termbox.EventInterrupt:
			return
		}
	}
}

func isQuitKey(ev termbox.Event) bool {
	return ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' || ev.Ch == 'Q'
}

// keyDirection maps arrow keys and WASD to a turn.
func keyDirection(ev termbox.Event) (types.Direction, bool) {
	switch ev.Key {
	case termbox.KeyArrowUp:
		return types.Up, true
	case termbox.KeyArrowRight:
		return types.Right, true
	case termbox.KeyArrowDown:
		return types.Down, true
	case termbox.KeyArrowLeft:
		return types.Left, true
	}
	switch ev.Ch {
	case 'w', 'W':
		return types.Up, true
	case 'd', 'D':
		return types.Right, true
	case 's', 'S':
		return types.Down, true
	case 'a', 'A':
		return types.Left, true
	}
	return types.None, false
}

// glyph picks a block by brightness so dim body cells and bright food differ
// even without colour.
func glyph(level uint8) (rune, termbox.Attribute) {
	switch {
	case level == 0:
		return '·', termbox.ColorDefault
	case level <= 3:
		return '░', termbox.ColorRed
	case level <= 6:
		return '▓', termbox.ColorRed
	}
	return '█', termbox.ColorRed | termbox.AttrBold
}

func (t *Terminal) Show(m types.Matrix) {
	t.matrix = m
	t.render()
}

func (t *Terminal) Clear() {
	if len(t.matrix) > 0 {
		t.matrix = types.NewMatrix(t.matrix.Width(), t.matrix.Height())
	}
	t.render()
}

func (t *Terminal) Annotate(info Info) {
	t.info = info
}

func (t *Terminal) render() {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		log.Warn().Err(err).Msg("terminal clear failed")
		return
	}
	for y, row := range t.matrix {
		for x, level := range row {
			ch, fg := glyph(level)
			for i := 0; i < cellWidth; i++ {
				termbox.SetCell(x*cellWidth+i, y, ch, fg, termbox.ColorDefault)
			}
		}
	}

	textX := t.matrix.Width()*cellWidth + 3
	lines := []string{
		fmt.Sprintf("round %d  %s", t.info.Round, t.info.Status),
		fmt.Sprintf("score %d  level %d", t.info.Score, t.info.Level),
		fmt.Sprintf("games %d  wins %d", t.info.Games, t.info.Wins),
		fmt.Sprintf("best %d  avg %.2f", t.info.Best, t.info.Average),
	}
	if t.info.Autoplay {
		lines = append(lines, "autopilot")
	}
	lines = append(lines, "", "arrows/wasd, q quits")
	for y, line := range lines {
		for x, ch := range []rune(line) {
			termbox.SetCell(textX+x, y, ch, termbox.ColorDefault, termbox.ColorDefault)
		}
	}
	if err := termbox.Flush(); err != nil {
		log.Warn().Err(err).Msg("terminal flush failed")
	}
}

// Wait sleeps for d unless the player quits or ctx ends first.
func (t *Terminal) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-t.quit:
		return ErrQuit
	default:
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.quit:
		return ErrQuit
	case <-timer.C:
		return nil
	}
}

// Close stops the input goroutine and gives the terminal back.
func (t *Terminal) Close() error {
	select {
	case <-t.done:
	default:
		termbox.Interrupt()
		<-t.done
	}
	termbox.Close()
	return nil
}
