package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/keyseq-go"
)

const (
	windowW      = 960
	windowH      = 480
	uiSampleRate = 48000

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	// firstKey is the physical key number of the leftmost on-screen key.
	firstKey  = 40
	numKeys   = 25
	whiteKeyW = 52
	keyboardH = 200
)

var (
	bgColor       = color.RGBA{192, 192, 192, 255}
	panelColor    = color.RGBA{192, 192, 192, 255}
	borderColor   = color.RGBA{128, 128, 128, 255}
	bevelLight    = color.RGBA{255, 255, 255, 255}
	bevelDarker   = color.RGBA{64, 64, 64, 255}
	sunkenBgColor = color.RGBA{24, 24, 32, 255}
	whiteKeyColor = color.RGBA{240, 240, 232, 255}
	blackKeyColor = color.RGBA{24, 24, 24, 255}
	heldKeyColor  = color.RGBA{0, 0, 128, 255}
	recColor      = color.RGBA{160, 0, 0, 255}
)

// pianoKeys maps the two letter rows onto the on-screen keys, lowest first.
var pianoKeys = [numKeys]ebiten.Key{
	ebiten.KeyZ, ebiten.KeyS, ebiten.KeyX, ebiten.KeyD, ebiten.KeyC, ebiten.KeyV,
	ebiten.KeyG, ebiten.KeyB, ebiten.KeyH, ebiten.KeyN, ebiten.KeyJ, ebiten.KeyM,
	ebiten.KeyQ, ebiten.Key2, ebiten.KeyW, ebiten.Key3, ebiten.KeyE, ebiten.KeyR,
	ebiten.Key5, ebiten.KeyT, ebiten.Key6, ebiten.KeyY, ebiten.Key7, ebiten.KeyU,
	ebiten.KeyI,
}

var commandKeys = map[ebiten.Key]keyseq.Command{
	ebiten.KeyF1:         keyseq.CmdRec,
	ebiten.KeyF2:         keyseq.CmdPlay,
	ebiten.KeyF3:         keyseq.CmdStop,
	ebiten.KeyF4:         keyseq.CmdMetronome,
	ebiten.KeyF5:         keyseq.CmdMeasure,
	ebiten.KeyF6:         keyseq.CmdTempoUp,
	ebiten.KeyF7:         keyseq.CmdTempoDown,
	ebiten.KeyHome:       keyseq.CmdFirst,
	ebiten.KeyEnd:        keyseq.CmdLast,
	ebiten.KeyArrowLeft:  keyseq.CmdPrev,
	ebiten.KeyArrowRight: keyseq.CmdNext,
	ebiten.KeyDelete:     keyseq.CmdDelete,
	ebiten.KeyF12:        keyseq.CmdClear,
}

type button struct {
	label string
	cmd   keyseq.Command
}

var transportButtons = []button{
	{"Rec", keyseq.CmdRec},
	{"Play", keyseq.CmdPlay},
	{"Stop", keyseq.CmdStop},
	{"|<", keyseq.CmdFirst},
	{"<", keyseq.CmdPrev},
	{">", keyseq.CmdNext},
	{">|", keyseq.CmdLast},
	{"Del", keyseq.CmdDelete},
	{"Clr", keyseq.CmdClear},
	{"Met", keyseq.CmdMetronome},
}

var synthModes = []keyseq.SynthMode{
	keyseq.SynthModeAdditive,
	keyseq.SynthModeFM,
	keyseq.SynthModeWavetable,
}

type game struct {
	player *keyseq.Player
	alerts <-chan keyseq.Alert
	modeIx int
	volume uint8

	held      [numKeys]bool
	mouseKey  int
	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
}

func newGame(mode int) (*game, error) {
	g := &game{
		modeIx:    mode,
		mouseKey:  -1,
		status:    "Ready",
		textCache: make(map[string]*ebiten.Image, 256),
	}
	if err := g.rebuildPlayer(nil); err != nil {
		return nil, err
	}
	return g, nil
}

// rebuildPlayer replaces the running player, carrying the event log across.
func (g *game) rebuildPlayer(events []keyseq.Event) error {
	pl, err := keyseq.NewPlayer(
		keyseq.WithSynthMode(synthModes[g.modeIx]),
		keyseq.WithOutputRate(uiSampleRate),
	)
	if err != nil {
		return err
	}
	pl.SetMasterVolume(g.volume)
	if len(events) > 0 {
		if err := pl.Import(events); err != nil {
			return err
		}
	}
	if err := pl.Start(); err != nil {
		return err
	}
	g.player = pl
	g.alerts = pl.Watch()
	return nil
}

func (g *game) cycleMode() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	events, err := g.player.Export(ctx)
	if err != nil {
		g.setError(err.Error())
		return
	}
	_ = g.player.Stop()
	g.modeIx = (g.modeIx + 1) % len(synthModes)
	if err := g.rebuildPlayer(events); err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus("Mode " + string(synthModes[g.modeIx]))
}

func (g *game) Update() error {
	g.pollAlerts()
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) pollAlerts() {
	for {
		select {
		case a := <-g.alerts:
			if a == keyseq.AlertVoiceStolen {
				continue
			}
			g.setStatus(a.String())
		default:
			return
		}
	}
}

func (g *game) press(i int, pressed bool) {
	if g.held[i] == pressed {
		return
	}
	if err := g.player.KeyEvent(keyseq.KeyNote(firstKey+i), pressed); err != nil {
		g.setError(err.Error())
		return
	}
	g.held[i] = pressed
}

func (g *game) handleKeys() {
	for i, k := range pianoKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.press(i, true)
		} else if inpututil.IsKeyJustReleased(k) {
			g.press(i, false)
		}
	}
	for k, cmd := range commandKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.command(cmd)
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.cycleMode()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && g.volume > 0:
		g.volume--
		g.player.SetMasterVolume(g.volume)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && g.volume < 8:
		g.volume++
		g.player.SetMasterVolume(g.volume)
	}
}

func (g *game) command(cmd keyseq.Command) {
	if err := g.player.Command(cmd); err != nil {
		g.setError(err.Error())
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for i, r := range l.buttons {
			if pointInRect(mx, my, r) {
				g.command(transportButtons[i].cmd)
				return
			}
		}
		if pointInRect(mx, my, l.mode) {
			g.cycleMode()
			return
		}
	}
	key := -1
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		key = keyAt(mx, my, l.keyboard)
	}
	if key != g.mouseKey {
		if g.mouseKey >= 0 {
			g.press(g.mouseKey, false)
		}
		if key >= 0 {
			g.press(key, true)
		}
		g.mouseKey = key
	}
}

type uiLayout struct {
	buttons  []image.Rectangle
	mode     image.Rectangle
	status   image.Rectangle
	keyboard image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	const pad, btnW, btnH = 12, 72, 40
	var l uiLayout
	x := pad
	for range transportButtons {
		l.buttons = append(l.buttons, image.Rect(x, pad, x+btnW, pad+btnH))
		x += btnW + 4
	}
	l.mode = image.Rect(x+8, pad, windowW-pad, pad+btnH)
	l.status = image.Rect(pad, pad+btnH+pad, windowW-pad, pad+btnH+pad+3*lineH+12)
	kbW := whiteKeys() * whiteKeyW
	kbX := (windowW - kbW) / 2
	l.keyboard = image.Rect(kbX, windowH-keyboardH-pad, kbX+kbW, windowH-pad)
	return l
}

func isBlack(note uint8) bool {
	switch note % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

func whiteKeys() int {
	n := 0
	for i := 0; i < numKeys; i++ {
		if !isBlack(keyseq.KeyNote(firstKey + i)) {
			n++
		}
	}
	return n
}

// keyRect is the on-screen rectangle of key i. Black keys straddle the
// boundary after the preceding white key.
func keyRect(i int, kb image.Rectangle) image.Rectangle {
	white := 0
	for j := 0; j < i; j++ {
		if !isBlack(keyseq.KeyNote(firstKey + j)) {
			white++
		}
	}
	x := kb.Min.X + white*whiteKeyW
	if isBlack(keyseq.KeyNote(firstKey + i)) {
		w := whiteKeyW * 2 / 3
		return image.Rect(x-w/2, kb.Min.Y, x+w/2, kb.Min.Y+kb.Dy()*3/5)
	}
	return image.Rect(x, kb.Min.Y, x+whiteKeyW, kb.Max.Y)
}

func keyAt(x, y int, kb image.Rectangle) int {
	if !pointInRect(x, y, kb) {
		return -1
	}
	for i := 0; i < numKeys; i++ {
		if isBlack(keyseq.KeyNote(firstKey+i)) && pointInRect(x, y, keyRect(i, kb)) {
			return i
		}
	}
	for i := 0; i < numKeys; i++ {
		if pointInRect(x, y, keyRect(i, kb)) {
			return i
		}
	}
	return -1
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()
	st := g.player.Status()

	for i, r := range l.buttons {
		g.drawButton(screen, r, transportButtons[i].label)
	}
	if st.State == keyseq.Recording {
		fillRect(screen, l.buttons[0].Inset(6), recColor)
		g.drawButtonLabel(screen, l.buttons[0], transportButtons[0].label)
	}
	g.drawButton(screen, l.mode, string(synthModes[g.modeIx]))

	g.drawSunkenPanel(screen, l.status)
	metronome := "off"
	if st.Metronome {
		metronome = fmt.Sprintf("%d/4", st.Measure)
	}
	g.drawText(screen, fmt.Sprintf("%-9s tick %5d  tempo %3d  metronome %s", st.State, st.Ticks, st.Tempo, metronome),
		l.status.Min.X+8, l.status.Min.Y+6)
	g.drawText(screen, fmt.Sprintf("events %3d/%d  cursor %3d  voices %d  vol %d", st.Events, keyseq.LogCapacity,
		st.Cursor, st.ActiveVoices, st.Volume), l.status.Min.X+8, l.status.Min.Y+6+lineH)
	msg := g.status
	if g.statusErr {
		msg = "ERROR - " + msg
	}
	g.drawText(screen, msg, l.status.Min.X+8, l.status.Min.Y+6+2*lineH)

	g.drawKeyboard(screen, l.keyboard)
}

func (g *game) drawKeyboard(screen *ebiten.Image, kb image.Rectangle) {
	for pass := 0; pass < 2; pass++ {
		for i := 0; i < numKeys; i++ {
			black := isBlack(keyseq.KeyNote(firstKey + i))
			if black != (pass == 1) {
				continue
			}
			r := keyRect(i, kb)
			c := whiteKeyColor
			if black {
				c = blackKeyColor
			}
			if g.held[i] {
				c = heldKeyColor
			}
			fillRect(screen, r, c)
			drawBorder(screen, r)
		}
	}
}

func (g *game) Layout(int, int) (int, int) { return windowW, windowH }

func (g *game) Close() { _ = g.player.Stop() }

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	fillRect(screen, rect, sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string) {
	fillRect(screen, rect, panelColor)
	drawBorder(screen, rect)
	g.drawButtonLabel(screen, rect, label)
}

func (g *game) drawButtonLabel(screen *ebiten.Image, rect image.Rectangle, label string) {
	labelW := len([]rune(label)) * charW
	g.drawText(screen, label, rect.Min.X+(rect.Dx()-labelW)/2, rect.Min.Y+(rect.Dy()-lineH)/2)
}

func fillRect(screen *ebiten.Image, r image.Rectangle, c color.Color) {
	ebitenutil.DrawRect(screen, float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), c)
}

// drawBorder draws a raised bevel.
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x, y := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		img = ebiten.NewImage(max(1, len([]rune(msg))*7), 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 1000 {
			g.textCache = make(map[string]*ebiten.Image, 256)
		}
		g.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x+2), float64(y+2))
	op.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, op)
	op = &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

func main() {
	modeName := flag.String("mode", "additive", "initial synth mode: additive|fm|wavetable")
	flag.Parse()
	mode := 0
	for i, m := range synthModes {
		if string(m) == *modeName {
			mode = i
		}
	}

	g, err := newGame(mode)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("keyseq")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
