package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Zordux/Last-Vector/internal/core"
	"github.com/Zordux/Last-Vector/internal/sim"
)

// Arena glyphs.
const (
	glyphPlayer   = '@'
	glyphZombie   = 'z'
	glyphBullet   = '•'
	glyphObstacle = '▓'
	glyphRing     = '·'
	glyphAim      = '+'
)

// aimMarkerDistance is how far ahead of the player the aim marker sits,
// in arena units.
const aimMarkerDistance = 70

// Projection maps arena coordinates into a screen rectangle.
type Projection struct {
	Area          core.Rect // Interior cells available for the arena
	Width, Height float64   // Arena size in world units
}

// Cell returns the screen cell holding world point p.
func (pr Projection) Cell(p core.Vec2) (x, y int) {
	if pr.Width <= 0 || pr.Height <= 0 {
		return pr.Area.X, pr.Area.Y
	}
	fx := core.ClampF(p.X/pr.Width, 0, 0.999999)
	fy := core.ClampF(p.Y/pr.Height, 0, 0.999999)
	return pr.Area.X + int(fx*float64(pr.Area.W)), pr.Area.Y + int(fy*float64(pr.Area.H))
}

// Scene is everything the arena drawing needs for one frame.
type Scene struct {
	World      sim.World
	RingRadius float64
	Aim        core.Vec2 // Last aim input; zero hides the marker
	Frame      uint64    // Wall-clock frame counter, for blinking
}

// DrawArena draws the border, obstacles, ring, bullets, zombies and
// player. Later layers overwrite earlier ones.
func DrawArena(s *core.Screen, pr Projection, sc Scene) {
	border := core.NewRect(pr.Area.X-1, pr.Area.Y-1, pr.Area.W+2, pr.Area.H+2)
	s.DrawBox(border, core.ColorGray)

	for _, b := range sc.World.Obstacles {
		x0, y0 := pr.Cell(core.V(b.X, b.Y))
		x1, y1 := pr.Cell(core.V(b.MaxX(), b.MaxY()))
		s.DrawRect(core.NewRect(x0, y0, core.Max(x1-x0, 1), core.Max(y1-y0, 1)), glyphObstacle, core.ColorObstacle)
	}

	p := sc.World.Player
	if sc.RingRadius > 0 {
		const points = 48
		field := core.Box{W: pr.Width, H: pr.Height}
		for i := 0; i < points; i++ {
			a := float64(i) / points * 2 * math.Pi
			pt := p.Pos.Add(core.V(math.Cos(a), math.Sin(a)).Scale(sc.RingRadius))
			if !field.Contains(pt) {
				continue
			}
			x, y := pr.Cell(pt)
			s.SetColored(x, y, glyphRing, core.ColorRing)
		}
	}

	for _, b := range sc.World.Bullets {
		x, y := pr.Cell(b.Pos)
		s.SetColored(x, y, glyphBullet, core.ColorBullet)
	}

	for _, z := range sc.World.Zombies {
		x, y := pr.Cell(z.Pos)
		c := core.ColorZombie
		if z.SlowTimer > 0 {
			c = core.ColorZombieSlowed
		}
		s.SetColored(x, y, glyphZombie, c)
	}

	if sc.Aim.LenSq() > 0 {
		x, y := pr.Cell(p.Pos.Add(sc.Aim.Normalize().Scale(aimMarkerDistance)))
		s.SetColored(x, y, glyphAim, core.ColorPlayer)
	}

	x, y := pr.Cell(p.Pos)
	c := core.ColorPlayer
	if p.InvulnTimer > 0 && sc.Frame%8 < 4 {
		c = core.ColorPlayerHurt
	}
	s.SetColored(x, y, glyphPlayer, c)
}

// DrawHUD draws the one-line status bar at row y.
func DrawHUD(s *core.Screen, y int, w sim.World, label string) {
	p := w.Player

	hpColor := core.ColorBrightGreen
	switch {
	case p.Health <= p.MaxHealth*0.25:
		hpColor = core.ColorBrightRed
	case p.Health <= p.MaxHealth*0.5:
		hpColor = core.ColorBrightYellow
	}

	x := 0
	put := func(text string, c core.Color) {
		s.DrawTextColored(x, y, text, c)
		x += len([]rune(text)) + 2
	}

	put(fmt.Sprintf("HP %s %3.0f", bar(p.Health, p.MaxHealth, 10), p.Health), hpColor)
	put(fmt.Sprintf("ST %s", bar(p.Stamina, p.MaxStamina, 6)), core.ColorCyan)

	ammo := fmt.Sprintf("AMMO %2d/%-3d", p.Mag, p.Reserve)
	if p.Reloading {
		ammo += " RELOAD"
	}
	put(ammo, core.ColorHUD)

	put(fmt.Sprintf("KILLS %d", w.Stats.Kills), core.ColorHUD)
	put(fmt.Sprintf("TIME %s", clock(w.Elapsed)), core.ColorHUD)
	put(fmt.Sprintf("DIFF %.2f", w.Difficulty), core.ColorOrange)

	if label != "" {
		s.DrawTextColored(s.Width()-len([]rune(label)), y, label, core.ColorBrightMagenta)
	}
}

// DrawOffer draws the upgrade choice panel.
func DrawOffer(s *core.Screen, w sim.World, catalog sim.Catalog) {
	lines := make([]string, 0, len(w.Offer))
	width := 30
	for i, id := range w.Offer {
		def := catalog.Def(id)
		line := fmt.Sprintf("[%d] %s  Lv %d/%d  %s", i+1, def.Name, w.Upgrades.Level(id), def.MaxStacks, def.Description)
		width = core.Max(width, len([]rune(line)))
		lines = append(lines, line)
	}
	drawPanel(s, "CHOOSE AN UPGRADE", lines, width, core.ColorOffer)
}

// DrawBanner draws a centered panel with a title and body lines.
func DrawBanner(s *core.Screen, title string, lines []string, c core.Color) {
	width := len([]rune(title))
	for _, l := range lines {
		width = core.Max(width, len([]rune(l)))
	}
	drawPanel(s, title, lines, width, c)
}

func drawPanel(s *core.Screen, title string, lines []string, width int, c core.Color) {
	w := core.Clamp(width+4, 4, s.Width())
	h := len(lines) + 4
	r := core.NewRect((s.Width()-w)/2, (s.Height()-h)/2, w, h)

	s.DrawRect(r, ' ', core.ColorDefault)
	s.DrawBox(r, c)
	s.DrawTextCentered(r.Y+1, title, c)
	for i, l := range lines {
		s.DrawTextColored(r.X+2, r.Y+3+i, l, core.ColorHUD)
	}
}

// bar renders a fixed-width gauge.
func bar(v, limit float64, width int) string {
	filled := 0
	if limit > 0 {
		filled = int(math.Round(core.ClampF(v/limit, 0, 1) * float64(width)))
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// clock formats seconds as mm:ss.
func clock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
