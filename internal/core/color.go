package core

// Color represents a foreground color for a screen cell.
// The platform layer maps each value to an ANSI 256-color code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// Arena palette.
const (
	ColorPlayer       = ColorBrightCyan
	ColorPlayerHurt   = ColorBrightRed
	ColorZombie       = ColorGreen
	ColorZombieSlowed = ColorBrightBlue
	ColorBullet       = ColorBrightYellow
	ColorObstacle     = ColorGray
	ColorRing         = ColorOrange
	ColorHUD          = ColorBrightWhite
	ColorOffer        = ColorBrightMagenta
)
