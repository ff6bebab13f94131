// Package icon renders the symbols printed by the CLI in the variant chosen
// with icons.variant: emoji, nerd-font glyphs, plain ASCII, kaomoji or squares.
package icon

import (
	"github.com/spf13/viper"

	"github.com/anisan-cli/spacetime/key"
)

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Play
	Pause
	Waiting
	Seek
	Ended
	Clip
	Activate
	Deactivate
	Rate
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get renders i in the configured variant, or "" for an unknown variant.
func Get(i Icon) string {
	return icons[i].Get()
}

var icons = map[Icon]*iconDef{
	Success:    {emoji: "🎉", nerd: "\uf00c", plain: "✓", kaomoji: "(ᵔ◡ᵔ)", squares: "🟩"},
	Fail:       {emoji: "💀", nerd: "\uf00d", plain: "✗", kaomoji: "(×_×)", squares: "🟥"},
	Play:       {emoji: "▶️", nerd: "\uf04b", plain: ">", kaomoji: "(•̀ᴗ•́)و", squares: "🟩"},
	Pause:      {emoji: "⏸️", nerd: "\uf04c", plain: "||", kaomoji: "(－_－)", squares: "🟨"},
	Waiting:    {emoji: "⏳", nerd: "\uf252", plain: "...", kaomoji: "(・_・;)", squares: "🟧"},
	Seek:       {emoji: "⏩", nerd: "\uf050", plain: ">>", kaomoji: "(ﾉ◕ヮ◕)ﾉ", squares: "🟦"},
	Ended:      {emoji: "🏁", nerd: "\uf11e", plain: "#", kaomoji: "(￣▽￣)ノ", squares: "⬛"},
	Clip:       {emoji: "🎞️", nerd: "\uf008", plain: "*", kaomoji: "(°ロ°)", squares: "🟪"},
	Activate:   {emoji: "🟢", nerd: "\uf111", plain: "+", kaomoji: "(^_^)", squares: "🟩"},
	Deactivate: {emoji: "⚪", nerd: "\uf10c", plain: "-", kaomoji: "(-_-)", squares: "⬜"},
	Rate:       {emoji: "🎚️", nerd: "\uf1de", plain: "x", kaomoji: "(⊙_⊙)", squares: "🟫"},
}
