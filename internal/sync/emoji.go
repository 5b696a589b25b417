package sync

import "strings"

// emojiAliases maps literal emoji glyphs to their Slack short names so a
// trigger configured as a glyph matches reaction events, which always carry
// short names.
var emojiAliases = map[string]string{
	"📝":  "pencil",
	"✏️": "pencil",
	"✏":  "pencil",
	"✅":  "white_check_mark",
	"⭐":  "star",
	"⭐️": "star",
	"📌":  "pushpin",
	"🔖":  "bookmark",
	"📋":  "clipboard",
	"💾":  "floppy_disk",
	"📤":  "outbox_tray",
}

// CanonicalEmoji normalizes an emoji reference to the bare Slack short name.
// "pencil", ":pencil:" and the literal glyph all normalize to the same value.
// Skin tone suffixes are dropped so ":thumbsup::skin-tone-2:" matches ":thumbsup:".
func CanonicalEmoji(name string) string {
	trimmed := strings.Trim(strings.TrimSpace(name), ":")
	if i := strings.Index(trimmed, "::skin-tone-"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if alias, ok := emojiAliases[trimmed]; ok {
		return alias
	}
	return strings.ToLower(trimmed)
}

// EmojiMatches reports whether two emoji references denote the same emoji.
func EmojiMatches(a, b string) bool {
	ca := CanonicalEmoji(a)
	return ca != "" && ca == CanonicalEmoji(b)
}
