package emoji

import "sync/atomic"

// emojiMap holds [emoji, fallback] pairs
var emojiMap = map[string][2]string{
	"error":    {"❌", "[ERR]"},
	"warning":  {"⚠️", "[WRN]"},
	"info":     {"ℹ️", "[INF]"},
	"success":  {"✅", "[OK]"},
	"upload":   {"📤", "[UP]"},
	"loading":  {"⏳", "[...]"},
	"summary":  {"📊", "[SUM]"},
	"activity": {"🏃", "[ACT]"},
	"dominant": {"🏆", "[TOP]"},
	"raw":      {"🧾", "[RAW]"},
	"watch":    {"👀", "[WATCH]"},
	"health":   {"💓", "[HLT]"},
	"history":  {"🕘", "[HIST]"},
	"server":   {"🌐", "[SRV]"},
	"config":   {"🔧", "[CFG]"},
	"folder":   {"📁", "[DIR]"},
	"file":     {"📄", "[FILE]"},
	"rocket":   {"🚀", "[GO]"},
	"help":     {"❓", "[?]"},
	"door":     {"🚪", "[EXIT]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on no-emoji setting
func GetEmoji(key string) string {
	if mapping, exists := emojiMap[key]; exists {
		if emojiDisabled.Load() {
			return mapping[1]
		}
		return mapping[0]
	}
	return "[?]"
}
