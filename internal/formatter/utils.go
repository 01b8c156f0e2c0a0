package formatter

import (
	"fmt"

	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/emoji"
	"github.com/yildizm/go-termfmt"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// termOptions returns go-termfmt options honoring the global emoji switch
func termOptions(color bool) *termfmt.TerminalOptions {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return opts
}

// shareBar draws the fraction of windows carrying an activity
func shareBar(share float64, opts *termfmt.TerminalOptions) string {
	return termfmt.CreateConfidenceBar(share, opts)
}

// TallyEntry is one tally row enriched with its share of all windows
type TallyEntry struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// tallyEntries expands the tally with shares
func tallyEntries(view *detect.View) []TallyEntry {
	entries := make([]TallyEntry, 0, len(view.Tally))
	for _, lc := range view.Tally {
		entries = append(entries, TallyEntry{
			Label: lc.Label,
			Count: lc.Count,
			Share: view.Share(lc),
		})
	}
	return entries
}

// emptyView guards formatters against a nil view
func emptyView(view *detect.View) *detect.View {
	if view == nil {
		return detect.Render(nil)
	}
	return view
}
