package book

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

var spinePalette = []string{
	"#722f37", // burgundy
	"#1a365d", // navy
	"#2d5a27", // forest
	"#36454f", // charcoal
	"#cd5c5c", // coral
	"#722f37", // wine
	"#556b2f", // olive
	"#008080", // teal
	"#c49a3c", // mustard
	"#708090", // slate
	"#f5f5dc", // cream
}

// SpineColor deterministically maps a title to a palette color.
func SpineColor(title string) string {
	var hash int64
	for _, unit := range utf16.Encode([]rune(title)) {
		hash = int64(unit) + (int64(int32(hash)<<5) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	return spinePalette[hash%int64(len(spinePalette))]
}

// DarkerShade darkens a #rrggbb color by 30 per channel, clamped at zero.
// Malformed input is returned unchanged.
func DarkerShade(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	var ch [3]int64
	for i := range ch {
		v, err := strconv.ParseInt(hex[1+2*i:3+2*i], 16, 64)
		if err != nil {
			return hex
		}
		ch[i] = max(0, v-30)
	}
	return fmt.Sprintf("#%02x%02x%02x", ch[0], ch[1], ch[2])
}
