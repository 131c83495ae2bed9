package web

import (
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"timeAgo":  FormatRelativeTime,
		"date":     FormatDate,
		"datetime": FormatDateTime,
		"comma":    FormatCount,
		"decimal":  FormatDecimal,
		"stars":    Stars,
		"starsOf":  StarsOf,
		"percent":  FormatPercent,
		"str":      DerefString,
		"num":      DerefInt,
		"pager":    NewPager,
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"contains": strings.Contains,
	}
}

// FormatRelativeTime formats a time.Time as a relative time string like "3 days ago".
func FormatRelativeTime(t time.Time) string {
	return timediff.TimeDiff(t)
}

func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func FormatDateTime(t time.Time) string {
	return t.Format("Jan 2, 3:04 PM")
}

// FormatCount renders any integer with thousands separators.
func FormatCount(n any) string {
	switch v := n.(type) {
	case int:
		return humanize.Comma(int64(v))
	case int64:
		return humanize.Comma(v)
	case *int:
		if v == nil {
			return ""
		}
		return humanize.Comma(int64(*v))
	default:
		return fmt.Sprint(n)
	}
}

// FormatDecimal trims trailing zeros: 3.50 -> "3.5", 2.00 -> "2".
func FormatDecimal(f float64, digits int) string {
	return humanize.FtoaWithDigits(f, digits)
}

func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f)
}

// Stars renders an average as five filled or empty stars, rounding to the
// nearest whole star.
func Stars(avg float64) string {
	filled := int(math.Round(avg))
	filled = max(0, min(5, filled))
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

func StarsOf(rating *int) string {
	if rating == nil {
		return ""
	}
	return Stars(float64(*rating))
}

func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func DerefInt(n *int) string {
	if n == nil {
		return ""
	}
	return humanize.Comma(int64(*n))
}
