package format

import (
    "math"
    "strconv"
    "strings"
)

// FormatINR formats amount in rupees the way en-IN renders currency.
// Example: FormatINR(1234567.5) => "₹12,34,567.50"
func FormatINR(amount float64) string {
    if math.IsNaN(amount) || math.IsInf(amount, 0) {
        return "₹0.00"
    }
    paise := int64(math.Round(amount * 100))
    neg := paise < 0
    if neg { paise = -paise }
    head := indianGrouping(paise / 100)
    tail := strconv.FormatInt(100+paise%100, 10)[1:]
    if neg { return "-₹" + head + "." + tail }
    return "₹" + head + "." + tail
}

// FormatPrice renders "<amount> / <unit>", omitting the unit when blank.
func FormatPrice(amount float64, unit string) string {
    s := FormatINR(amount)
    if unit = strings.TrimSpace(unit); unit != "" {
        s += " / " + unit
    }
    return s
}

// indianGrouping separates the last three digits, then every two digits:
// 1234567 => "12,34,567".
func indianGrouping(n int64) string {
    s := strconv.FormatInt(n, 10)
    if len(s) <= 3 {
        return s
    }
    head, tail := s[:len(s)-3], s[len(s)-3:]
    var b strings.Builder
    b.Grow(len(s) + len(s)/2)
    lead := len(head) % 2
    if lead == 1 {
        b.WriteString(head[:1])
    }
    for i := lead; i < len(head); i += 2 {
        if b.Len() > 0 { b.WriteByte(',') }
        b.WriteString(head[i : i+2])
    }
    b.WriteByte(',')
    b.WriteString(tail)
    return b.String()
}
