package format

import "testing"

func TestFormatINRIndianGrouping(t *testing.T) {
    cases := map[float64]string{
        0:          "₹0.00",
        450:        "₹450.00",
        1000:       "₹1,000.00",
        12345:      "₹12,345.00",
        123456:     "₹1,23,456.00",
        1234567.5:  "₹12,34,567.50",
        99.999:     "₹100.00",
        -1500.25:   "-₹1,500.25",
    }
    for in, want := range cases {
        if got := FormatINR(in); got != want {
            t.Errorf("FormatINR(%v): expected %q, got %q", in, want, got)
        }
    }
}

func TestFormatPrice(t *testing.T) {
    if got := FormatPrice(450, "1L"); got != "₹450.00 / 1L" {
        t.Fatalf("unexpected price: %q", got)
    }
    if got := FormatPrice(120, " "); got != "₹120.00" {
        t.Fatalf("expected unit to be omitted, got %q", got)
    }
}
