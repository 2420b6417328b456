package calendar

import (
	"math"
	"strconv"
	"strings"
)

const (
	TextBlack = "#000"
	TextWhite = "#fff"
)

var namedColors = map[string][3]float64{
	"black":   {0, 0, 0},
	"white":   {255, 255, 255},
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 192, 203},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"brown":   {165, 42, 42},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"navy":    {0, 0, 128},
	"teal":    {0, 128, 128},
	"lime":    {0, 255, 0},
	"olive":   {128, 128, 0},
	"maroon":  {128, 0, 0},
	"silver":  {192, 192, 192},
}

type rgba struct {
	r, g, b, a float64
}

// BestTextColor picks black or white text for the higher WCAG contrast
// against background. Translucent colours are blended over white; anything
// unparsable is treated as black.
func BestTextColor(background string) string {
	c, ok := parseColor(background)
	if !ok {
		c = rgba{a: 1}
	}
	if c.a < 1 {
		c.r = math.Round(c.r*c.a + 255*(1-c.a))
		c.g = math.Round(c.g*c.a + 255*(1-c.a))
		c.b = math.Round(c.b*c.a + 255*(1-c.a))
	}

	l := luminance(c.r, c.g, c.b)
	contrastWhite := 1.05 / (l + 0.05)
	contrastBlack := (l + 0.05) / 0.05
	if contrastWhite >= contrastBlack {
		return TextWhite
	}
	return TextBlack
}

func parseColor(s string) (rgba, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return rgba{}, false
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s, "rgb", false)
	case strings.HasPrefix(s, "hsl"):
		return parseFunc(s, "hsl", true)
	}
	if n, ok := namedColors[s]; ok {
		return rgba{r: n[0], g: n[1], b: n[2], a: 1}, true
	}
	return rgba{}, false
}

func parseHex(h string) (rgba, bool) {
	channel := func(s string) (float64, bool) {
		v, err := strconv.ParseUint(s, 16, 8)
		return float64(v), err == nil
	}

	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		fallthrough
	case 6, 8:
		r, okR := channel(h[0:2])
		g, okG := channel(h[2:4])
		b, okB := channel(h[4:6])
		if !okR || !okG || !okB {
			return rgba{}, false
		}
		c := rgba{r: r, g: g, b: b, a: 1}
		if len(h) == 8 {
			a, ok := channel(h[6:8])
			if !ok {
				return rgba{}, false
			}
			c.a = a / 255
		}
		return c, true
	}
	return rgba{}, false
}

// parseFunc handles rgb()/rgba()/hsl()/hsla() with comma separated arguments.
func parseFunc(s, name string, hsl bool) (rgba, bool) {
	open := strings.IndexByte(s, '(')
	closing := strings.LastIndexByte(s, ')')
	if open < 0 || closing < open {
		return rgba{}, false
	}
	if fn := strings.TrimSuffix(s[:open], "a"); fn != name {
		return rgba{}, false
	}

	parts := strings.Split(s[open+1:closing], ",")
	if len(parts) < 3 {
		return rgba{}, false
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(p), "%"), 64)
		if err != nil {
			return rgba{}, false
		}
		vals[i] = v
	}

	alpha := 1.0
	if len(vals) > 3 {
		alpha = clamp(vals[3], 0, 1)
	}
	if hsl {
		r, g, b := hslToRGB(vals[0], vals[1], vals[2])
		return rgba{r: r, g: g, b: b, a: alpha}, true
	}
	return rgba{r: clamp(vals[0], 0, 255), g: clamp(vals[1], 0, 255), b: clamp(vals[2], 0, 255), a: alpha}, true
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	s /= 100
	l /= 100
	a := s * math.Min(l, 1-l)
	f := func(n float64) float64 {
		k := math.Mod(n+h/30, 12)
		return math.Round(255 * (l - a*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))))
	}
	return f(0), f(8), f(4)
}

func luminance(r, g, b float64) float64 {
	lin := func(v float64) float64 {
		c := v / 255
		if c <= 0.03928 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(r) + 0.7152*lin(g) + 0.0722*lin(b)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
