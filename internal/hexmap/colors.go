package hexmap

import (
	"fmt"
	"math"
	"strings"
)

// Fill colors used on the live and settlement maps
const (
	DefaultFill         = "#44475a"
	OccupiedFill        = "#8B0000"
	FreeSpotFill        = "#2a2c38"
	TribeHighlightFill  = "#e67e22"
	ResourceHighlight   = "#2ecc71"
	BankFill            = "#f8f9fa"
	CenterFill          = "#e9ecef"
	memberPaletteSize   = 50
	memberSaturation    = 75
	memberLightness     = 60
	villageSaturation   = 90
	villageLightness    = 55
	greenHue            = 120.0
	yellowHue           = 60.0
	redHue              = 0.0
	paletteMinHue       = 80.0
	paletteMaxHue       = 330.0
	villageRatioFloor   = 0.01
	settlementZoneCount = 12
)

// zoneColors run purple through blue and green to red by zone id
var zoneColors = map[int]string{
	1:  "#be4bdb",
	2:  "#845ef7",
	3:  "#5c7cfa",
	4:  "#339af0",
	5:  "#22b8cf",
	6:  "#20c997",
	7:  "#51cf66",
	8:  "#fcc419",
	9:  "#ff922b",
	10: "#ff6b6b",
	11: "#fa5252",
	12: "#e03131",
}

// ZoneColor returns the fill for a settlement zone, DefaultFill when unknown
func ZoneColor(zoneID int) string {
	if c, ok := zoneColors[zoneID]; ok {
		return c
	}
	return DefaultFill
}

// ZoneLabel appends the zone's ring to its name: zones 1-6 surround the
// center and 7-12 the banks. Names that already carry the ring are kept.
func ZoneLabel(zoneID int, name string) string {
	var suffix string
	switch {
	case zoneID >= 1 && zoneID <= 6:
		suffix = " (Center)"
	case zoneID >= 7 && zoneID <= settlementZoneCount:
		suffix = " (Bank)"
	default:
		return name
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, " (bank") || strings.Contains(lower, " (center") {
		return name
	}
	return name + suffix
}

// HSLToRGB converts hue (degrees), saturation and lightness (percent) to
// 0-255 channel values.
func HSLToRGB(h, s, l float64) (r, g, b float64) {
	s /= 100
	l /= 100
	k := func(n float64) float64 { return math.Mod(n+h/30, 12) }
	a := s * math.Min(l, 1-l)
	f := func(n float64) float64 {
		return l - a*math.Max(-1, math.Min(k(n)-3, math.Min(9-k(n), 1)))
	}
	return 255 * f(0), 255 * f(8), 255 * f(4)
}

// RGBToHex formats rounded channels as #rrggbb
func RGBToHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	n := int(math.Floor(v + 0.5))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

// HSLToHex converts an HSL triple to #rrggbb
func HSLToHex(h, s, l float64) string {
	return RGBToHex(HSLToRGB(h, s, l))
}

var (
	saturationOffsets = []float64{0, 5, -5, 3, -3}
	lightnessOffsets  = []float64{0, -5, 5, -3, 3}
)

// GeneratePalette spreads count colors over hues 80 to 330, skipping the
// reds used for occupied and hostile spots. Saturation and lightness
// oscillate around the base values and are clamped to S 40-90, L 30-80.
func GeneratePalette(count int, saturation, lightness float64) []string {
	colors := make([]string, 0, count)
	for i := 0; i < count; i++ {
		hue := paletteMinHue + float64(i)/float64(count)*(paletteMaxHue-paletteMinHue)
		s := clamp(saturation+saturationOffsets[i%len(saturationOffsets)], 40, 90)
		l := clamp(lightness+lightnessOffsets[i%len(lightnessOffsets)], 30, 80)
		colors = append(colors, HSLToHex(hue, s, l))
	}
	return colors
}

var memberPalette = GeneratePalette(memberPaletteSize, memberSaturation, memberLightness)

// MemberColor returns the palette color for the member at index
func MemberColor(index int) string {
	if index < 0 {
		index = -index
	}
	return memberPalette[index%len(memberPalette)]
}

// VillageDensityColor shades a realm by village count relative to the
// busiest realm, green through yellow to red. Realms without villages get
// DefaultFill.
func VillageDensityColor(count, maxCount int) string {
	if count <= 0 {
		return DefaultFill
	}
	ratio := clamp(float64(count)/math.Max(1, float64(maxCount)), villageRatioFloor, 1)

	var hue float64
	if ratio <= 0.5 {
		hue = greenHue - (greenHue-yellowHue)*(ratio/0.5)
	} else {
		hue = yellowHue - (yellowHue-redHue)*((ratio-0.5)/0.5)
	}
	return HSLToHex(hue, villageSaturation, villageLightness)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
