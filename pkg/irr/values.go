package irr

import (
	"strconv"
	"strings"

	"github.com/Faultbox/irrscene/pkg/asset"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// toTargetSpace converts a vector from the scene's left-handed Y-up
// convention: Y and Z are swapped, then the new Y is negated.
func toTargetSpace(v mathx.Vec3) mathx.Vec3 {
	return mathx.Vec3{X: v.X, Y: -v.Z, Z: v.Y}
}

// fromTargetSpace is the inverse of toTargetSpace.
func fromTargetSpace(v mathx.Vec3) mathx.Vec3 {
	return mathx.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
}

// numericPrefix returns the longest prefix of s that looks like a decimal
// number, so "1.5abc" reads as 1.5 and "abc" as 0.
func numericPrefix(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case (c == '+' || c == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			return s[:end]
		}
		if seenDigit && c >= '0' && c <= '9' {
			end = i + 1
		}
	}
	return s[:end]
}

func parseFloat(s string) float32 {
	p := numericPrefix(s)
	f, err := strconv.ParseFloat(p, 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

func parseInt(s string) int {
	p := numericPrefix(s)
	if i := strings.IndexAny(p, ".eE"); i >= 0 {
		p = p[:i]
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// splitComponents splits "1, 2, 3" style lists. Missing components read as 0.
func splitComponents(s string, n int) []float32 {
	out := make([]float32, n)
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	for i := 0; i < n && i < len(parts); i++ {
		out[i] = parseFloat(parts[i])
	}
	return out
}

// parseVector reads a vector3d value in source space.
func parseVector(s string) mathx.Vec3 {
	c := splitComponents(s, 3)
	return mathx.Vec3{X: c[0], Y: c[1], Z: c[2]}
}

// parseColorHex reads an ARGB hex color such as "ff808080".
func parseColorHex(s string) asset.Color4 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return asset.Color4{A: 1}
	}
	if len(s) <= 6 {
		v |= 0xff000000
	}
	return asset.Color4{
		A: float32(v>>24&0xff) / 255,
		R: float32(v>>16&0xff) / 255,
		G: float32(v>>8&0xff) / 255,
		B: float32(v&0xff) / 255,
	}
}

// parseColorf reads an "r, g, b, a" float color. A missing alpha is 1.
func parseColorf(s string) asset.Color4 {
	c := splitComponents(s, 4)
	if len(strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })) < 4 {
		c[3] = 1
	}
	return asset.Color4{R: c[0], G: c[1], B: c[2], A: c[3]}
}

func rgb(c asset.Color4) asset.Color3 {
	return asset.Color3{R: c.R, G: c.G, B: c.B}
}
