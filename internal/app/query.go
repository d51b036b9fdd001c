package app

import (
	"strconv"
	"strings"

	"accessible_map/internal/domain"
)

// Accessibility values and category tags the venue query filters on.
var (
	AccessibilityValues = []string{"yes", "limited"}
	CategoryTags        = []string{"amenity", "shop", "tourism", "leisure", "office", "public_transport"}
)

const queryTimeoutSeconds = 30

// BuildQuery returns the interpreter query for accessible venues inside b.
// Ways and relations are resolved to a centroid by "out center".
func BuildQuery(b domain.Bounds) string {
	bbox := formatBounds(b)

	cats := make([]string, len(CategoryTags))
	for i, t := range CategoryTags {
		cats[i] = `t["` + t + `"]`
	}
	filter := `["wheelchair"~"` + strings.Join(AccessibilityValues, "|") + `"]` +
		`(if:` + strings.Join(cats, " || ") + `)` +
		`(` + bbox + `);`

	var sb strings.Builder
	sb.WriteString("[out:json][timeout:")
	sb.WriteString(strconv.Itoa(queryTimeoutSeconds))
	sb.WriteString("];\n(\n")
	for _, k := range []domain.Kind{domain.KindNode, domain.KindWay, domain.KindRelation} {
		sb.WriteString("  ")
		sb.WriteString(string(k))
		sb.WriteString(filter)
		sb.WriteString("\n")
	}
	sb.WriteString(");\nout center;\n")
	return sb.String()
}

// south,west,north,east
func formatBounds(b domain.Bounds) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.South) + "," + f(b.West) + "," + f(b.North) + "," + f(b.East)
}
