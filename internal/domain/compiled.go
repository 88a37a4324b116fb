package domain

import (
	"fmt"
	"strings"
)

// CompiledTitle renders the display title of a compiled group, e.g.
// "CONFLUENCE Vol. 3 (2019-2021)". Missing parts are left out.
func CompiledTitle(category Category, volume string, startYear, endYear *int) string {
	var b strings.Builder
	b.WriteString(string(category))
	if volume != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("Vol. ")
		b.WriteString(volume)
	}

	switch {
	case startYear != nil && endYear != nil && *startYear != *endYear:
		fmt.Fprintf(&b, " (%d-%d)", *startYear, *endYear)
	case startYear != nil:
		fmt.Fprintf(&b, " (%d)", *startYear)
	case endYear != nil:
		fmt.Fprintf(&b, " (%d)", *endYear)
	}
	return strings.TrimSpace(b.String())
}

func (c *CompiledDocument) Title() string {
	return CompiledTitle(c.Category, c.Volume, c.StartYear, c.EndYear)
}
