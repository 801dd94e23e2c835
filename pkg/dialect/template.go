package dialect

import "regexp"

// Pattern is the default placeholder grammar of operation templates: a
// token of the form $[NAME] where NAME is the single capture group.
var Pattern = regexp.MustCompile(`\$\[((?:\w|\s)+)]`)

// Render substitutes every placeholder in the template whose captured name
// has a non-empty entry in parameters. Placeholders with no mapping or an
// empty value are left untouched; callers that require a fully-resolved
// statement check with Unresolved before executing. A nil pattern selects
// the default Pattern.
//
// No SQL escaping is performed. Parameter values are interpolated verbatim
// and must come from trusted input.
func Render(template string, pattern *regexp.Regexp, parameters map[string]string) string {
	if pattern == nil {
		pattern = Pattern
	}

	return pattern.ReplaceAllStringFunc(template, func(token string) string {
		groups := pattern.FindStringSubmatch(token)
		if len(groups) < 2 {
			return token
		}
		if value, ok := parameters[groups[1]]; ok && value != "" {
			return value
		}
		return token
	})
}

// Unresolved reports the placeholder names still present in a rendered
// statement, in order of appearance. An empty result means the statement is
// fully resolved and safe to hand to the driver.
func Unresolved(rendered string) []string {
	matches := Pattern.FindAllStringSubmatch(rendered, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, groups := range matches {
		names = append(names, groups[1])
	}
	return names
}
