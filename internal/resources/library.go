// Package resources holds the support-resource catalog suggested on
// escalations and soft contacts.
package resources

import "strings"

// Resource is one support option. Phone-first entries matter: a large part
// of the user base does not navigate the web comfortably.
type Resource struct {
	Name  string
	Phone string
	URL   string
	Topic string // "crisis", "loneliness", "caregiving", "general"
}

// DefaultLibrary is the built-in Spanish-first catalog.
func DefaultLibrary() []Resource {
	return []Resource{
		{Name: "Línea 024 de atención a la conducta suicida", Phone: "024", Topic: "crisis"},
		{Name: "Teléfono de la Esperanza", Phone: "717 003 717", URL: "https://telefonodelaesperanza.org", Topic: "crisis"},
		{Name: "Cruz Roja Te Acompaña", Phone: "900 107 917", URL: "https://www2.cruzroja.es", Topic: "loneliness"},
		{Name: "IMSERSO información a mayores", Phone: "901 109 899", URL: "https://imserso.es", Topic: "general"},
		{Name: "Emergencias", Phone: "112", Topic: "crisis"},
	}
}

// ForTopic filters the library; an empty topic returns everything.
func ForTopic(lib []Resource, topic string) []Resource {
	if topic == "" {
		return lib
	}
	var out []Resource
	for _, r := range lib {
		if r.Topic == topic {
			out = append(out, r)
		}
	}
	return out
}

// Lines renders resources as the short strings attached to decisions.
func Lines(lib []Resource) []string {
	out := make([]string, 0, len(lib))
	for _, r := range lib {
		var sb strings.Builder
		sb.WriteString(r.Name)
		if r.Phone != "" {
			sb.WriteString(" — tel. ")
			sb.WriteString(r.Phone)
		}
		if r.URL != "" {
			sb.WriteString(" — ")
			sb.WriteString(r.URL)
		}
		out = append(out, sb.String())
	}
	return out
}
