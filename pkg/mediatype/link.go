package mediatype

import (
	"fmt"
	"strings"
	"unicode"
)

// Link relations with a special meaning for navigation.
const (
	RelSelf       = "self"
	RelParent     = "parent"
	RelMember     = "member"
	RelCollection = "collection"
	RelAlternate  = "alternate"
	RelNext       = "next"
)

// Link is a typed edge from one resource to another.
type Link struct {
	Rel        string   `json:"rel"             yaml:"rel"`
	Href       string   `json:"href"            yaml:"href"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Types      []string `json:"type,omitempty"  yaml:"type,omitempty"`
	ExplicitID string   `json:"id,omitempty"    yaml:"id,omitempty"`
}

// NewLink builds a link from its attributes.
func NewLink(rel, href, title string, types ...string) Link {
	return Link{
		Rel:   rel,
		Href:  href,
		Title: title,
		Types: append([]string(nil), types...),
	}
}

// requiresTitle reports whether the relation groups resources under a name.
func requiresTitle(rel string) bool {
	return rel == RelMember || rel == RelCollection
}

// Errors lists what makes the link invalid. An empty result means Valid.
func (l Link) Errors() []string {
	var errs []string

	if l.Href == "" {
		errs = append(errs, "href cannot be empty")
	}

	if requiresTitle(l.Rel) && l.Title == "" {
		errs = append(errs, fmt.Sprintf("%s %s has no title", l.Rel, l.Href))
	}

	return errs
}

// Valid reports whether the link can be followed.
func (l Link) Valid() bool {
	return len(l.Errors()) == 0
}

// IsSelf reports whether the link points at its owner.
func (l Link) IsSelf() bool {
	return l.Rel == RelSelf
}

// Type returns the preferred media type of the target, if any.
func (l Link) Type() string {
	if len(l.Types) == 0 {
		return ""
	}

	return l.Types[0]
}

// ID returns the traversal key of the link: the explicit id, else the title,
// else the relation, lower-cased with every run of non-letters replaced by a
// single underscore.
func (l Link) ID() string {
	source := l.ExplicitID
	if source == "" {
		source = l.Title
	}

	if source == "" {
		source = l.Rel
	}

	return slug(source)
}

// String implements fmt.Stringer.
func (l Link) String() string {
	return fmt.Sprintf("%s -> %s", l.ID(), l.Href)
}

func slug(s string) string {
	var b strings.Builder

	inRun := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)

			inRun = false

			continue
		}

		if !inRun {
			b.WriteByte('_')

			inRun = true
		}
	}

	return b.String()
}

// linkFromMap reads a {rel, href, title?, type?, id?} object.
func linkFromMap(m map[string]any) Link {
	link := Link{
		Rel:        stringify(m["rel"]),
		Href:       stringify(m["href"]),
		Title:      stringify(m["title"]),
		ExplicitID: stringify(m["id"]),
	}

	switch t := m["type"].(type) {
	case string:
		if t != "" {
			link.Types = strings.Split(t, ",")
			for i := range link.Types {
				link.Types[i] = strings.TrimSpace(link.Types[i])
			}
		}
	case []any:
		for _, v := range t {
			if s := stringify(v); s != "" {
				link.Types = append(link.Types, s)
			}
		}
	}

	return link
}

// toMap renders the link as the wire object used by JSON and YAML.
func (l Link) toMap() map[string]any {
	m := map[string]any{
		"rel":  l.Rel,
		"href": l.Href,
	}

	if l.Title != "" {
		m["title"] = l.Title
	}

	if len(l.Types) > 0 {
		m["type"] = strings.Join(l.Types, ",")
	}

	if l.ExplicitID != "" {
		m["id"] = l.ExplicitID
	}

	return m
}
