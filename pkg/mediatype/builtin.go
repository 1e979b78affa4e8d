package mediatype

// Names of the built-in media types.
const (
	NameWildcard = "wildcard"
	NameJSON     = "json"
	NameForm     = "form"
	NameXML      = "xml"
	NameYAML     = "yaml"
	NameGrid5000 = "grid5000"
)

// BuiltinNames lists the names accepted by Builtin.
func BuiltinNames() []string {
	return []string{NameWildcard, NameJSON, NameForm, NameXML, NameYAML, NameGrid5000}
}
