package mediatype

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Keys used when an XML element tree is decoded into a map.
const (
	xmlTypeKey  = "__type__"
	xmlTextKey  = "_text"
	xmlLinkKey  = "link"
	xmlItemsKey = "items"
	xmlHrefKey  = "href"
)

var errNoRootElement = errors.New("no root element")

type xmlParser struct{}

func (xmlParser) Decode(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, errNoRootElement
		}

		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		v, err := decodeXMLElement(dec, start)
		if err != nil {
			return nil, err
		}

		m, ok := v.(map[string]any)
		if !ok {
			m = map[string]any{xmlTextKey: v}
		}

		m[xmlTypeKey] = start.Name.Local

		return m, nil
	}
}

func decodeXMLElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	m := map[string]any{}

	for _, attr := range start.Attr {
		m[attr.Name.Local] = attr.Value
	}

	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			err := decodeXMLChild(dec, t, m)
			if err != nil {
				return nil, err
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			content := strings.TrimSpace(text.String())
			if len(m) == 0 {
				return content, nil
			}

			if content != "" {
				m[xmlTextKey] = content
			}

			return m, nil
		}
	}
}

func decodeXMLChild(dec *xml.Decoder, start xml.StartElement, parent map[string]any) error {
	switch start.Name.Local {
	case xmlLinkKey:
		link := map[string]any{}
		for _, attr := range start.Attr {
			link[attr.Name.Local] = attr.Value
		}

		err := dec.Skip()
		if err != nil {
			return err
		}

		links, _ := parent[xmlLinkKey].([]any)
		parent[xmlLinkKey] = append(links, link)

		return nil
	case xmlItemsKey:
		return decodeXMLItems(dec, start, parent)
	}

	v, err := decodeXMLElement(dec, start)
	if err != nil {
		return err
	}

	name := start.Name.Local

	switch existing := parent[name].(type) {
	case nil:
		parent[name] = v
	case []any:
		parent[name] = append(existing, v)
	default:
		parent[name] = []any{existing, v}
	}

	return nil
}

// decodeXMLItems lifts the total and offset attributes of <items> onto the
// parent and stores each child element, tagged with its name, in a list.
func decodeXMLItems(dec *xml.Decoder, start xml.StartElement, parent map[string]any) error {
	for _, attr := range start.Attr {
		parent[attr.Name.Local] = attr.Value
	}

	items := []any{}

	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			v, err := decodeXMLElement(dec, t)
			if err != nil {
				return err
			}

			item, ok := v.(map[string]any)
			if !ok {
				item = map[string]any{xmlTextKey: v}
			}

			item[xmlTypeKey] = t.Name.Local
			items = append(items, item)
		case xml.EndElement:
			parent[xmlItemsKey] = items

			return nil
		}
	}
}

func (xmlParser) Encode(v any) ([]byte, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: xml encoding needs an object, got %T", ErrUnsupportedValue, v)
	}

	name, _ := m[xmlTypeKey].(string)
	if name == "" {
		name = "resource"
	}

	var buf bytes.Buffer

	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)

	err := encodeXMLElement(enc, name, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	err = enc.Flush()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodeXMLElement(enc *xml.Encoder, name string, v any) error {
	switch t := v.(type) {
	case map[string]any:
		return encodeXMLMap(enc, name, t)
	case []any:
		for _, item := range t {
			err := encodeXMLElement(enc, name, item)
			if err != nil {
				return err
			}
		}

		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}

	err := enc.EncodeToken(start)
	if err != nil {
		return err
	}

	if v != nil {
		err = enc.EncodeToken(xml.CharData(stringify(v)))
		if err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func encodeXMLMap(enc *xml.Encoder, name string, m map[string]any) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}

	if href, ok := m[xmlHrefKey].(string); ok {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: xmlHrefKey}, Value: href})
	}

	err := enc.EncodeToken(start)
	if err != nil {
		return err
	}

	links, _ := m[xmlLinkKey].([]any)
	for _, entry := range links {
		link, _ := entry.(map[string]any)

		err := encodeXMLLink(enc, link)
		if err != nil {
			return err
		}
	}

	items, hasItems := m[xmlItemsKey].([]any)

	for _, key := range sortedKeys(m) {
		switch key {
		case xmlTypeKey, xmlTextKey, xmlHrefKey, xmlLinkKey, xmlItemsKey:
			continue
		case "total", "offset":
			if hasItems {
				continue
			}
		}

		err := encodeXMLElement(enc, key, m[key])
		if err != nil {
			return err
		}
	}

	if hasItems {
		err := encodeXMLItems(enc, m, items)
		if err != nil {
			return err
		}
	}

	if text, ok := m[xmlTextKey]; ok {
		err := enc.EncodeToken(xml.CharData(stringify(text)))
		if err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func encodeXMLLink(enc *xml.Encoder, link map[string]any) error {
	start := xml.StartElement{Name: xml.Name{Local: xmlLinkKey}}

	keys := make([]string, 0, len(link))
	for k := range link {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: k}, Value: stringify(link[k])})
	}

	err := enc.EncodeToken(start)
	if err != nil {
		return err
	}

	return enc.EncodeToken(start.End())
}

func encodeXMLItems(enc *xml.Encoder, m map[string]any, items []any) error {
	start := xml.StartElement{Name: xml.Name{Local: xmlItemsKey}}

	for _, key := range []string{"offset", "total"} {
		if v, ok := m[key]; ok {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: key}, Value: stringify(v)})
		}
	}

	err := enc.EncodeToken(start)
	if err != nil {
		return err
	}

	for _, item := range items {
		name := "item"
		if im, ok := item.(map[string]any); ok {
			if t, ok := im[xmlTypeKey].(string); ok && t != "" {
				name = t
			}
		}

		err := encodeXMLElement(enc, name, item)
		if err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

// XMLSemantics reads <link/> child elements and treats an href attribute on
// the element as its self link. The element name is kept out of the exposed
// properties.
type XMLSemantics struct {
	HypermediaSemantics
}

// ExtractLinks implements Semantics.
func (XMLSemantics) ExtractLinks(value any) ([]Link, any) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, value
	}

	var links []Link

	if href, ok := m[xmlHrefKey].(string); ok && href != "" {
		links = append(links, NewLink(RelSelf, href, ""))
	}

	raw, _ := m[xmlLinkKey].([]any)
	for _, entry := range raw {
		if lm, ok := entry.(map[string]any); ok {
			links = append(links, linkFromMap(lm))
		}
	}

	props := copyMapWithout(m, xmlLinkKey)
	delete(props, xmlTypeKey)

	if len(links) > 0 && links[0].IsSelf() {
		delete(props, xmlHrefKey)
	}

	return links, props
}

// XML handles generic XML documents.
func XML() *MediaType {
	return New(NameXML, xmlParser{}, XMLSemantics{},
		"application/xml",
		"text/xml",
		"application/*+xml",
	)
}
