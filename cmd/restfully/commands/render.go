package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/restfully/internal/constants"
	"github.com/fivetwenty-io/restfully/pkg/mediatype"
	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderTable func(w io.Writer, data T) error
	// Plain returns the value encoded by the json and yaml formats.
	Plain func(data T) any
}

// Render outputs data in the requested format.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return encoder.Encode(o.Plain(data))
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(o.Plain(data))
	default:
		return o.RenderTable(w, data)
	}
}

// resourceRenderer prints the properties of a resource.
var resourceRenderer = &OutputRenderer[*restfully.Resource]{
	Plain: func(r *restfully.Resource) any {
		return plain(r.Value())
	},
	RenderTable: func(w io.Writer, r *restfully.Resource) error {
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")

		_ = table.Append("URI", r.URI())

		if mt := r.MediaType(); mt != nil {
			_ = table.Append("Media Type", mt.Name())
		}

		props := r.Properties()
		if props == nil {
			_ = table.Append("Value", formatValue(r.Value()))
		}

		for _, key := range sortedKeys(props) {
			_ = table.Append(key, formatValue(props[key]))
		}

		if links := r.Links(); len(links) > 0 {
			ids := make([]string, 0, len(links))
			for _, link := range links {
				ids = append(ids, link.ID())
			}

			_ = table.Append("Links", strings.Join(ids, "\n"))
		}

		if r.IsCollection() {
			c := r.Collection()
			_ = table.Append("Items", fmt.Sprintf("%d of %d (offset %d)", c.Len(), c.Total(), c.Offset()))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	},
}

// linksRenderer prints the links of a resource.
var linksRenderer = &OutputRenderer[[]mediatype.Link]{
	Plain: func(links []mediatype.Link) any {
		out := make([]map[string]string, 0, len(links))
		for _, link := range links {
			out = append(out, map[string]string{
				"id":   link.ID(),
				"rel":  link.Rel,
				"href": link.Href,
				"type": link.Type(),
			})
		}

		return out
	},
	RenderTable: func(w io.Writer, links []mediatype.Link) error {
		table := tablewriter.NewWriter(w)
		table.Header("ID", "Rel", "Href", "Type")

		for _, link := range links {
			linkType := link.Type()
			if linkType == "" {
				linkType = NotAvailable
			}

			_ = table.Append(link.ID(), link.Rel, link.Href, linkType)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	},
}

// itemsRenderer prints collection items.
var itemsRenderer = &OutputRenderer[[]*restfully.Resource]{
	Plain: func(items []*restfully.Resource) any {
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, plain(item.Value()))
		}

		return out
	},
	RenderTable: func(w io.Writer, items []*restfully.Resource) error {
		table := tablewriter.NewWriter(w)
		table.Header("#", "ID", "URI")

		for i, item := range items {
			_ = table.Append(strconv.Itoa(i), itemID(item), item.URI())
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	},
}

func itemID(item *restfully.Resource) string {
	props := item.Properties()

	for _, key := range []string{"uid", "id"} {
		if v, ok := props[key]; ok {
			return formatValue(v)
		}
	}

	return NotAvailable
}

// typesRenderer prints the media types of a registry.
var typesRenderer = &OutputRenderer[[]*mediatype.MediaType]{
	Plain: func(types []*mediatype.MediaType) any {
		out := make([]map[string]any, 0, len(types))
		for _, mt := range types {
			out = append(out, map[string]any{
				"name":       mt.Name(),
				"signatures": mt.Signatures(),
			})
		}

		return out
	},
	RenderTable: func(w io.Writer, types []*mediatype.MediaType) error {
		table := tablewriter.NewWriter(w)
		table.Header("Name", "Signatures")

		for _, mt := range types {
			_ = table.Append(mt.Name(), strings.Join(mt.Signatures(), "\n"))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	},
}

// renderMetrics prints the counters and histograms gathered by registry.
func renderMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Labels", "Value")

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}

			var value string

			switch {
			case metric.GetCounter() != nil:
				value = strconv.FormatFloat(metric.GetCounter().GetValue(), 'f', -1, 64)
			case metric.GetHistogram() != nil:
				histogram := metric.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%.3fs", histogram.GetSampleCount(), histogram.GetSampleSum())
			default:
				continue
			}

			_ = table.Append(family.GetName(), strings.Join(labels, ","), value)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
