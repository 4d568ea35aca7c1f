package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/domain/providers"
)

// suggestionItems renders one list item per suggestion, in response order.
// Image and description are emitted only when the server sent them;
// descriptions are Markdown.
const suggestionItems = `{{range $s := .}}<li class="suggestion">` +
	`<h3><a href="/landmarks/{{$s.LandmarkID}}">{{$s.Name}}</a></h3>` +
	`{{with $s.Image}}<img src="{{.}}" alt="{{$s.Name}}"/>{{end}}` +
	`{{with $s.Description}}<div class="description">{{markdown .}}</div>{{end}}` +
	`</li>{{end}}`

const imageElement = `<img src="{{.}}">`

// mdRenderer drops raw HTML and unsafe links from Markdown input.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// PageRenderer renders the fragments the landmark page inserts into its DOM
type PageRenderer struct {
	suggestions *template.Template
	image       *template.Template
}

var _ providers.PageRenderer = (*PageRenderer)(nil)

// NewPageRenderer parses the fragment templates
func NewPageRenderer() *PageRenderer {
	return &PageRenderer{
		suggestions: template.Must(template.New("suggestions").
			Funcs(template.FuncMap{"markdown": renderMarkdown}).
			Parse(suggestionItems)),
		image: template.Must(template.New("image").Parse(imageElement)),
	}
}

// RenderImage renders the element appended to #image-display
func (r *PageRenderer) RenderImage(link string) (string, error) {
	var buf bytes.Buffer
	if err := r.image.Execute(&buf, link); err != nil {
		return "", fmt.Errorf("failed to render image element: %w", err)
	}
	return buf.String(), nil
}

// RenderSuggestions renders the items appended to #suggestions
func (r *PageRenderer) RenderSuggestions(suggestions []entities.Suggestion) (string, error) {
	var buf bytes.Buffer
	if err := r.suggestions.Execute(&buf, suggestions); err != nil {
		return "", fmt.Errorf("failed to render suggestions: %w", err)
	}
	return buf.String(), nil
}
