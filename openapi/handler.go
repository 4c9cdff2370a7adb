package openapi

import (
	"cmp"
	"encoding/json"
	"fmt"
	"html"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/vitalvas/apispec/mux"
	"gopkg.in/yaml.v3"
)

// DocsUI selects the interactive documentation page.
type DocsUI int

const (
	DocsSwaggerUI DocsUI = iota
	DocsRapiDoc
	DocsRedoc
)

// Disabled turns off a document endpoint when used as its filename.
const Disabled = "-"

// HandleConfig configures the endpoints registered by Handle.
type HandleConfig struct {
	UI DocsUI

	// Title of the docs page. Defaults to the info title.
	Title string

	// JSONFilename and YAMLFilename locate the serialized documents,
	// defaulting to "schema.json" and "schema.yaml". Relative names are
	// joined with the base path, absolute ones are used as they are, and
	// Disabled turns the endpoint off.
	JSONFilename string
	YAMLFilename string

	DisableDocs bool

	// SwaggerUIConfig adds options to the SwaggerUIBundle call, e.g.
	// {"docExpansion": "none"}.
	SwaggerUIConfig map[string]any
}

func (cfg HandleConfig) route(basePath, filename, fallback string) string {
	switch {
	case filename == "":
		filename = fallback
	case filename == Disabled:
		return ""
	case strings.HasPrefix(filename, "/"):
		return filename
	}
	return basePath + "/" + filename
}

// Handle serves the document under basePath: the JSON and YAML documents
// and a docs page reading the JSON one, or the YAML one when JSON is
// disabled. A nil cfg uses the defaults.
//
//	spec.Handle(r, "/swagger", &openapi.HandleConfig{
//	    JSONFilename: "/api/v1/swagger.json",
//	    YAMLFilename: openapi.Disabled,
//	})
//	// /swagger/              docs page reading /api/v1/swagger.json
//	// /api/v1/swagger.json   JSON document
//
// Serialized documents are cached until the spec changes.
func (s *Spec) Handle(r *mux.Router, basePath string, cfg *HandleConfig) {
	if cfg == nil {
		cfg = &HandleConfig{}
	}
	basePath = strings.TrimRight(basePath, "/")

	jsonPath := cfg.route(basePath, cfg.JSONFilename, "schema.json")
	yamlPath := cfg.route(basePath, cfg.YAMLFilename, "schema.yaml")

	if jsonPath != "" {
		s.serveDocument(r, jsonPath, "application/json", encodeJSON)
	}
	if yamlPath != "" {
		s.serveDocument(r, yamlPath, "application/x-yaml", encodeYAML)
	}

	specURL := cmp.Or(jsonPath, yamlPath)
	if cfg.DisableDocs || specURL == "" {
		return
	}
	s.serveDocsPage(r, basePath, cfg, specURL)
}

// renderCache keeps a serialized document until the spec changes.
type renderCache struct {
	mu       sync.Mutex
	valid    bool
	revision uint64
	data     []byte
	err      error
}

func (c *renderCache) get(s *Spec, encode func(*Document) ([]byte, error)) ([]byte, error) {
	rev := s.Revision()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.revision == rev {
		return c.data, c.err
	}

	func() {
		defer func() {
			if rv := recover(); rv != nil {
				c.err = fmt.Errorf("%v", rv)
			}
		}()
		c.data, c.err = encode(s.Build())
	}()
	c.valid = true
	c.revision = rev
	return c.data, c.err
}

// JSON serializes the current document as indented JSON.
func (s *Spec) JSON() ([]byte, error) {
	return encodeJSON(s.Build())
}

// YAML serializes the current document as YAML. Field names follow the
// JSON encoding.
func (s *Spec) YAML() ([]byte, error) {
	return encodeYAML(s.Build())
}

func encodeYAML(doc *Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}

func encodeJSON(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func (s *Spec) serveDocument(r *mux.Router, path, contentType string, encode func(*Document) ([]byte, error)) {
	var cache renderCache
	r.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		data, err := cache.get(s, encode)
		if err != nil {
			http.Error(w, "openapi: cannot serialize document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}).Methods(http.MethodGet, http.MethodHead)
}

func (s *Spec) serveDocsPage(r *mux.Router, basePath string, cfg *HandleConfig, specURL string) {
	page := sync.OnceValue(func() []byte {
		title := cmp.Or(cfg.Title, s.Info().Title)
		return []byte(cfg.UI.page(title, specURL, cfg.SwaggerUIConfig))
	})
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page())
	}

	if basePath == "" {
		r.HandleFunc("/", handler).Methods(http.MethodGet, http.MethodHead)
		return
	}
	r.HandleFunc(basePath, handler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(basePath+"/", handler).Methods(http.MethodGet, http.MethodHead)
}

const pageLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
%s</head>
<body>
%s</body>
</html>`

// page renders the docs page loading specURL.
func (ui DocsUI) page(title, specURL string, options map[string]any) string {
	var head, body string
	switch ui {
	case DocsRapiDoc:
		head = `<script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>` + "\n"
		body = fmt.Sprintf("<rapi-doc spec-url=%q></rapi-doc>\n", specURL)
	case DocsRedoc:
		body = fmt.Sprintf("<redoc spec-url=%q></redoc>\n", specURL) +
			`<script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>` + "\n"
	default:
		head = `<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">` + "\n"
		body = `<div id="swagger-ui"></div>` + "\n" +
			`<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>` + "\n" +
			fmt.Sprintf("<script>\nSwaggerUIBundle({url: %q, dom_id: \"#swagger-ui\"%s});\n</script>\n", specURL, jsOptions(options))
	}
	return fmt.Sprintf(pageLayout, html.EscapeString(title), head, body)
}

// jsOptions renders extra object properties in key order. Values that
// cannot be encoded are skipped.
func jsOptions(options map[string]any) string {
	var buf strings.Builder
	for _, k := range slices.Sorted(maps.Keys(options)) {
		v, err := json.Marshal(options[k])
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, ", %s: %s", k, v)
	}
	return buf.String()
}
