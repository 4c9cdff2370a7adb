package openapi

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Supported OpenAPI document versions.
const (
	Version30 = "3.0.3"
	Version31 = "3.1.0"
)

// ErrUnsupportedVersion is returned by SetVersion for versions the
// document model cannot describe.
var ErrUnsupportedVersion = errors.New("openapi: unsupported version")

// macroTypeMap maps mux route macros to OpenAPI type and format.
var macroTypeMap = map[string][2]string{
	"uuid":     {"string", "uuid"},
	"int":      {"integer", "int32"},
	"float":    {"number", "float"},
	"slug":     {"string", ""},
	"alpha":    {"string", ""},
	"alphanum": {"string", ""},
	"date":     {"string", "date"},
	"hex":      {"string", ""},
	"domain":   {"string", "hostname"},
}

// pathVarRegexp matches route variables in the form {name} or {name:macro}.
var pathVarRegexp = regexp.MustCompile(`\{([^{}:]+)(?::((?:[^{}]|\{[^{}]*\})*))?\}`)

// Spec accumulates operations by path and renders a Document. It is safe
// for concurrent use.
type Spec struct {
	mu       sync.RWMutex
	revision uint64

	version string
	info    Info
	servers []Server
	paths   map[string]*PathItem
	gen     *SchemaGenerator

	externalDocs *ExternalDocs
	tags         []Tag
}

// NewSpec creates a new spec with the given API info. The document version
// defaults to Version31.
func NewSpec(info Info) *Spec {
	return &Spec{
		version: Version31,
		info:    info,
		paths:   make(map[string]*PathItem),
		gen:     NewSchemaGenerator(),
	}
}

// SetVersion selects the OpenAPI version written to the document.
func (s *Spec) SetVersion(version string) error {
	switch version {
	case Version30, Version31:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
	s.gen.version = version
	s.revision++
	return nil
}

// Version returns the OpenAPI version written to the document.
func (s *Spec) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Info returns the API info.
func (s *Spec) Info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// AddServer adds a server to the spec.
func (s *Spec) AddServer(server Server) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.servers = append(s.servers, server)
	s.revision++
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Spec) SetExternalDocs(url, description string) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalDocs = &ExternalDocs{URL: url, Description: description}
	s.revision++
	return s
}

// AddTag describes a tag. Tags used by operations are listed even when
// they were never added.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, tag)
	s.revision++
	return s
}

// WithGenerator runs fn with the spec's schema generator. Component schemas
// collected by fn become part of the document.
func (s *Spec) WithGenerator(fn func(g *SchemaGenerator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.gen)
	s.revision++
}

// AddPath adds operations keyed by HTTP method to an OpenAPI path. Methods
// already present on the path are replaced; other methods are kept.
func (s *Spec) AddPath(path string, ops map[string]*Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.paths[path]
	if !ok {
		item = &PathItem{}
		s.paths[path] = item
	}
	for method, op := range ops {
		assignOperation(item, strings.ToUpper(method), op)
	}
	s.revision++
}

// Revision changes whenever the document content may have changed.
func (s *Spec) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Build assembles the current Document. The returned document shares
// operation and schema values with the spec and must not be modified.
func (s *Spec) Build() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := &Document{
		OpenAPI:      s.version,
		Info:         s.info,
		Servers:      s.servers,
		Paths:        make(map[string]*PathItem, len(s.paths)),
		ExternalDocs: s.externalDocs,
	}
	for path, item := range s.paths {
		cp := *item
		doc.Paths[path] = &cp
	}

	doc.Components = s.buildComponents()
	doc.Tags = s.mergeTags(doc.Paths)

	return doc
}

// buildComponents returns the schemas collected by the generator, or nil
// when there are none.
func (s *Spec) buildComponents() *Components {
	schemas := s.gen.Schemas()
	if len(schemas) == 0 {
		return nil
	}

	comp := &Components{Schemas: make(map[string]*Schema, len(schemas))}
	for name, schema := range schemas {
		comp.Schemas[name] = schema
	}
	return comp
}

// mergeTags combines tags used by operations with user-defined tags.
// User-defined tags keep their description and externalDocs; the result
// is sorted by name.
func (s *Spec) mergeTags(paths map[string]*PathItem) []Tag {
	userTags := make(map[string]Tag, len(s.tags))
	for _, tag := range s.tags {
		userTags[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag

	for _, item := range paths {
		for _, op := range item.Operations() {
			for _, name := range op.Tags {
				if seen[name] {
					continue
				}
				seen[name] = true
				if userTag, ok := userTags[name]; ok {
					tags = append(tags, userTag)
				} else {
					tags = append(tags, Tag{Name: name})
				}
			}
		}
	}

	for _, tag := range s.tags {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags
}

// Operations returns the operations of the path item keyed by upper-case
// HTTP method.
func (p *PathItem) Operations() map[string]*Operation {
	out := make(map[string]*Operation)
	for method, op := range map[string]*Operation{
		http.MethodGet:     p.Get,
		http.MethodPut:     p.Put,
		http.MethodPost:    p.Post,
		http.MethodDelete:  p.Delete,
		http.MethodOptions: p.Options,
		http.MethodHead:    p.Head,
		http.MethodPatch:   p.Patch,
		http.MethodTrace:   p.Trace,
	} {
		if op != nil {
			out[method] = op
		}
	}
	return out
}

// assignOperation assigns an operation to the HTTP method field of the
// path item.
func assignOperation(pathItem *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		pathItem.Get = op
	case http.MethodPost:
		pathItem.Post = op
	case http.MethodPut:
		pathItem.Put = op
	case http.MethodDelete:
		pathItem.Delete = op
	case http.MethodPatch:
		pathItem.Patch = op
	case http.MethodHead:
		pathItem.Head = op
	case http.MethodOptions:
		pathItem.Options = op
	case http.MethodTrace:
		pathItem.Trace = op
	}
}

// ParsePath converts a mux path template to OpenAPI format and returns a
// required path parameter per variable, typed from the variable's macro.
// Raw regexp constraints and unknown macros are typed as strings.
func ParsePath(tpl string) (string, []*Parameter) {
	var params []*Parameter

	openAPIPath := pathVarRegexp.ReplaceAllStringFunc(tpl, func(match string) string {
		sub := pathVarRegexp.FindStringSubmatch(match)
		varName, macroName := sub[1], sub[2]

		param := &Parameter{
			Name:     varName,
			In:       "path",
			Required: true,
			Schema:   MacroSchema(macroName),
		}

		params = append(params, param)
		return "{" + varName + "}"
	})

	return openAPIPath, params
}

// MacroSchema returns the parameter schema for a route macro name.
func MacroSchema(macro string) *Schema {
	schema := &Schema{Type: TypeString("string")}
	if typeInfo, ok := macroTypeMap[macro]; ok {
		schema.Type = TypeString(typeInfo[0])
		schema.Format = typeInfo[1]
	}
	return schema
}
