package docs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/openapi"
	"github.com/vitalvas/apispec/view"
	"github.com/vitalvas/apispec/webargs"
)

// Docs collects documented targets into an OpenAPI document and serves it.
// Targets registered before InitApp are queued and converted once the
// router is known.
type Docs struct {
	cfg      Config
	spec     *openapi.Spec
	logger   *slog.Logger
	settings view.Settings

	mu        sync.Mutex
	router    *mux.Router
	converter *Converter
	pending   []registration
	seen      map[registrationKey]int

	initOnce sync.Once
	initErr  error
}

// Option configures Docs.
type Option func(*Docs)

// WithSpec documents into an existing spec instead of a new one.
func WithSpec(s *openapi.Spec) Option {
	return func(d *Docs) {
		d.spec = s
	}
}

// WithLogger sets the logger for registrations and handler failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Docs) {
		d.logger = l
	}
}

// WithSettings sets the view settings injected into every request.
func WithSettings(s view.Settings) Option {
	return func(d *Docs) {
		d.settings = s
	}
}

type registration struct {
	target    Target
	endpoint  string
	blueprint string
}

type registrationKey struct {
	id        uuid.UUID
	endpoint  string
	blueprint string
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

// Endpoint overrides the endpoint name derived from the target.
func Endpoint(name string) RegisterOption {
	return func(r *registration) {
		r.endpoint = name
	}
}

// Blueprint looks the endpoint up inside the named blueprint.
func Blueprint(name string) RegisterOption {
	return func(r *registration) {
		r.blueprint = name
	}
}

// New creates the documentation extension. Missing configuration fields
// take their defaults.
func New(cfg Config, opts ...Option) (*Docs, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	d := &Docs{
		cfg:    cfg,
		logger: slog.Default(),
		seen:   make(map[registrationKey]int),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.spec == nil {
		d.spec = openapi.NewSpec(openapi.Info{
			Title:       cfg.Title,
			Version:     cfg.Version,
			Description: cfg.Description,
		})
		for _, server := range cfg.Servers {
			d.spec.AddServer(server)
		}
		for _, tag := range cfg.Tags {
			d.spec.AddTag(tag)
		}
		if cfg.ExternalDocs != nil {
			d.spec.SetExternalDocs(cfg.ExternalDocs.URL, cfg.ExternalDocs.Description)
		}
	}
	if err := d.spec.SetVersion(cfg.OpenAPIVersion); err != nil {
		return nil, fmt.Errorf("%w: %w", view.ErrConfiguration, err)
	}
	if d.settings.Logger == nil {
		d.settings.Logger = d.logger
	}
	if d.settings.Parser == nil {
		d.settings.Parser = &webargs.DefaultParser{DefaultLocation: cfg.DefaultLocation}
	}

	return d, nil
}

// Spec returns the document being built.
func (d *Docs) Spec() *openapi.Spec {
	return d.spec
}

// Config returns the effective configuration.
func (d *Docs) Config() Config {
	return d.cfg
}

// Register documents a view, resource, resource view or Target. Before
// InitApp the registration is queued and only the target kind is checked.
// Registering the same target under the same endpoint again is a no-op
// unless the endpoint gained routes since.
func (d *Docs) Register(target any, opts ...RegisterOption) error {
	t, err := TargetOf(target)
	if err != nil {
		return err
	}

	reg := registration{target: t}
	for _, opt := range opts {
		opt(&reg)
	}

	d.mu.Lock()
	if d.converter == nil {
		d.pending = append(d.pending, reg)
		d.mu.Unlock()

		d.logger.Debug("docs registration deferred", "endpoint", EndpointFor(t, reg.endpoint, reg.blueprint))
		return nil
	}
	d.mu.Unlock()

	return d.register(reg)
}

func (d *Docs) register(reg registration) error {
	key := registrationKey{
		id:        targetID(reg.target),
		endpoint:  EndpointFor(reg.target, reg.endpoint, reg.blueprint),
		blueprint: reg.blueprint,
	}

	d.mu.Lock()
	routes := len(d.router.Endpoint(key.endpoint))
	prev, ok := d.seen[key]
	if ok && prev == routes {
		d.mu.Unlock()
		return nil
	}
	d.seen[key] = routes
	converter := d.converter
	d.mu.Unlock()

	var (
		paths []OperationPath
		err   error
	)
	d.spec.WithGenerator(func(g *openapi.SchemaGenerator) {
		paths, err = converter.Convert(g, reg.target, reg.endpoint, reg.blueprint)
	})
	if err != nil {
		d.mu.Lock()
		if ok {
			d.seen[key] = prev
		} else {
			delete(d.seen, key)
		}
		d.mu.Unlock()
		return err
	}

	for _, p := range paths {
		d.spec.AddPath(p.Path, p.Operations)
	}

	d.logger.Debug("docs registered", "endpoint", key.endpoint, "paths", len(paths))
	return nil
}

// InitApp binds the extension to a router: it installs the view settings
// middleware, serves the document and the docs UI, and converts every
// queued registration. Only the first call has an effect; later calls
// return the first result.
func (d *Docs) InitApp(r *mux.Router) error {
	d.initOnce.Do(func() {
		d.initErr = d.initApp(r)
	})
	return d.initErr
}

func (d *Docs) initApp(r *mux.Router) error {
	if r == nil {
		return fmt.Errorf("%w: nil router", view.ErrConfiguration)
	}

	r.Use(view.Middleware(d.settings))

	basePath, hc := d.cfg.handleConfig()
	d.spec.Handle(r, basePath, hc)

	d.mu.Lock()
	d.router = r
	d.converter = NewConverter(r, d.cfg)
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	var errs []error
	for _, reg := range pending {
		if err := d.register(reg); err != nil {
			errs = append(errs, err)
		}
	}

	d.logger.Info("docs initialized",
		"spec_path", d.cfg.SpecPath,
		"ui_path", d.cfg.UIPath,
		"registered", len(pending)-len(errs),
		"failed", len(errs),
	)
	return errors.Join(errs...)
}

// Blueprint documents every rule added to bp with AddRule, including rules
// already present. Handlers that are not views or resources are skipped.
// Failures are logged since rules are added without an error return.
func (d *Docs) Blueprint(bp *mux.Blueprint) {
	bp.OnRule(func(route *mux.Route, handler http.Handler) {
		endpoint := strings.TrimPrefix(route.GetEndpoint(), bp.Name()+".")

		t, err := TargetOf(handler)
		if err != nil {
			d.logger.Debug("docs skipped rule", "blueprint", bp.Name(), "endpoint", endpoint)
			return
		}

		if err := d.Register(t, Endpoint(endpoint), Blueprint(bp.Name())); err != nil {
			d.logger.Error("docs registration failed",
				"blueprint", bp.Name(),
				"endpoint", endpoint,
				"error", err,
			)
		}
	})
}

func targetID(t Target) uuid.UUID {
	switch t := t.(type) {
	case FunctionTarget:
		return t.View.Annotations().ID()
	case ResourceTargetOf:
		return t.Resource.Annotations().ID()
	}
	return uuid.Nil
}
