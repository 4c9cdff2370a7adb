// Package view attaches request parsing, response marshalling and
// documentation annotations to handlers and dispatches calls through them.
//
// # Functions
//
// Func builds an annotated view. Decorators are listed outermost first:
//
//	pets := view.Func("list_pets", listPets,
//		view.Doc(map[string]any{"tags": []string{"pets"}}),
//		view.UseKwargs(schema.Fields{"species": schema.Str()}, view.Location(webargs.Query)),
//		view.MarshalWith(schema.Of[Pet](schema.Many())),
//	)
//	r.Handle("/pets", pets).Methods(http.MethodGet).Endpoint("list_pets")
//
// A call parses every UseKwargs annotation into Call.Kwargs, runs the
// handler and dumps the returned body through the MarshalWith schema for
// the produced status code, falling back to the schema without a code.
// Handlers return a bare body, a Result such as view.Reply(pet, 201), or an
// http.Handler that is served untouched.
//
// # Resources
//
// NewResource defines class-like handler groups. Extends sets base
// resources; their class-level and per-method annotations are copied into
// the new resource when it is built, so an overriding method without
// decorators keeps the argument parsing of the method it overrides:
//
//	base := view.MustResource("PetBase",
//		view.Attr("schema", petSchema),
//		view.Method("get", getPet, view.MarshalWith(annotation.NewRef("schema"))),
//	)
//	cats := view.MustResource("Cats", view.Extends(base),
//		view.Attr("schema", catSchema),
//	)
//	r.Handle("/cats/{id:int}", cats.AsView(nil, nil)).Endpoint("cats")
//
// Refs resolve against the instance serving the call, so Cats marshals with
// catSchema through the inherited get method.
//
// # Settings
//
// Parser, response formatter, error handler and logger are read from the
// request context. Middleware installs them; requests without settings use
// the defaults.
package view
