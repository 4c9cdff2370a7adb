// Package openapi models OpenAPI 3.0 and 3.1 documents, generates JSON
// Schema from Go types and serves the resulting document.
//
// # Spec
//
// A Spec accumulates operations by path. The docs layer converts annotated
// views into operations and adds them as routes are registered:
//
//	spec := openapi.NewSpec(openapi.Info{Title: "Pet API", Version: "1.0.0"})
//	spec.AddPath("/pets/{id}", map[string]*openapi.Operation{
//	    http.MethodGet: {OperationID: "get_pet"},
//	})
//	doc := spec.Build()
//
// SetVersion selects "3.0.3" or "3.1.0"; other versions are rejected with
// ErrUnsupportedVersion. Nullable values are written with the "nullable"
// keyword in 3.0 documents and as a "null" type in 3.1 documents.
//
// # Path Parameter Typing
//
// ParsePath converts mux templates such as "/pets/{id:int}" to OpenAPI paths
// and types each variable from its macro:
//
//	int    -> integer, int32
//	float  -> number, float
//	uuid   -> string, uuid
//	date   -> string, date
//	domain -> string, hostname
//
// Other macros and raw patterns are strings.
//
// # JSON Schema Generation
//
// SchemaGenerator converts Go types to schemas. Named structs are stored as
// components and referenced with $ref. Struct tags shape the result:
//
//	json:"name,omitempty"          property name; omitempty makes it optional
//	openapi:"description=...,example=..."
//	validate:"required,min=1,oneof=a b"
//
// Values implementing SchemaProvider describe themselves, which is how
// request and response schemas built from field maps are documented.
//
// # Decoding
//
// Decode turns loosely typed documentation maps into an Operation. Keys are
// the JSON field names of the OpenAPI objects.
//
// # Serving the Specification
//
// Handle registers the JSON document, the YAML document and an interactive
// UI on a router:
//
//	spec.Handle(r, "/swagger", nil)
//	// /swagger/             -> Swagger UI
//	// /swagger/schema.json  -> JSON document
//	// /swagger/schema.yaml  -> YAML document
//
// Serialized documents are cached until the spec changes.
package openapi
