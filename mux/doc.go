// Package mux implements the request router used by apispec views and the
// documentation generator.
//
// The router follows the routing semantics of RFC 9110 (HTTP Semantics) and
// RFC 3986 (URIs). Compared to a general purpose router it keeps only the
// features the documentation layer can introspect:
//   - Path variables with named macros or raw regexp constraints
//   - Method matching with 405 responses and the Allow header
//   - Endpoints: non-unique route groups looked up by name
//   - Route defaults for variables absent from the path
//   - Blueprints: prefixed endpoint namespaces with rule hooks
//   - Middleware
//
// # Router
//
//	r := mux.NewRouter()
//	r.Handle("/pets/{id:int}", petView).Methods(http.MethodGet).Endpoint("get_pet")
//	http.ListenAndServe(":8080", r)
//
// # Path Variables
//
// Routes can have variables enclosed in curly braces, optionally followed by
// a colon and either a macro name or a regular expression:
//
//	/pets/{id:int}
//	/users/{id:uuid}
//	/files/{name:[a-z]+\.txt}
//
// Available macros:
//
//	uuid     - RFC 4122 UUID
//	int      - unsigned integer
//	float    - decimal number
//	slug     - URL-safe slug
//	alpha    - alphabetic characters
//	alphanum - alphanumeric characters
//	date     - ISO 8601 date
//	hex      - hexadecimal string
//	domain   - domain name per RFC 1123
//
// Vars returns the extracted variables:
//
//	id := mux.Vars(r)["id"]
//
// # Endpoints
//
// An endpoint names a group of routes that dispatch to the same handler.
// Several routes may share one endpoint, which is how the documentation
// layer finds every path a handler is reachable from:
//
//	r.Handle("/pets", listView).Endpoint("pets")
//	r.Handle("/animals", listView).Endpoint("pets")
//	routes := r.Endpoint("pets") // both routes
//
// # Defaults
//
// Defaults supply variable values for routes that do not bind them in the
// path:
//
//	r.Handle("/pets", petView).Defaults("id", "1")
//
// # Blueprints
//
// A Blueprint adds routes under a path prefix and prefixes endpoints with its
// name. Hooks registered with OnRule see every rule added through it:
//
//	bp := r.Blueprint("pets", "/v1")
//	bp.AddRule("/pets/{id:int}", "get_pet", petView, http.MethodGet)
//	r.Endpoint("pets.get_pet")
package mux
