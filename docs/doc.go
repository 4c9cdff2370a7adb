// Package docs builds an OpenAPI document from annotated views and
// resources and serves it next to a docs UI.
//
// Views are documented from their annotations: UseKwargs becomes
// parameters or a request body, MarshalWith becomes responses and Doc
// options are merged into the operation as they are. Paths and path
// parameters come from the routes registered under the view's endpoint.
//
//	d, err := docs.New(docs.Config{Title: "Pets", Version: "v1"})
//	if err != nil {
//		return err
//	}
//
//	r := mux.NewRouter()
//	r.Handle("/pets/{id:int}", getPet).Methods(http.MethodGet).Endpoint("get_pet")
//
//	if err := d.Register(getPet); err != nil {
//		return err
//	}
//	if err := d.InitApp(r); err != nil {
//		return err
//	}
//
// Registrations made before InitApp are queued. Resources are documented
// per verb; pass construction arguments with ResourceTarget when
// class-level references depend on them:
//
//	d.Register(docs.ResourceTarget(petResource, []any{petSchema}, nil))
//
// Blueprint documents rules as they are added to a mux.Blueprint:
//
//	bp := r.Blueprint("v2", "/v2")
//	d.Blueprint(bp)
//	bp.AddRule("/pets", "list_pets", listPets, http.MethodGet)
//
// Config can be loaded from YAML or TOML with LoadConfig.
package docs
