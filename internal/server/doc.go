// Package server provides HTTP routing, middleware, and the hook endpoints that trigger syncs.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] patterns, so routes carry their method and
// path wildcards ("POST /api/lists/{id}/sync").
//
// # Hooks
//
// [HookHandler] serves two routes:
//   - POST /hooks/events : a record event {"message":"Create","target":{"logical_name":"list","id":"..."}}
//   - POST /api/lists/{id}/sync : the sync button bound action for one marketing list
//
// List events fire on Create and Update, sync record events on Create only. Target ids must be GUIDs.
// Events for other messages or logical names are acknowledged and ignored.
// Every reply is JSON {"ok":bool,"message":string,"kind":string,"outputs":{...}}; handler failures carry
// the failure kind and the user-facing message.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
