// Package feed serves an observable entry collection over HTTP.
//
// A Hub owns the collection and runs every read and mutation on its own
// goroutine, so the collection itself never needs locking. Handlers submit
// work with Hub.Do. The hub listens to both collection signals and streams
// them as JSON messages to WebSocket clients on GET /events; each client
// first receives a snapshot of the current items.
//
// Routes:
//
//	GET    /entries           list entries
//	POST   /entries           append {id?, name, done?}
//	DELETE /entries           clear
//	POST   /entries/move      move {from, to}
//	PUT    /entries/{index}   replace {id?, name, done?}
//	PATCH  /entries/{index}   update fields {id?, name?, done?}
//	DELETE /entries/{index}   remove
//	GET    /events            WebSocket event stream
//	GET    /metrics           Prometheus metrics, when configured
//	GET    /healthz           liveness
//
// Errors are returned as coded JSON bodies (see internal/errors).
package feed
