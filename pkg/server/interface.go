/*
Package server implements msgpack IPC for the species search service.

The server provides a minimal interface for catalog queries using
msgpack serialization over stdin/stdout. Messages are processed
synchronously with timing info included in responses.

# IPC

Clients send structured messages via stdin and receive responses
through stdout. Each message carries an ID, an op, and op-specific
fields.

Search requests use mainly this structure:

	{"id": "req_001", "op": "search", "q": "あじ", "l": 10}

The server responds with suggestions ranked by popularity:

	{"id": "req_001", "s": [{"id": "ma-aji", "n": "マアジ", "p": 95}], "c": 1, "t": 145}

The "detailed" op returns the same candidates annotated with the field
and score that produced each match. "validate" runs the new-name rules,
"stats" reports catalog aggregates, and "reload" drops the catalog
cache and rebuilds the index.

Response structures include status information and error details when
an op fails.
*/
package server

// Request is an incoming frame. Fields beyond ID and Op are read per
// op: q/l and the filters for search ops, name/existing for validate.
type Request struct {
	ID       string   `msgpack:"id"`
	Op       string   `msgpack:"op"`
	Query    string   `msgpack:"q,omitempty"`
	Limit    int      `msgpack:"l,omitempty"`
	Category string   `msgpack:"cat,omitempty"`
	Season   string   `msgpack:"season,omitempty"`
	Habitat  string   `msgpack:"habitat,omitempty"`
	NoSort   bool     `msgpack:"nosort,omitempty"`
	Name     string   `msgpack:"name,omitempty"`
	Existing []string `msgpack:"existing,omitempty"`
}

// Suggestion is one search result payload.
type Suggestion struct {
	ID           string `msgpack:"id"`
	Name         string `msgpack:"n"`
	Popularity   int    `msgpack:"p"`
	Category     string `msgpack:"cat"`
	Score        int    `msgpack:"score,omitempty"`
	MatchedField string `msgpack:"field,omitempty"`
	MatchedText  string `msgpack:"text,omitempty"`
}

// SearchResponse answers search and detailed ops.
type SearchResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"` // microseconds
}

// StatsResponse answers the stats op.
type StatsResponse struct {
	ID             string         `msgpack:"id"`
	TotalEntities  int            `msgpack:"total"`
	ByCategory     map[string]int `msgpack:"by_category"`
	BySource       map[string]int `msgpack:"by_source"`
	LastUpdated    int64          `msgpack:"last_updated"` // unix millis, 0 when never built
	IndexSizeBytes int            `msgpack:"index_size_bytes"`
}

// ValidateResponse answers the validate op.
type ValidateResponse struct {
	ID        string `msgpack:"id"`
	OK        bool   `msgpack:"ok"`
	Sanitized string `msgpack:"sanitized,omitempty"`
	Code      string `msgpack:"code,omitempty"`
	Message   string `msgpack:"message,omitempty"`
}

// StatusResponse reports lifecycle transitions: ready, reloaded.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
	Count  int    `msgpack:"count,omitempty"`
}

// ErrorResponse reports a failed op.
type ErrorResponse struct {
	ID    string `msgpack:"id,omitempty"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
