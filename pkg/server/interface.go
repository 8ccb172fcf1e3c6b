/*
Package server implements msgpack IPC for sub-anagram queries.

The server reads msgpack messages from stdin and writes one msgpack message to
stdout per request. Logs go to stderr. On start it announces itself:

	{"status": "ready"}

A query request carries an ID, an optional action and the letters:

	{"id": "req_001", "a": "query", "q": "trace"}

The server responds with the matching words in dictionary order, the total
match count and the lookup time in microseconds:

	{"id": "req_001", "w": ["cat", "act", "a", "car", "art"], "c": 5, "t": 42}

Invalid input is answered with an error message instead, so a client can
always tell "no words" (an empty "w") from "bad letters":

	{"id": "req_002", "e": "invalid character '4' at offset 2 in \"tr4ce\"", "c": 400}

Other actions are "stats" (index size, strategy and the number of requests
handled so far, this one included) and "health".

Server settings (query length limit, result cap) are re-read when the config
file changes. hot_cache and watch_config are fixed at start: a change is
logged as needing a restart and otherwise ignored. Dictionary settings only
apply to the next start, since the index is immutable once built.
*/
package server

// Action names
const (
	ActionQuery  = "query"
	ActionStats  = "stats"
	ActionHealth = "health"
)

// Error codes
const (
	CodeInvalidQuery  = 400
	CodeUnknownAction = 404
	CodeEmptyQuery    = 411
	CodeQueryTooLong  = 413
)

// Request - query, stats or health request
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a,omitempty"`
	Query  string `msgpack:"q,omitempty"`
}

// QueryResponse - matching words. Count is the number of matches before any
// max_results cap; Truncated is set when Words was cut.
type QueryResponse struct {
	ID        string   `msgpack:"id"`
	Words     []string `msgpack:"w"`
	Count     int      `msgpack:"c"`
	Truncated bool     `msgpack:"tr,omitempty"`
	TimeTaken int64    `msgpack:"t"`
}

// StatsResponse - index statistics
type StatsResponse struct {
	ID       string `msgpack:"id"`
	Entries  int    `msgpack:"entries"`
	Groups   int    `msgpack:"groups"`
	Strategy string `msgpack:"strategy"`
	Requests int    `msgpack:"requests"`
}

// StatusResponse - ready and health messages
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// QueryError holds basic error information for failed requests
type QueryError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
