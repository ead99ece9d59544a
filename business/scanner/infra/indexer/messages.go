// Package indexer implements the VenueClient interface on top of a pool
// indexer's WebSocket feed.
package indexer

// subscribeMessage asks the indexer to stream updates for a set of pools.
type subscribeMessage struct {
	Action string   `json:"action"`
	Pools  []string `json:"pools"`
}

// poolUpdateMessage is one reserve snapshot pushed by the indexer.
type poolUpdateMessage struct {
	Event     string `json:"event"`
	Pool      string `json:"pool"`
	ReserveA  string `json:"reserve_a"`
	ReserveB  string `json:"reserve_b"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}
