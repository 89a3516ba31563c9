package session

import "expvar"

var (
	roomsCreatedTotal  = expvar.NewInt("rooms_created_total")
	matchesPairedTotal = expvar.NewInt("matches_paired_total")
	movesTotal         = expvar.NewInt("moves_total")
	reconnectsTotal    = expvar.NewInt("reconnects_total")
	evictionsTotal     = expvar.NewInt("evictions_total")
)
