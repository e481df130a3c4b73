// Package game implements the Texas Hold'em hand engine for a single table.
//
// The main type is Engine, which owns a Table (a fixed arena of seats) and
// at most one Hand in progress. Callers seat agents, start hands and feed
// actions; the engine drives the BettingState through each round, deals
// community cards, settles the pot and records an ordered event log.
//
// # Basic Usage
//
//	e, err := game.NewEngine(game.TableConfig{
//	    ID: "t1", SmallBlind: 5, BigBlind: 10,
//	    MinBuyIn: 200, MaxBuyIn: 1000, MaxPlayers: 6,
//	}, game.WithSeed(42))
//	_ = e.SeatPlayer("alice", 0, 500)
//	_ = e.SeatPlayer("bob", 1, 500)
//	hand, _ := e.StartHand()
//	continues, err := e.ProcessAction("bob", game.Call, 0)
//
// # Concurrency
//
// Engine is not safe for concurrent use. All mutating calls and snapshots
// for one table must be serialized by the caller; internal/session runs
// each engine on its own goroutine for that purpose.
//
// # Invariants
//
// After every mutating call the engine verifies that the sum of stacks,
// the live pot and the rake collected equals the chips bought in. A breach
// is a programming error and panics, as does a corrupted deck.
package game
