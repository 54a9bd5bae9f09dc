/*
Package arbor is a branching conversation engine for games and
interactive fiction. It walks dialogue trees authored in JSON or YAML,
gating choices on game state (flags, nested context values, quests) and
applying declarative effects as the player moves through the graph.

# Concept

A conversation is a graph of nodes, each carrying display text, an
optional speaker, and a list of choices. Choices point at other nodes
and may carry conditions (evaluated against the game store to decide
visibility) and effects (state mutations applied when the choice is
taken). Nodes can also auto-advance, chaining narration without player
input. The engine holds no session data itself: session state and game
state are plain values the caller persists wherever it likes, which
lets the same core serve an embedded game loop, an HTTP service, or an
MCP tool host.

# Key Features

  - Declarative gating: conditions in a compact string form
    ("flag.has_key", "context.gold >= 50") or structured objects.
  - Fail-closed evaluation: malformed conditions hide the choice,
    malformed effects are skipped, the conversation never crashes.
  - One-time choices, priority ordering, and bounded auto-advance with
    cycle detection.
  - Lifecycle hooks for logging, metrics, analytics.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/mojomast/arbor"
	)

	func main() {
		eng, err := arbor.New("./trees")
		if err != nil {
			log.Fatal(err)
		}

		session, err := eng.NewSession("village_elder")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		view, err := session.Start(ctx)
		if err != nil {
			log.Fatal(err)
		}

		for !view.Terminal {
			fmt.Println(view.Text)
			for i, c := range view.Choices {
				fmt.Printf("%d) %s\n", i+1, c.Text)
			}

			// In a real app this index comes from the player.
			view, err = session.Choose(ctx, 0)
			if err != nil {
				log.Fatal(err)
			}
		}
		fmt.Println(view.Text)
	}
*/
package arbor
