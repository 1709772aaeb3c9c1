/*
Package demark turns lightweight markup produced by language models into clean,
presentation-ready plain text.

Model replies arrive sprinkled with Markdown: bold and italic markers, headings,
list bullets, code fences, links and horizontal rules. Demark strips that
surface syntax while keeping the reading order, the line structure and the
paragraph breaks, so the text can be shown in a terminal, a notification or
any widget that does not render Markdown.

# Concept

The core is a pure transform (Normalize) built from an ordered list of
substitution rules (package markup). On top of it sit:

  - Normalizer: the same transform with an optional cache, Prometheus metrics
    and structured logging, plus Render, which turns an assistant Response
    into a View ready for display.
  - Adapters: in-memory and Redis caches, a Loam transcript archive, an HTTP
    service, an MCP tool server and a client for the research assistant API.

# Key Properties

  - Total: any string, or an absent value, yields a string. Nothing panics.
  - Idempotent: Normalize(Normalize(x)) == Normalize(x).
  - Safe for concurrent use: the compiled rules are immutable.
  - Code is kept: fenced blocks lose their fences, never their content.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/demark"
	)

	func main() {
		fmt.Println(demark.Normalize("## Result\n\n- **Reuters**: world news"))
		// Output:
		// Result
		//
		// Reuters: world news
	}

For the full service, build a Normalizer:

	n := demark.New(
		demark.WithCache(memory.NewCache(memory.WithLimit(1024))),
		demark.WithMetrics(observability.NewMetrics()),
	)
	view := n.Render(ctx, resp)
*/
package demark
