/*
Package domain contains the data model shared by every demark surface.

It describes what the research assistant sends back and what a front end shows
for it. The package is kept pure: no I/O, no persistence, no markup rules.

# Key Entities

  - Response: The JSON envelope returned by the assistant (summary, tools, trace).
  - Step: One entry of the assistant's trace (tool name and its output).
  - View: The presentation model derived from a Response, with normalized text.
  - Transcript: An archived query together with its View.
*/
package domain
