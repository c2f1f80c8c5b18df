/*
Package publisher exports the conversation machine to the voice platform.

Compile turns a transition table and a template catalog into a Graph: one
node per state carrying its prompt, rendered with {{slot}} placeholders the
platform fills from its own dynamic variables, and one edge per transition
carrying the guard as a platform condition expression. Client.Publish
creates the agent, the flow, every node and every edge over the platform's
REST API. A node only gets placeholders for slots that are known on entry
to its state (see flow.EntrySlots); the rest render unset, so the prompt
keeps its instructions for collecting them. This is a one-time compilation step, never part of a live call.

Mermaid renders the same Graph as a flowchart for documentation and
debugging, optionally highlighting the states a conversation visited.
*/
package publisher
