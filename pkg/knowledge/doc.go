// Package knowledge serves restaurant facts (outlets, hours, facilities, menu)
// from an immutable base loaded once from YAML. Every answer is rendered as
// JSON and kept within a token budget so it can be spoken by the assistant.
package knowledge
