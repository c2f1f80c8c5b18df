// Package chat answers typed messages from the website chat widget with
// canned responses. It is independent of the conversation engine: a message
// is matched against predefined question patterns, then beverage and menu
// keywords, and otherwise gets a fallback reply. Phrasing variety goes
// through a Chooser so tests can pin it.
package chat
