/*
Package domain contains the core models of the hostline conversation machine.

It defines the fixed set of conversation states, the slot context collected
from the caller, and the Conversation snapshot persisted between turns. The
package is pure: no I/O, no persistence, no transport.

# Key Entities

  - State: One step of the restaurant dialogue (greeting, city_collection, ...).
  - SlotContext: Named values extracted from the caller so far.
  - Conversation: The runtime snapshot of one call or chat (state, slots, attempts, history).
  - LifecycleHooks: Callbacks fired by the engine when states are entered, left or repeated.
*/
package domain
