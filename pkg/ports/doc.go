/*
Package ports defines the driven ports (interfaces) of the conversation service.

These interfaces decouple the transport adapters and the session manager from
the concrete engine and storage backends.

# Key Interfaces

  - Engine: advances a conversation by one turn and renders prompts.
  - ConversationStore: persists conversation snapshots between turns.
  - DistributedLocker: serialises turns of one conversation across replicas.
*/
package ports
