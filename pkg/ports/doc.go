/*
Package ports defines the driven ports (interfaces) of the conversation
engine.

These interfaces decouple traversal from external implementations,
allowing the engine to work with different content sources and session
storage backends.

# Key Interfaces

  - TreeLoader: loads dialogue trees (files, memory, remote content).
  - SessionStore: persists conversation state for stop & resume.
  - DistributedLocker: serializes session access across replicas.
*/
package ports
