// Package ports holds the interfaces the layers meet at. Inbound adapters
// call TodoService, the application calls TodoRepository, and readiness
// probes go through HealthRegistry.
package ports
