// Package services implements the driving ports on top of the driven ones.
// Nothing here touches SQLite, ONNX or HTTP directly, so each service is
// tested against the in-memory store and the static embedder.
package services
