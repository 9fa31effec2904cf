// Package component defines the lifecycle contract shared by paiflow's
// infrastructure pieces and a registry that starts, stops and health-checks
// them in order.
package component
