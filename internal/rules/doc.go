// Package rules holds the decision-support rules of raido: staleness, carryover,
// convergence, checklist extraction and the status state machine.
//
// Every function here is pure. Callers pass the current time (or calendar day)
// explicitly, and nothing in this package reads the clock or touches storage.
package rules
