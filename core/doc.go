// Package core defines the shared data model of the strategy engine: per-lap
// telemetry records, trigger events with urgency tiers, arbitration decisions,
// recommendations and the call budget. All other packages depend on core;
// core depends on nothing but the standard library and uuid.
package core
