// Package planner contains the deterministic scheduling and analytics engine:
// rule-based priority and duration estimation, defensive interpretation of AI
// model output, schedule optimization, and historical usage analysis.
//
// All functions in this package are pure: they take caller-owned snapshots,
// never mutate their input, and take the current time as an explicit
// parameter. They never return errors or panic; malformed input degrades to
// documented defaults.
package planner
