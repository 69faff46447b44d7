// Package harness runs adherence scenarios: a plan, a starting instant and a
// list of commands replayed against a real engine and SQLite store, followed
// by assertions on the final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	now: 2024-01-01T09:00:00Z
//	timezone: UTC              # optional, default UTC
//	plan:                      # inline plan document, or plan_file
//	  plan_start_date: 2024-01-01
//	  total_days: 30
//	  days:
//	    - { day: 1, type: veg, juice: Beet, lunch: [Dal, Rice], dinner: [Soup] }
//	steps:
//	  - command: log_meal
//	    args: { slot: lunch, status: FOLLOWED }
//	  - command: log_support
//	    at: 2024-01-02T09:00:00Z   # move the clock first
//	    args: { id: black_coffee, status: TAKEN }
//	  - command: log_meal
//	    args: { slot: brunch, status: FOLLOWED }
//	    expect_error: UNKNOWN_SLOT
//	assertions:
//	  - type: score_total
//	    value: 100
//	  - type: protocol_lacks
//	    id: black_coffee
//
// A step without a date targets the engine's current view date. Every step
// appends one TraceEvent; the trace is what golden files record.
package harness
