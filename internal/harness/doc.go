// Package harness provides scenario testing for the typewriter engine.
//
// The harness drives a real engine on a testutil.FakeScheduler, applies
// controls at fixed virtual times, and checks the resulting trace against
// the scenario's expectations and, optionally, a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	strings: ["Hi", "Bye"]
//	config:
//	  type_interval_ms: 10
//	  loop: false
//	controls:
//	  - at_ms: 15
//	    action: pause
//	  - at_ms: 40
//	    action: replace
//	    strings: ["New"]
//	until_ms: 500
//	max_steps: 1000
//	expect:
//	  final_phase: complete
//	  final_text: "Bye"
//	  texts: ["H", "Hi", "H", "", "B", "By", "Bye"]
//	  transition_count: { type: 5, complete: 1 }
//
// The config block takes the same keys as a config file (see package
// config), minus strings.
//
// # Timing
//
// All time is virtual. At a given instant, scheduled steps due at or before
// that instant run before a control at the same instant is applied. Without
// until_ms the scenario runs until no timer is pending.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/hi_bye.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
