// Package plan turns the configuration into the runtime plan model.
//
// A Plan is everything needed to execute one configured robot periodically:
// where it lives, which user runs it, inside which environment, and where
// its working directory and results file are. Plans are derived once at
// startup and passed by value through the setup stages; stages never modify
// a plan, they only decide whether it survives.
//
// Runtime directory layout:
//
//	<runtime>/
//	  results.lock
//	  working/
//	    plans/<plan id>/<run timestamp>/
//	    environment_building/<session id>/
//	    rcc_setup/<session id>/
//	  results/
//	    plans/<plan id>.json
//	  managed_robots/<plan id>/
package plan
