// Package robot builds Robot Framework command lines.
//
// A Robot describes what to execute and how often to retry; each attempt gets
// its own output XML file inside the run's output directory:
//
//	<output dir>/<index>.xml
//	<output dir>/<index>.html
//
// Rebot merges the output files of all attempts of a run into a single
// report, which is embedded into the plan's results file.
package robot
