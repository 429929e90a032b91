/*
Package runner drives a task.Task from data instead of method calls.

A Command names one operation and carries its arguments; Execute applies it.
Commands arrive from derivation scripts (Script, YAML or JSON), from REPL
lines (ParseLine) and from the HTTP and MCP adapters (DecodeCommand).

# Usage

	s, err := runner.LoadScript("derivation.yaml")
	if err != nil {
		log.Fatal(err)
	}
	t, err := s.NewTask(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.Run(t); err != nil {
		log.Fatal(err)
	}
	t.DumpState(os.Stdout)
*/
package runner
