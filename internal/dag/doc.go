// Package dag holds the task graph: named tasks with ordered prerequisites,
// validated once at startup, and an Executor that runs them.
//
// A task's prerequisites run to completion before its own action. Series
// tasks run them in declaration order, parallel tasks run them concurrently.
// Recoverable failures reported by actions are logged and collected in the
// run's Report while execution continues. A fatal error stops the run and is
// returned to the caller.
package dag
