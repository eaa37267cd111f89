// Package watch maps filesystem changes to task runs.
//
// Each Binding owns a goroutine that runs its task one invocation at a time.
// Events arriving while a run is in flight collapse into a single follow-up
// run. Dispatch from a changed path to bindings is the pure function Match.
package watch
