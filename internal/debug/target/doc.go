// Package target defines the capability surface the evaluation engine
// consumes from the native debugging transport.
//
// The engine never talks to the runtime's debugging API directly; it sees
// processes, threads, evaluation handles and modules only through the
// interfaces here. Concrete implementations belong to the transport layer
// that owns the native debugging session.
//
// Handle ownership follows the runtime's rules: an Eval is borrowed for the
// lifetime of one evaluation, while a result Value is owned by whoever holds
// it and must be released exactly once.
package target
