// Package terminal implements the supervision engine: the PTY relay loop,
// output normalization, heuristic question/menu classification, echo and
// cooldown guarding, and the asynchronous consult-then-respond pipeline.
//
// The relay loop owns a Session and multiplexes operator keystrokes with
// supervised-process output. Normalized lines flow through the Guard and
// then the Classifier, in that order; a detection dispatches a consultation
// task that runs off the relay goroutine and, in autonomous mode, types the
// advisor's answer back into the supervised process.
package terminal
