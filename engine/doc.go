/*
Package engine contains the stateful timeline engine of a multitrack audio
editor.

The Engine owns the tracks and clips of a timeline together with playback,
selection, loop and zoom state. Consumers never modify that state directly:
they call the mutation methods (MoveClip, TrimClip, SplitClip, SetSelection,
ZoomIn, ...), which constrain the request with the pure operations of the
timeline package, update the state, forward what is needed to the audio
Adapter and finally emit events. A consumer mirrors the engine by listening to
the statechange event, which carries a deep copy of the whole State.

The engine works without an adapter ("state-only" mode): every state
transition still happens, only the calls to the audio backend are skipped.

The Engine is not safe for concurrent use. All calls, including the frame
callbacks requested from the Scheduler, must come from the goroutine that owns
the engine; FrameClock delivers its frames on a channel for exactly that
reason.
*/
package engine
