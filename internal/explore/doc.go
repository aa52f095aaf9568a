// Package explore is the request-handling shell around the generation and
// rendering pipeline.
//
// An [Explorer] owns the explicit state a user session needs: the
// parameters on screen, where they came from, the iteration window and the
// rating session. Each request (random reroll, preset, manual entry,
// variant or window change) produces a candidate [State]; [Visualize] turns
// a state into a drawn [Frame], and only a successful frame is committed.
// A failed request leaves both the state and the previous drawing intact.
//
// [Latest] serialises concurrent requests for one surface so that only the
// most recent one is ever delivered.
package explore
