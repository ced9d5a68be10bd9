// Package ui contains the Bubble Tea program for the earbud control panel.
//
// Message flow:
//   - Every call to Model.Update first drains the response channel through the
//     dispatcher, so the frame that follows always reflects everything the
//     session worker emitted so far.
//   - The message is then routed through a typed handler registry. Key presses
//     become uistate events; the pure reducer in internal/ui/state turns them
//     into an updated selection and at most one backend.Command, which is
//     pushed onto the command channel by the command bus.
//   - The worker's redraw requests land on a backend.Notifier. waitForRedraw
//     turns the next request into a redrawMsg, and handling it re-arms the
//     wait. Requests that arrive while a frame is pending collapse into one.
//
// State ownership:
//   - Device identity and the last error live in internal/state.Device and are
//     only changed by folding responses.
//   - The radio selections and cursor live in internal/ui/state.Controls. They
//     record what the user asked for, not what the device confirmed.
package ui
