// Package ui is the keyconsole terminal interface, built on Bubble Tea.
//
// Core abstractions:
//   - View: a screen or region with its own Init/Update/View (Elm-style)
//   - ModalShell: open/close container; holds a key listener and the page
//     scroll lock for exactly as long as it is open
//   - Dialog: an action dialog composed on a ModalShell; emits SubmitFormMsg
//   - APIKeyCard: reveal/copy card with a self-reverting copied indicator
//   - OverlayStack: open dialogs, topmost receives input first
//   - FocusManager: rotates focus across the project view's panels
//
// AppModel wires these to the platform API, the action submitter and the
// toast store.
package ui
