// Package detection locates a known icon in a desktop screenshot.
//
// Two independently failing strategies are combined by one decision
// procedure: multi-scale template matching is tried first, and optical text
// recognition of the icon's caption is consulted only when the template
// match is inconclusive. A bounded retry loop wraps each attempt, so a
// transient desktop state (a dialog covering the icon, a theme transition)
// can resolve itself between captures.
//
// The package performs no I/O of its own. Screen capture, text recognition,
// and diagnostic output are collaborators passed in as interfaces.
package detection
