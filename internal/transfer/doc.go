// Package transfer orchestrates distribution transfers against the pkghub
// API and its object-storage backend.
//
// Uploads run a strictly sequential stage -> digest -> store -> commit
// state machine with no back-edges: a failed store attempt spends its
// staging grant and the whole upload must restart from stage. Downloads
// run a two-phase request -> validate -> follow-redirect -> stream flow so
// unchanged content is detected against the cheap metadata endpoint before
// the (possibly CDN-backed) storage location is touched.
package transfer
