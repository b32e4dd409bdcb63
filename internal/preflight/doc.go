// Package preflight provides readiness checks for the filesystem paths,
// credentials, and external services rhetoric depends on.
//
// The CLI "rhetoric check" command runs RunAll and renders each Result. The
// analyze and extract commands do not run these checks; they fail on the
// first real error instead.
package preflight
