// Package preflight provides readiness checks for the external binaries and
// filesystem paths benchcat depends on. `benchcat doctor` renders every
// result; workflows do not call it and instead surface failures per item.
package preflight
