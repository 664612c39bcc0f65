// Package catalog serves the product list.
//
// The live list comes from the backend. When the backend is unreachable or
// rejects the request the bundled catalog (catalog.cue, embedded at build
// time and checked against its #Product schema) is served instead.
package catalog
