// Package format renders amounts and dates for display.
//
// All storefront views share these helpers so that every price shows the
// same currency glyph and precision, and every order date uses the same
// long-form calendar layout.
package format
