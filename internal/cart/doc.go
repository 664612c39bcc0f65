// Package cart maintains the shopping cart: derived totals over the line
// items and the controller that mutates the persisted list.
//
// Every controller mutation writes the full list back to the store, then
// re-renders the cart once through the injected Renderer.
package cart
