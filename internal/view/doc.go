// Package view renders storefront state as terminal text.
//
// Every function is a pure mapping from state to text; nothing here reads
// the store or the network. Cart implements cart.Renderer so the cart
// controller can redraw after each mutation.
package view
