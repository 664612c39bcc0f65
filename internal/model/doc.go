// Package model defines the storefront records shared by the cart, checkout
// and order packages.
//
// The JSON field names match the persisted layout of the "cart" and
// "orders" slots and the backend API, so records written by older clients
// (which lacked ShippingInfo.Email, for instance) still decode.
package model
