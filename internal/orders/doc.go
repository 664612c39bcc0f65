// Package orders finds placed orders by tracking code and lists the local
// order history.
package orders
