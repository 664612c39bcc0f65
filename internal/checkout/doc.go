// Package checkout turns the stored cart into a placed order.
//
// A Submitter runs one attempt at a time through
//
//	Idle -> Validating -> Submitting -> Succeeded | Failed
//
// Validation failures return to Idle without touching the network. The
// local order log and cart change only after the backend confirms the
// order; a failed attempt leaves both exactly as they were so the shopper
// can retry.
//
// Retries of the same checkout share an idempotency key stored in the
// "checkout-key" slot, so a retry after a lost response does not place a
// second order on servers that honour the header.
package checkout
