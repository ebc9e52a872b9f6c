// Package billing covers the commercial side of the platform: browsing
// subscription plans, starting and confirming purchases, and inspecting
// the caller's subscription and payment history.
//
// The payment processor is opaque here. A purchase is two backend calls —
// CreatePaymentIntent and ConfirmPayment — with the processor interaction
// happening between them, outside this package. Nothing is retried.
package billing
