// Package cost holds the pricing structures used to estimate what a task
// cost.
//
// [ModelCost] prices tokens per million; [Pricing] adds the per-character,
// per-second, per-image and per-request rates media models bill by. A
// [Pricer] maps a provider and model id to an estimate; [Table] is the
// in-memory implementation filled by the model catalog.
package cost
