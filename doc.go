// Package portfolio holds the data model and the valuation engine of a live
// investment portfolio.
//
// A portfolio is received once from a remote service as a [Portfolio]
// payload. Its positions become the seed of a live stream (see package
// stream) that perturbs prices on a fixed cadence and publishes one
// [Snapshot] per tick.
//
// The valuation engine is a set of pure functions:
//   - [Valuate] computes the market value, profit and loss, and profit and
//     loss percentage of a single [Position] from its quantity, cost and
//     last traded price.
//   - [Aggregate] computes the portfolio level [Balance] from a set of
//     positions.
//   - [NewSnapshot] valuates and aggregates the very same set of positions,
//     so that a snapshot never mixes values computed from different prices.
//
// Derived values are never stored on a [Position]: they are recomputed on
// every tick. Formatting those values for display is the business of package
// renderer.
package portfolio
