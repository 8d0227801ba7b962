// Package metalsim simulates the multi-year evolution of a physical
// precious-metals savings plan (gold, silver, platinum, palladium) under a
// configurable purchase schedule, periodic rebalancing, recurring storage
// fees, and an optional trend-following allocation strategy.
//
// The core functionalities include:
//   - Price History: a gap-free, date-indexed spot price table with
//     nearest-trading-date lookup and forward/backward fill.
//   - Purchase Scheduling: weekly, monthly or quarterly purchase dates
//     snapped to real trading dates.
//   - Trend Scoring: three interchangeable ranking strategies (simple,
//     momentum, MACD) that reorder target weights by recent performance,
//     with a rate limiter bounding per-purchase allocation changes.
//   - Rebalancing: threshold- and cooldown-gated selling of over-weight
//     metals and buying of under-weight metals, with asymmetric buy/sell
//     pricing.
//   - Storage Fees: a yearly liquidation covering a percentage-of-capital
//     fee plus tax, funded from one metal, the year's best performer, or
//     pro-rata across all holdings.
//   - Ledger: the append-only record of holdings, invested capital and
//     valuation over time, enriched with inflation-deflated real values.
//
// A simulation is a pure function of (PriceTable, InflationTable, Config):
// it owns no state across runs and performs no I/O. Data loading and
// reporting live in the msim command-line tool built on this package.
package metalsim
