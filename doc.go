// Package snapback reconstructs the daily valuation history of an investment
// portfolio from a ledger of buy/sell/fee transactions and a table of
// historical closing prices.
//
// It is a batch, single-pass backfill engine, not a live system. The core
// functionalities are:
//   - Ledger Management: loading the transaction CSV into an immutable,
//     chronologically ordered record.
//   - Position Tracking: replaying transactions through a per-(fund, account)
//     position book under the average-cost method, with clamp-at-zero
//     semantics for over-disposals.
//   - Market Data: a static table of historical closing prices keyed by
//     (ticker, date), with a fund-name alias table and one fixed unit
//     conversion for a retirement-plan share class.
//   - Snapshot Generation: a fold over every calendar day in the analysis
//     range, producing aligned per-holding and portfolio-level daily
//     valuation records.
//   - Data Persistence: CSV encoders for the two output collections and a
//     JSONL import/export format for market data.
//
// This package serves as the foundational logic for the `pvs` command-line
// tool.
package snapback
