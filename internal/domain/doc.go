// Package domain models the supply-chain risk data that flows through the
// service: the subjects under assessment, the evidence collected for them
// each cycle, and the scored assessments produced from that evidence.
//
// # Subjects
//
// A Subject is a supplier with a fixed site location (WGS-84 coordinates),
// an ISO-3166 alpha-3 country code for economic indicator lookups, and an
// optional stock ticker for market data. Subjects are loaded once from the
// registry file at startup and are immutable for the lifetime of the process.
//
// # Collection cycles
//
// One collection cycle fetches every applicable upstream domain (weather,
// disasters, news, trade indicators, market data) for every subject and
// assembles the results into one DataBundle per subject. Every bundle field
// is optional: a failed or empty upstream fetch leaves the documented default
// in place rather than failing the bundle. Absence is an expected state the
// scoring engine knows how to price, not an error.
//
// # Assessments
//
// An AssessmentRecord pairs a RiskScoreSet with the bundle it was computed
// from. Records are insert-only: each cycle appends a new record to the
// subject's history and never rewrites an earlier one, so the history is a
// faithful audit trail and any score can be replayed from its retained bundle.
package domain
