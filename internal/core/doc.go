// Package core provides the business logic of the quiz practice backend.
//
// The package holds all domain logic independent of the transport layer. It
// is used by the HTTP server and by the quizctl command line tool.
//
// # Ingestion
//
// An [Ingester] turns the text of a tab-separated question file into a
// stored question set. The flow for one file:
//
//  1. The raw text is fingerprinted with SHA-256 and pre-scanned with
//     [CountValidQuestions] for the number of questions it should yield
//  2. If the owner already stored identical content, the existing set is
//     returned and nothing is written
//  3. [ParseTable] normalizes line endings, strips a byte-order mark and
//     validates the header (questionText and answerText are required)
//  4. Instruction rows (roundNo "instructions") and question rows are split
//     out and written in one transaction through a [Store]
//  5. [Classify] flags the outcome partial when it ran too long or too many
//     expected questions are missing
//
// Any failure rolls the transaction back, so a set is stored completely or
// not at all.
//
// # Service
//
// [Service] wires the ingester to Postgres ([PgStore]) and bounds parallel
// ingestions with an [UploadLimiter]. It also serves set management,
// practice progress, bookmarks, statistics and guest reads, and imports
// files from cloud storage through a [FileSource].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Errors
// caused by the content of a file are recognized by [IsFormatError] and are
// safe to show verbatim.
package core
