// Package history records deployment runs and their per-resource events in
// a local SQLite database.
//
// The database uses WAL mode with a single connection, so one process
// writes while others (for example `stagehand history`) read.
package history
