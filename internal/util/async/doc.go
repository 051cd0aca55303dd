// Package async provides utilities for concurrent task execution.
//
// [RunParallel] fans out a handful of independent operations and joins their
// errors; it is used to fetch coordinator and relay provider state at the same
// time. [RunBatch] applies one action to every item of a list through a
// bounded worker pool, reporting each completion to a [Tracker] and isolating
// per-item failures so that one failed request never stops the batch.
package async
