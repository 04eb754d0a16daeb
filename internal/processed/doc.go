// Package processed persists the set of asset identifiers that have already
// been boosted. It is the only write-durable state in the system and the sole
// defense against reprocessing an asset after a restart. Backed by SQLite.
package processed
