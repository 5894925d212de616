package state

var (
	// consumed mint signatures, 65 bytes as a hex string without prefix '0x'.
	// Rows are only ever inserted.
	signatureTable = `CREATE TABLE IF NOT EXISTS signature (
		sig CHAR(130) PRIMARY KEY NOT NULL,
		CONSTRAINT chk_sig CHECK (length(sig) = 130)
	);`

	// burn events kept for the custodian network to relay. Amount is a
	// decimal string since it may not fit in a sqlite integer.
	burnEventTable = `CREATE TABLE IF NOT EXISTS burn_event (
		id INTEGER PRIMARY KEY NOT NULL,
		height INTEGER NOT NULL,
		destination BLOB NOT NULL,
		amount TEXT NOT NULL,
		CONSTRAINT chk_id CHECK (id >= 0 AND id < 4294967295),
		CONSTRAINT chk_destination CHECK (length(destination) > 0)
	);`

	// table stores key-value pairs. Both key and value are a 32-byte hex string without prefix '0x'
	kvTable = `CREATE TABLE IF NOT EXISTS kv (
		key CHAR(64) PRIMARY KEY NOT NULL,
		value CHAR(64) NOT NULL
	);`
)

const (
	queryHasSignature    = `SELECT 1 FROM signature WHERE sig = ?`
	queryInsertSignature = `INSERT OR IGNORE INTO signature (sig) VALUES (?)`
	queryGetKeyedValue   = `SELECT value FROM kv WHERE key = ?`
	querySetKeyedValue   = `INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`
	queryInsertBurnEvent = `INSERT INTO burn_event (id, height, destination, amount) VALUES (?, ?, ?, ?)`
	queryGetBurnEvent    = `SELECT height, destination, amount FROM burn_event WHERE id = ?`
	queryGetBurnEvents   = `SELECT id, height, destination, amount FROM burn_event WHERE id >= ? ORDER BY id ASC LIMIT ?`
)

// statements used inside transitions
var txQueries = []string{
	queryHasSignature,
	queryInsertSignature,
	queryGetKeyedValue,
	querySetKeyedValue,
	queryInsertBurnEvent,
}
