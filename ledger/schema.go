package ledger

var (
	// account is a 32-byte hex string without prefix '0x'. Balances are
	// decimal strings of u128 values.
	accountTable = `CREATE TABLE IF NOT EXISTS account (
		account CHAR(64) PRIMARY KEY NOT NULL,
		free TEXT NOT NULL,
		nonce INTEGER NOT NULL DEFAULT 0,
		CONSTRAINT chk_account CHECK (length(account) = 64),
		CONSTRAINT chk_nonce CHECK (nonce >= 0)
	);`

	// single row holding the total amount in circulation
	issuanceTable = `CREATE TABLE IF NOT EXISTS issuance (
		id INTEGER PRIMARY KEY NOT NULL CHECK (id = 0),
		total TEXT NOT NULL
	);`
)

const (
	queryGetAccount   = `SELECT free, nonce FROM account WHERE account = ?`
	querySetFree      = `INSERT INTO account (account, free) VALUES (?, ?) ON CONFLICT(account) DO UPDATE SET free = excluded.free`
	querySetNonce     = `INSERT INTO account (account, free, nonce) VALUES (?, '0', ?) ON CONFLICT(account) DO UPDATE SET nonce = excluded.nonce`
	queryGetIssuance  = `SELECT total FROM issuance WHERE id = 0`
	querySetIssuance  = `INSERT OR REPLACE INTO issuance (id, total) VALUES (0, ?)`
	queryListAccounts = `SELECT account, free, nonce FROM account ORDER BY account ASC`
)

var txQueries = []string{
	queryGetAccount,
	querySetFree,
	querySetNonce,
	queryGetIssuance,
	querySetIssuance,
}
