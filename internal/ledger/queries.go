package ledger

const (
	createSchemaQuery = `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			id           TEXT PRIMARY KEY,
			owner        TEXT NOT NULL,
			content_type TEXT NOT NULL,
			prompt       TEXT NOT NULL DEFAULT '',
			result       JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS ledger_entries_owner_created_idx ON ledger_entries (owner, created_at DESC);
		CREATE TABLE IF NOT EXISTS usage_counters (
			owner    TEXT PRIMARY KEY,
			date_key TEXT NOT NULL,
			count    INTEGER NOT NULL DEFAULT 0
		);
	`

	insertEntryQuery = `
		INSERT INTO ledger_entries (id, owner, content_type, prompt, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// resets on a new day, then counts up to the limit when one is set
	bumpCounterQuery = `
		INSERT INTO usage_counters (owner, date_key, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (owner) DO UPDATE SET
			count = CASE
				WHEN usage_counters.date_key <> EXCLUDED.date_key THEN 1
				WHEN $3::int > 0 THEN LEAST(usage_counters.count + 1, $3::int)
				ELSE usage_counters.count + 1
			END,
			date_key = EXCLUDED.date_key
		RETURNING date_key, count
	`

	getCounterQuery = "SELECT date_key, count FROM usage_counters WHERE owner = $1"

	listEntriesQuery = `
		SELECT id, content_type, prompt, result, created_at
		FROM ledger_entries
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC
	`
	listEntriesLimitQuery = listEntriesQuery + " LIMIT $2"

	deleteEntriesQuery = "DELETE FROM ledger_entries WHERE owner = $1"
)
