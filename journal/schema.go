package journal

const Schema = `
CREATE TABLE IF NOT EXISTS days (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	day_of_week TEXT NOT NULL,
	payload TEXT NOT NULL,
	added DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reactions (
	day_seq INTEGER NOT NULL REFERENCES days(seq) ON DELETE CASCADE,
	level_name TEXT NOT NULL,
	level_key TEXT,
	reacted INTEGER NOT NULL,
	move REAL NOT NULL,
	outcome TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reactions_day ON reactions(day_seq);
`
