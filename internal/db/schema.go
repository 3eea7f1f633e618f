package db

const schema = `
CREATE TABLE IF NOT EXISTS interviews (
	id                    TEXT PRIMARY KEY,
	candidate_name        TEXT NOT NULL,
	stage                 TEXT NOT NULL,
	exit_reason           TEXT,
	timebox_ms            BIGINT NOT NULL CHECK (timebox_ms > 0),
	background_started_at TIMESTAMPTZ,
	ended_at              TIMESTAMPTZ,
	created_at            TIMESTAMPTZ NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS interview_messages (
	id           TEXT PRIMARY KEY,
	interview_id TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	stage        TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS interview_messages_interview_idx ON interview_messages (interview_id, created_at);

CREATE TABLE IF NOT EXISTS trait_observations (
	id                TEXT PRIMARY KEY,
	interview_id      TEXT NOT NULL REFERENCES interviews(id) ON DELETE CASCADE,
	turn              INT NOT NULL,
	trait             TEXT NOT NULL,
	normalized_rating DOUBLE PRECISION NOT NULL,
	weight            DOUBLE PRECISION NOT NULL CHECK (weight >= 0),
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS trait_observations_interview_idx ON trait_observations (interview_id, turn);

CREATE TABLE IF NOT EXISTS interview_archives (
	interview_id TEXT PRIMARY KEY REFERENCES interviews(id) ON DELETE CASCADE,
	stage        TEXT NOT NULL,
	exit_reason  TEXT,
	snapshot     JSONB NOT NULL,
	archived_at  TIMESTAMPTZ NOT NULL
);
`
