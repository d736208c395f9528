package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      drone_id,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    drone_id,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    drone_id,
    config
FROM sessions
ORDER BY start_time, id`

	selectNextSeqSQL = `
SELECT COALESCE(MAX(seq) + 1, 0)
FROM samples
WHERE session_id = ?`

	insertSamplesSQL = `
INSERT INTO samples (session_id,
                     seq,
                     time,
                     frequency,
                     bandwidth,
                     rssi,
                     signal_type,
                     doppler_shift,
                     multipath_effect,
                     jamming,
                     source)
VALUES `

	selectSamplesSQL = `
SELECT time,
       frequency,
       bandwidth,
       rssi,
       signal_type,
       doppler_shift,
       multipath_effect,
       jamming,
       source
FROM samples
WHERE session_id = ?`

	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_samples_session_seq ON samples (session_id, seq);
CREATE INDEX IF NOT EXISTS idx_samples_session_frequency ON samples (session_id, frequency);`

	sampleColumns = 11
)

//go:embed schema.sql
var initSchemaSQL string
