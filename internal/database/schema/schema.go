package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Sync Configurations

CREATE TABLE IF NOT EXISTS sync_configs (
    config_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id VARCHAR(64) NOT NULL,
    channel_id VARCHAR(64) NOT NULL,
    channel_name VARCHAR(255) NOT NULL DEFAULT '',
    database_id VARCHAR(64) NOT NULL,
    database_name VARCHAR(255) NOT NULL DEFAULT '',
    trigger_emoji VARCHAR(64) NOT NULL DEFAULT 'pencil',
    sync_interval_minutes INTEGER NOT NULL DEFAULT 10
        CHECK (sync_interval_minutes BETWEEN 1 AND 60),
    max_messages_per_sync INTEGER NOT NULL DEFAULT 20
        CHECK (max_messages_per_sync BETWEEN 1 AND 100),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_sync TIMESTAMPTZ,
    total_messages_synced INTEGER NOT NULL DEFAULT 0,
    total_errors INTEGER NOT NULL DEFAULT 0,
    retry_attempts INTEGER NOT NULL DEFAULT 3
        CHECK (retry_attempts BETWEEN 1 AND 10),
    retry_delay_ms INTEGER NOT NULL DEFAULT 1000
        CHECK (retry_delay_ms BETWEEN 100 AND 10000),
    tags TEXT[] NOT NULL DEFAULT '{}',
    filters JSONB NOT NULL DEFAULT '{}',
    page_template JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sync_configs_channel
    ON sync_configs (channel_id) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_sync_configs_owner
    ON sync_configs (owner_id);

-- Sync History
-- The unique index on (message_id, message_ts, config_id) is the idempotency
-- gate: the first pending insert wins, every other attempt gets a conflict.

CREATE TABLE IF NOT EXISTS sync_history (
    history_id BIGSERIAL PRIMARY KEY,
    config_id UUID NOT NULL REFERENCES sync_configs(config_id) ON DELETE CASCADE,
    message_id VARCHAR(255) NOT NULL,
    message_ts VARCHAR(64) NOT NULL,
    author_id VARCHAR(64) NOT NULL DEFAULT '',
    author_name VARCHAR(255) NOT NULL DEFAULT '',
    channel_id VARCHAR(64) NOT NULL DEFAULT '',
    channel_name VARCHAR(255) NOT NULL DEFAULT '',
    message_text TEXT NOT NULL DEFAULT '',
    reactions JSONB NOT NULL DEFAULT '[]',
    page_id VARCHAR(64),
    page_url TEXT,
    page_title TEXT,
    status VARCHAR(16) NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'success', 'failed', 'retrying')),
    duration_ms BIGINT NOT NULL DEFAULT 0,
    retry_count INTEGER NOT NULL DEFAULT 0,
    last_retry_at TIMESTAMPTZ,
    error_message TEXT,
    error_code VARCHAR(32),
    synced_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (message_id, message_ts, config_id)
);

CREATE INDEX IF NOT EXISTS idx_sync_history_config
    ON sync_history (config_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sync_history_status
    ON sync_history (status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sync_history_channel
    ON sync_history (channel_id, created_at DESC);
`
