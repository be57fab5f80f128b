// File: utils/constants.go
package utils

import "time"

// CheckpointPrefix is the prefix used for Redis conversation checkpoint keys.
const CheckpointPrefix = "agent:ckpt:"

// DefaultTokenTTL is the lifetime of tokens minted by the CLI.
const DefaultTokenTTL = 24 * time.Hour

// ContextUserIDKey is the gin context key the auth middleware stores the subject under.
const ContextUserIDKey = "userID"

// ContextLoggerKey is the gin context key holding the request-scoped logger.
const ContextLoggerKey = "logger"
