package businessflow

import (
	"strings"

	"github.com/amirphl/getaround-pricing/config"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client information attached to logs and stored predictions
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) requestID() string {
	if cm == nil {
		return ""
	}
	return cm.RequestID
}

// redisKey joins key segments under the configured prefix
func redisKey(cfg config.CacheConfig, parts ...string) string {
	return cfg.RedisPrefix + strings.Join(parts, ":")
}
