package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Approval.LinkSecret) < 32 {
		return fmt.Errorf("approval.link_secret must be at least 32 characters (got %d)", len(c.Approval.LinkSecret))
	}
	if c.Approval.LinkTTL <= 0 {
		return fmt.Errorf("approval.link_ttl must be > 0 (got %v)", c.Approval.LinkTTL)
	}
	if c.Approval.MaxParticipantsPerTier <= 0 {
		return fmt.Errorf("approval.max_participants_per_tier must be > 0 (got %d)", c.Approval.MaxParticipantsPerTier)
	}

	if c.Locks.DefaultTTL <= 0 {
		return fmt.Errorf("locks.default_ttl must be > 0 (got %v)", c.Locks.DefaultTTL)
	}
	if c.Locks.MaxTTL < c.Locks.DefaultTTL {
		return fmt.Errorf("locks.max_ttl must be >= locks.default_ttl (got %v < %v)", c.Locks.MaxTTL, c.Locks.DefaultTTL)
	}

	if c.Email.Host != "" && c.Email.Port <= 0 {
		return fmt.Errorf("email.port must be > 0 when email.host is set (got %d)", c.Email.Port)
	}

	if c.Blob.MaxUploadBytes <= 0 {
		return fmt.Errorf("blob.max_upload_bytes must be > 0 (got %d)", c.Blob.MaxUploadBytes)
	}

	return nil
}
