package entity

import "time"

// Certificate - сертификат ЭЦП, выданный сервисом подписи.
type Certificate struct {
	ID              string
	OwnerName       string
	OwnerIIN        string
	OrganizationBIN *string
	Issuer          string
	ValidFrom       time.Time
	ValidUntil      time.Time
	PublicKey       string
	Thumbprint      string
}

func (c *Certificate) IsValidAt(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}
