package mpesa

import (
	"encoding/base64"
	"time"
)

const timestampLayout = "20060102150405"

// credentials returns the current Nairobi-time timestamp and the matching
// STK password. Both are recomputed on every call; the provider rejects
// passwords whose timestamp has drifted.
func (c *Client) credentials() (timestamp, password string) {
	return c.credentialsAt(c.now())
}

// credentialsAt derives the pair for a given instant. The password is
// Base64(shortcode + passkey + timestamp).
func (c *Client) credentialsAt(t time.Time) (timestamp, password string) {
	timestamp = t.In(c.loc).Format(timestampLayout)
	password = base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))
	return timestamp, password
}
