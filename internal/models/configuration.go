package models

// Configuration holds the Mailchimp credentials and batch endpoint. Any field may be unset.
type Configuration struct {
	record
	Username string
	Password string
	APIKey   string
	URL      string
}

// NewConfiguration creates an unsaved configuration record.
func NewConfiguration(sequence int, username, password, apiKey, url string) *Configuration {
	return &Configuration{
		record:   newRecord(sequence),
		Username: username,
		Password: password,
		APIKey:   apiKey,
		URL:      url,
	}
}

// Complete reports whether all four fields are present.
func (c *Configuration) Complete() bool {
	return c.Username != "" && c.Password != "" && c.APIKey != "" && c.URL != ""
}

// Validate accepts partial records; completeness is checked by whoever reads them.
func (c *Configuration) Validate() error { return nil }
