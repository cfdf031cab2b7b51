package calendar

// Config holds configuration for the calendar provider.
type Config struct {
	// CredentialsFile is the path to the service account credentials JSON.
	CredentialsFile string `mapstructure:"credentials_file" default:"credentials.json"`
}
