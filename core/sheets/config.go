package sheets

// Config holds configuration for the tabular store.
type Config struct {
	// SpreadsheetID identifies the spreadsheet holding schedule and ledger sheets.
	SpreadsheetID string `mapstructure:"spreadsheet_id" default:""`
	// CredentialsFile is the path to the service account credentials JSON.
	CredentialsFile string `mapstructure:"credentials_file" default:"credentials.json"`
	// SettingsSheet is the sheet listing the tables to synchronize.
	SettingsSheet string `mapstructure:"settings_sheet" default:"settings"`
}
