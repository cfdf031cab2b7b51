// Package config loads and aggregates application configuration.
//
// Configuration comes from environment variables with an optional .env file
// for local development. Defaults are declared as struct tags on the partial
// config structs (sheets, calendar, mail, log, sync) and registered with
// Viper through reflection, so SHEETS_SPREADSHEET_ID maps to
// sheets.spreadsheet_id and so on.
//
// Values are loaded once at startup and threaded explicitly into each
// component; nothing reads configuration as ambient global state.
package config
