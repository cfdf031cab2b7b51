// Package utils provides common utility functions for the schedule-sync
// application. It includes helper functions for converting loosely typed
// spreadsheet cell values and other shared logic that doesn't fit into
// domain-specific packages.
package utils
