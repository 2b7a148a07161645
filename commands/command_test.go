package commands

import (
	"testing"
)

func TestSpreadsheetID(t *testing.T) {
	url := "https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms/edit#gid=0"

	id, err := spreadsheetID(url)
	if err != nil {
		t.Fatalf("Unexpected error returned from spreadsheetID (%v)", err)
	}

	if id != "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms" {
		t.Errorf("Incorrect spreadsheet ID '%v'", id)
	}
}

func TestSpreadsheetIDWithInvalidURL(t *testing.T) {
	urls := []string{
		"",
		"https://docs.google.com/document/d/whatever",
		"1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
	}

	for _, url := range urls {
		if _, err := spreadsheetID(url); err == nil {
			t.Errorf("Expected error for URL '%v', got %v", url, err)
		}
	}
}
