package feed

import "testing"

func TestExtractDOI(t *testing.T) {
	tests := []struct {
		name     string
		item     Item
		expected string
	}{
		{
			name:     "doi.org link",
			item:     Item{Link: "https://doi.org/10.1001/jama.2021.12345"},
			expected: "10.1001/jama.2021.12345",
		},
		{
			name:     "doi in description text",
			item:     Item{Description: "See https://doi.org/10.1001/jama.2021.12345 for details"},
			expected: "10.1001/jama.2021.12345",
		},
		{
			name: "link takes precedence over description",
			item: Item{
				Link:        "https://doi.org/10.1056/NEJMoa2034577",
				Description: "Related: 10.1001/jama.2021.12345",
			},
			expected: "10.1056/NEJMoa2034577",
		},
		{
			name:     "trailing punctuation trimmed",
			item:     Item{Description: "Published as 10.1016/S0140-6736(23)01234-5."},
			expected: "10.1016/S0140-6736(23)01234-5",
		},
		{
			name:     "case insensitive prefix",
			item:     Item{Description: "DOI: 10.7326/M22-1234"},
			expected: "10.7326/M22-1234",
		},
		{
			name:     "no doi present",
			item:     Item{Link: "https://example.com/articles/1", Description: "No identifier here"},
			expected: "",
		},
		{
			name:     "registrant too short",
			item:     Item{Description: "10.123/notadoi"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractDOI(tt.item)
			if result != tt.expected {
				t.Errorf("Expected %q, got: %q", tt.expected, result)
			}
		})
	}
}
