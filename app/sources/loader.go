package sources

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults returns the built-in journal list, used when no sources file has
// been configured.
func Defaults() []Source {
	return []Source{
		{
			Name:     "NEJM",
			URL:      "https://www.nejm.org/action/showFeed?jc=nejm&type=etoc&feed=rss",
			Category: "General Medicine",
		},
		{
			Name:     "AAP Pediatrics",
			URL:      "https://publications.aap.org/rss/site_1000012/1000012.xml",
			Category: "Pediatrics",
		},
		{
			Name:     "Annals of Internal Medicine",
			URL:      "https://www.acpjournals.org/action/showFeed?type=etoc&feed=rss&jc=aim",
			Category: "Internal Medicine",
		},
		{
			Name:     "The Lancet",
			URL:      "https://www.thelancet.com/rssfeed/lancet_current.xml",
			Category: "General Medicine",
		},
	}
}

// Load reads the YAML sources file. A missing file is not an error: the
// defaults are returned so a fresh install works without configuration.
func Load(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("Sources file not found, using defaults", "path", path)
			return Defaults(), nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s contains no sources", path)
	}

	for i, s := range file.Sources {
		if err := validate(s); err != nil {
			return nil, fmt.Errorf("invalid source %d in %s: %w", i+1, path, err)
		}
		if s.Category == "" {
			file.Sources[i].Category = "Uncategorized"
		}
	}

	return file.Sources, nil
}

func validate(s Source) error {
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	return nil
}
