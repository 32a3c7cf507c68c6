package sources

// Source is one configured RSS/Atom feed. Identity is URL; Name is the
// display name stamped onto every article the source contributes.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}
