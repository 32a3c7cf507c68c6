package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	SourcesFile     string
	Port            string
	WorkerCount     int
	RefreshInterval int
	APIAccessKey    string

	// Link-open proxy rewriting
	ProxyMode       string
	ProxyPrefix     string
	ProxyRootDomain string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
