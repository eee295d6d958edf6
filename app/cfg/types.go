package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port         string
	SourcesFile  string
	APIAccessKey string

	// External collaborators
	GenAIURL  string
	GenAIKey  string
	UserAgent string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
