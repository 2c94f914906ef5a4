package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Engine
	ReportThreshold     int
	AdminEmail          string
	RecommendationLimit int
	HeadlinesLimit      int
	EnrichBatch         int

	// Mail hand-off
	AMQPURL   string
	MailQueue string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
