package types

import "time"

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile    string
	Endpoint      string
	CatalogDir    string
	Concurrency   int
	BrowserPath   string
	AuditorScript string
	AuditorGlobal string
	RootSelector  string
	NavTimeout    time.Duration
	RunTimeout    time.Duration
	Strict        bool
	AllNodes      bool
	ReportName    string
	ReportType    []string
	Dir           string
}
