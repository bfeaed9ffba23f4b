package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Endpoint      string   `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	CatalogDir    string   `json:"catalog_dir" yaml:"catalog_dir" toml:"catalog_dir"`
	Concurrency   int      `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	BrowserPath   string   `json:"browser_path" yaml:"browser_path" toml:"browser_path"`
	AuditorScript string   `json:"auditor_script" yaml:"auditor_script" toml:"auditor_script"`
	AuditorGlobal string   `json:"auditor_global" yaml:"auditor_global" toml:"auditor_global"`
	RootSelector  string   `json:"root_selector" yaml:"root_selector" toml:"root_selector"`
	NavTimeout    int      `json:"nav_timeout" yaml:"nav_timeout" toml:"nav_timeout"`
	RunTimeout    int      `json:"run_timeout" yaml:"run_timeout" toml:"run_timeout"`
	Strict        bool     `json:"strict" yaml:"strict" toml:"strict"`
	AllNodes      bool     `json:"all_nodes" yaml:"all_nodes" toml:"all_nodes"`
	ReportName    string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType    []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir           string   `json:"dir" yaml:"dir" toml:"dir"`
}
