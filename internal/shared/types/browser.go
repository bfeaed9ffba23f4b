package types

import "time"

// BrowserOptions carries everything the browser adapter needs to launch the
// engine and run audits: where the executable lives, the auditor payload,
// and how the rendered page is queried.
type BrowserOptions struct {
	BrowserPath   string
	AuditorScript string
	AuditorGlobal string
	RootSelector  string
	NavTimeout    time.Duration
}
