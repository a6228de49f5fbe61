package instanceprefs

import "time"

// InstancePrefs holds per-instance dashboard preferences.
type InstancePrefs struct {
	ID           int64
	Backend      string
	InstanceID   string
	Unit         string
	ShowSafeLine bool
	UpdatedAt    time.Time
}
