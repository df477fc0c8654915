package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Widget tool identifiers a config may enable.
const (
	WidgetToolTimer      = "timer"
	WidgetToolStopwatch  = "stopwatch"
	WidgetToolPlanner    = "planner"
	WidgetToolConverter  = "converter"
	WidgetToolWorldClock = "worldclock"
	WidgetToolCountdown  = "countdown"
)

// WidgetConfig stores the synced widget setup for one user, one row per user.
// The config document itself stays an opaque JSON blob in the store; the
// typed shape below is what handlers validate against before writing.
type WidgetConfig struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	ConfigJSON string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WidgetConfigDocument is the parsed shape of ConfigJSON.
type WidgetConfigDocument struct {
	Tools        []string          `json:"tools"`
	Theme        string            `json:"theme"`
	Size         string            `json:"size"`
	Timezone     string            `json:"timezone"`
	CustomColors *WidgetColors     `json:"custom_colors,omitempty"`
	Tasks        []PlannerTask     `json:"tasks"`
	Timer        *WidgetTimerState `json:"timer,omitempty"`
}

type WidgetColors struct {
	Primary    string `json:"primary"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

type PlannerTask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

type WidgetTimerState struct {
	Minutes       int `json:"minutes"`
	Seconds       int `json:"seconds"`
	TotalSessions int `json:"total_sessions"`
}

// DefaultWidgetConfigDocument mirrors the client defaults for first-time users.
func DefaultWidgetConfigDocument() WidgetConfigDocument {
	return WidgetConfigDocument{
		Tools:    []string{WidgetToolTimer, WidgetToolStopwatch, WidgetToolPlanner},
		Theme:    "auto",
		Size:     "standard",
		Timezone: "UTC",
		Timer:    &WidgetTimerState{Minutes: 25},
	}
}

// Document parses ConfigJSON, falling back to defaults on empty or invalid data.
func (w *WidgetConfig) Document() WidgetConfigDocument {
	if w == nil || w.ConfigJSON == "" {
		return DefaultWidgetConfigDocument()
	}
	var doc WidgetConfigDocument
	if err := json.Unmarshal([]byte(w.ConfigJSON), &doc); err != nil {
		return DefaultWidgetConfigDocument()
	}
	return doc
}

// SetDocument serializes the document back into ConfigJSON.
func (w *WidgetConfig) SetDocument(doc WidgetConfigDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	w.ConfigJSON = string(raw)
	return nil
}

// GetOrCreateWidgetConfig returns the existing config row or creates defaults.
func GetOrCreateWidgetConfig(db *gorm.DB, userID uint) (*WidgetConfig, error) {
	var wc WidgetConfig
	if err := db.Where("user_id = ?", userID).First(&wc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			wc = WidgetConfig{UserID: userID}
			if err := wc.SetDocument(DefaultWidgetConfigDocument()); err != nil {
				return nil, err
			}
			if err := db.Create(&wc).Error; err != nil {
				return nil, err
			}
			return &wc, nil
		}
		return nil, err
	}
	return &wc, nil
}
