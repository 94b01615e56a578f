package model

import "time"

// DayKeyLayout is the format of Prompt.DayKey.
const DayKeyLayout = "2006-01-02"

// Prompt is the daily theme that scopes a cohort of competing memes.
type Prompt struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	DayKey      string    `json:"dayKey"`
	ActiveUntil time.Time `json:"activeUntil"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OpenAt reports whether the prompt accepts submissions at t.
func (p *Prompt) OpenAt(t time.Time) bool {
	return p.IsActive && t.Before(p.ActiveUntil)
}
