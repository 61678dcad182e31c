package model

import "time"

// NewsItem is one headline from the news feed.
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}
