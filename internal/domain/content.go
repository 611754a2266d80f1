package domain

import "time"

// NewsSource names the outlet an article came from.
type NewsSource struct {
	Name string `json:"name"`
}

// NewsItem is one headline shown in the news widget.
type NewsItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	PublishedAt time.Time  `json:"publishedAt"`
	Source      NewsSource `json:"source"`
}

// PressRelease is a company announcement or an 8-K filing shown as one.
type PressRelease struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
}

// Filing is one regulatory filing from the EDGAR submissions index.
type Filing struct {
	FormType    string `json:"formType"`
	FilingDate  string `json:"filingDate"`
	Description string `json:"description"`
	URL         string `json:"url"`
	CompanyName string `json:"companyName"`
}

// EventType classifies an upcoming calendar event.
type EventType string

const (
	EventEarnings EventType = "earnings"
	EventDividend EventType = "dividend"
	EventMeeting  EventType = "meeting"
	EventFiling   EventType = "filing"
	EventOther    EventType = "other"
)

// Event is an upcoming dated occurrence.
type Event struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`
}

// PostMetrics are engagement counters of a social post.
type PostMetrics struct {
	Likes    int `json:"likes"`
	Retweets int `json:"retweets"`
	Replies  int `json:"replies"`
}

// Post is one social-feed entry.
type Post struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
	URL       string       `json:"url"`
	Metrics   *PostMetrics `json:"metrics,omitempty"`
}
