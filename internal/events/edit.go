package events

// An Edit is one revision of a document as published on the events topic.
type Edit struct {
	DocID  string `json:"doc_id"`
	Author string `json:"author"`
	Body   string `json:"body"`
}
