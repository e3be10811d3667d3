package model

// CrawledPage is a fetched page reduced to text.
type CrawledPage struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown"`
	StatusCode int    `json:"status_code"`
}

// SiteContent is the combined text of a company's homepage and about page.
type SiteContent struct {
	Domain string   `json:"domain"`
	Text   string   `json:"text"`
	Pages  []string `json:"pages"`
	Source string   `json:"source"`
}

// Length returns the character count of the combined text.
func (s SiteContent) Length() int {
	return len([]rune(s.Text))
}
