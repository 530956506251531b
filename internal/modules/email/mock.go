package email

import "sync"

// MockSender guarda los correos en memoria. Se usa en desarrollo
// (EMAIL_PROVIDER=mock) y en tests.
type MockSender struct {
	mu   sync.Mutex
	Sent []SentEmail
}

type SentEmail struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

func NewMockSender() *MockSender { return &MockSender{} }

func (m *MockSender) SendEmail(to string, toName string, subject string, htmlBody string, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentEmail{To: to, ToName: toName, Subject: subject, HTML: htmlBody, Text: textBody})
	return nil
}

func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
