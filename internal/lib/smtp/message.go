package smtp

import (
	"mime"
	"strings"
)

// BuildMessage собирает текстовое письмо в UTF-8. Тема кодируется по RFC 2047.
func BuildMessage(from, to, subject, body string) []byte {
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		strings.ReplaceAll(body, "\n", "\r\n"),
	}, "\r\n"))
}
