package frontdesk

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bupt-se/hotel-ac-frontdesk/pkg/httpclient"
)

const maxDetailLen = 240

// DescribeError renders err for operators. HTML error pages from the backend
// are reduced to their title and first paragraph.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s failed: %s (code %d)", apiErr.Op, apiErr.Msg, apiErr.Code)
	}

	var ce *httpclient.Error
	if !errors.As(err, &ce) || ce.Kind != httpclient.KindStatus {
		return err.Error()
	}

	detail := errorPageDetail(ce.Header.Get("Content-Type"), ce.Body)
	if detail == "" {
		return err.Error()
	}
	return err.Error() + ": " + detail
}

// errorPageDetail extracts readable text from an error body.
func errorPageDetail(contentType string, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	if !strings.Contains(contentType, "html") && !bytes.HasPrefix(body, []byte("<")) {
		return truncate(string(body))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	parts := make([]string, 0, 2)
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		parts = append(parts, title)
	}
	if p := strings.TrimSpace(doc.Find("p").First().Text()); p != "" {
		parts = append(parts, p)
	}
	return truncate(strings.Join(strings.Fields(strings.Join(parts, " - ")), " "))
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxDetailLen {
		return string(r[:maxDetailLen]) + "…"
	}
	return s
}
