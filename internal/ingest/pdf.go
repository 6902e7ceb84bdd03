package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	rpdf "rsc.io/pdf"
)

func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			b.WriteString(fragment.S)
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// deadlineFromPDF downloads a PDF brief and returns the earliest upcoming
// date it mentions.
func deadlineFromPDF(ctx context.Context, fetcher Fetcher, pdfURL string, now time.Time) (time.Time, error) {
	doc, err := fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return time.Time{}, err
	}
	text, err := extractPDFText(doc.Body)
	if err != nil {
		return time.Time{}, fmt.Errorf("pdf text extraction failed: %w", err)
	}
	t, ok := deadlineFromText(text, now)
	if !ok {
		return time.Time{}, fmt.Errorf("no deadline found in %s", pdfURL)
	}
	return t, nil
}

func isPDFLink(link string) bool {
	lower := strings.ToLower(link)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	return strings.HasSuffix(lower, ".pdf")
}
