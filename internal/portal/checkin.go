package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var signSuccessMarkers = []string{"成功", "SUCCESS"}

type SignOutcome int

const (
	SignFailed SignOutcome = iota
	SignSucceeded
)

func (o SignOutcome) String() string {
	if o == SignSucceeded {
		return "success"
	}
	return "failed"
}

// ClassifySignResponse decides whether a check-in response means success.
// A JSON object succeeds when its STATUS is the string "0". Text, whether a
// raw body or a JSON string literal, succeeds when it contains one of the
// success markers. Anything else is a failure.
func ClassifySignResponse(body Body) SignOutcome {
	switch body.Kind {
	case BodyJSON:
		if s, ok := body.JSON.(string); ok {
			return classifyText(s)
		}
		obj, ok := body.Object()
		if ok && succeeded(obj["STATUS"]) {
			return SignSucceeded
		}
	case BodyText:
		return classifyText(body.Text)
	}
	return SignFailed
}

func classifyText(s string) SignOutcome {
	for _, marker := range signSuccessMarkers {
		if strings.Contains(s, marker) {
			return SignSucceeded
		}
	}
	return SignFailed
}

type SignResult struct {
	CourseID   string
	CourseName string
	Outcome    SignOutcome
	// Detail is the server's message, or the error text when the request
	// itself failed.
	Detail string
	Err    error
}

func (r SignResult) Success() bool {
	return r.Outcome == SignSucceeded
}

// responseDetail produces a one-line description of a check-in response for
// the log. HTML pages are reduced to their visible text.
func responseDetail(body Body) string {
	if obj, ok := body.Object(); ok {
		var resp statusResponse
		if err := decodeBody(body, &resp); err == nil && resp.ErrorMsg != "" {
			return resp.ErrorMsg
		}
		if _, ok := obj["STATUS"]; ok {
			return body.Summary()
		}
	}
	text := body.Text
	if body.Kind == BodyJSON {
		s, ok := body.JSON.(string)
		if !ok {
			return body.Summary()
		}
		text = s
	}
	if looksLikeHTML(text) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err == nil {
			text = doc.Find("body").Text()
			if strings.TrimSpace(text) == "" {
				text = doc.Text()
			}
		}
	}
	return truncateText(strings.Join(strings.Fields(text), " "), 80)
}

func looksLikeHTML(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(trimmed, ">")
}

type BatchStatus int

const (
	BatchSuccess BatchStatus = iota
	BatchPartial
)

func (s BatchStatus) String() string {
	if s == BatchSuccess {
		return "success"
	}
	return "partial"
}

type BatchResult struct {
	Week         int
	SuccessCount int
	TotalCount   int
	Results      []SignResult
}

func (b BatchResult) Status() BatchStatus {
	if b.SuccessCount == b.TotalCount {
		return BatchSuccess
	}
	return BatchPartial
}
