package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownContentType = errors.New("unknown lesson content type")

// ContentType is the kind of material a lesson carries.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
	ContentPDF   ContentType = "pdf"
)

// ParseContentType accepts the wire form of a content type.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownContentType, s)
	}
	return ct, nil
}

func (c ContentType) Valid() bool {
	switch c {
	case ContentText, ContentVideo, ContentPDF:
		return true
	default:
		return false
	}
}

// IsText reports whether the lesson body is inline text rather than a link.
func (c ContentType) IsText() bool {
	return c == ContentText
}

// Course as returned by the LMS backend.
type Course struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Modules     []Module `json:"modules,omitempty"`
	IsEnrolled  bool     `json:"isEnrolled"`
}

// Matches reports whether query occurs in the title, code or description,
// ignoring case. An empty query matches every course.
func (c Course) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.Code), q) ||
		strings.Contains(strings.ToLower(c.Description), q)
}

// LessonCount sums the lessons of all modules.
func (c Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

type Module struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CourseID    uint64   `json:"courseId"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"contentType"`
	ContentURL  string      `json:"contentURL,omitempty"`
	TextContent string      `json:"textContent,omitempty"`
	ModuleID    uint64      `json:"moduleId"`
}

// CourseInput is the body of a course creation request.
type CourseInput struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ModuleInput is the body of a module creation request.
type ModuleInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LessonInput is the body of a lesson creation request. Only one of
// ContentURL and TextContent is sent, depending on ContentType.
type LessonInput struct {
	Title       string      `json:"title"`
	ContentType ContentType `json:"contentType"`
	ContentURL  string      `json:"contentURL,omitempty"`
	TextContent string      `json:"textContent,omitempty"`
}

// NewLessonInput builds a lesson body carrying only the field that matches ct.
func NewLessonInput(title string, ct ContentType, contentURL, textContent string) LessonInput {
	in := LessonInput{Title: title, ContentType: ct}
	if ct.IsText() {
		in.TextContent = textContent
	} else {
		in.ContentURL = contentURL
	}
	return in
}
