package templates

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Rendered is the output of a template, ready to be copied into a message.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Template renders a subject, an HTML body and an optional text body from a
// typed context. Validate, when set, runs before rendering.
type Template[T any] struct {
	Name     string
	subject  *texttemplate.Template
	html     *htmltemplate.Template
	text     *texttemplate.Template
	Validate func(T) error
}

func New[T any](name, subject, html, text string, validate func(T) error) (*Template[T], error) {
	t := &Template[T]{Name: name, Validate: validate}

	var err error
	if t.subject, err = texttemplate.New(name + "_subject").Parse(subject); err != nil {
		return nil, err
	}
	if t.html, err = htmltemplate.New(name + "_html").Parse(html); err != nil {
		return nil, err
	}
	if text != "" {
		if t.text, err = texttemplate.New(name + "_text").Parse(text); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Must panics when a built-in template fails to parse.
func Must[T any](t *Template[T], err error) *Template[T] {
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template[T]) Render(data T) (*Rendered, error) {
	if t.Validate != nil {
		if err := t.Validate(data); err != nil {
			return nil, err
		}
	}

	var subject, html, text bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return nil, err
	}
	if err := t.html.Execute(&html, data); err != nil {
		return nil, err
	}
	if t.text != nil {
		if err := t.text.Execute(&text, data); err != nil {
			return nil, err
		}
	}

	return &Rendered{Subject: subject.String(), HTML: html.String(), Text: text.String()}, nil
}
