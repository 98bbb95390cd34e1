// Package template provides reusable subject/body email templates,
// persisted per user as one ordered JSON sequence in the properties
// store. Templates are identified by position: deletion is index-based.
package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailroomhq/mailroom/internal/properties"
)

// errNotFound aborts a delete without mutating storage.
var errNotFound = errors.New("template not found")

// Template is a named subject/body pair.
type Template struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Created string `json:"created"` // ISO 8601
}

// Result is the outcome of a template mutation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Store persists templates per user in the properties store.
type Store struct {
	props  properties.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a template store.
func New(props properties.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		props:  props,
		logger: logger,
		now:    time.Now,
	}
}

// userKey scopes the template sequence to one user.
func userKey(userID string) string {
	return "emailTemplates:" + userID
}

// Save appends a template to the user's sequence. Duplicate names are
// permitted; insertion order is creation order.
func (s *Store) Save(ctx context.Context, userID, name, subject, body string) Result {
	tpl := Template{
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: s.now().UTC().Format(time.RFC3339),
	}

	err := s.props.Update(ctx, userKey(userID), func(current string, exists bool) (string, error) {
		templates, err := decode(current, exists)
		if err != nil {
			return "", err
		}
		templates = append(templates, tpl)
		data, err := json.Marshal(templates)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		return Result{Success: false, Message: "保存失败：" + err.Error()}
	}
	return Result{Success: true, Message: "模板保存成功"}
}

// List returns the user's templates in insertion order.
func (s *Store) List(ctx context.Context, userID string) ([]Template, error) {
	current, exists, err := s.props.Get(ctx, userKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return decode(current, exists)
}

// DeleteAt removes the template at index. An out-of-range index leaves
// storage untouched and reports not-found.
func (s *Store) DeleteAt(ctx context.Context, userID string, index int) Result {
	err := s.props.Update(ctx, userKey(userID), func(current string, exists bool) (string, error) {
		templates, err := decode(current, exists)
		if err != nil {
			return "", err
		}
		if index < 0 || index >= len(templates) {
			return "", errNotFound
		}
		templates = append(templates[:index], templates[index+1:]...)
		data, err := json.Marshal(templates)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if errors.Is(err, errNotFound) {
		return Result{Success: false, Message: "模板不存在"}
	}
	if err != nil {
		return Result{Success: false, Message: "删除失败：" + err.Error()}
	}
	return Result{Success: true, Message: "模板删除成功"}
}

// decode parses the stored sequence; an unset key is an empty sequence.
func decode(current string, exists bool) ([]Template, error) {
	if !exists || current == "" {
		return []Template{}, nil
	}
	var templates []Template
	if err := json.Unmarshal([]byte(current), &templates); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}
