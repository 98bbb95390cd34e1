package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/mailroomhq/mailroom/internal/storage"
)

// fakeFetcher serves objects from a map and fails for unknown keys.
type fakeFetcher struct {
	objects map[string]*storage.FetchedObject
	calls   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, key string) (*storage.FetchedObject, error) {
	f.calls = append(f.calls, key)
	obj, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return obj, nil
}

func TestResolveOrderAndPartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{objects: map[string]*storage.FetchedObject{
		"k1": {Object: storage.Object{ID: "k1", Name: "a.pdf", URL: "https://s/a.pdf", SizeBytes: 100, ContentType: "application/pdf"}, Data: []byte("a")},
		"k3": {Object: storage.Object{ID: "k3", Name: "c.png", URL: "https://s/c.png", SizeBytes: 300, ContentType: "image/png"}, Data: []byte("c")},
	}}
	resolver := NewResolver(fetcher, nil)

	refs := []AttachmentRef{
		{ID: "k1"},
		{ID: "k2"}, // missing from storage
		{ID: "k3"},
		{},         // no storage id, skipped
	}

	resolved := resolver.Resolve(context.Background(), refs)

	if len(resolved) != 2 {
		t.Fatalf("Resolve() returned %d attachments, want 2", len(resolved))
	}
	if resolved[0].Name != "a.pdf" || resolved[1].Name != "c.png" {
		t.Errorf("Resolve() order = %q, %q; want a.pdf, c.png", resolved[0].Name, resolved[1].Name)
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetcher called %d times, want 3 (skipped ref must not hit storage)", len(fetcher.calls))
	}
}

func TestResolveCallerHintsWin(t *testing.T) {
	fetcher := &fakeFetcher{objects: map[string]*storage.FetchedObject{
		"k1": {Object: storage.Object{ID: "k1", Name: "stored.bin", URL: "https://s/stored", SizeBytes: 999, ContentType: "application/octet-stream"}, Data: []byte("x")},
	}}
	resolver := NewResolver(fetcher, nil)

	resolved := resolver.Resolve(context.Background(), []AttachmentRef{
		{ID: "k1", Name: "hinted.bin", URL: "https://hint", Size: 42},
	})

	if len(resolved) != 1 {
		t.Fatalf("Resolve() returned %d attachments, want 1", len(resolved))
	}
	att := resolved[0]
	if att.Name != "hinted.bin" {
		t.Errorf("Name = %q, want caller hint", att.Name)
	}
	if att.URL != "https://hint" {
		t.Errorf("URL = %q, want caller hint", att.URL)
	}
	if att.SizeBytes != 42 {
		t.Errorf("SizeBytes = %d, want caller hint 42", att.SizeBytes)
	}
	if att.ContentType != "application/octet-stream" {
		t.Errorf("ContentType = %q, want stored value", att.ContentType)
	}
}

func TestResolveNamelessObjectGetsPlaceholder(t *testing.T) {
	fetcher := &fakeFetcher{objects: map[string]*storage.FetchedObject{
		"k1": {Object: storage.Object{ID: "k1", SizeBytes: 10}, Data: []byte("x")},
	}}
	resolver := NewResolver(fetcher, nil)

	resolved := resolver.Resolve(context.Background(), []AttachmentRef{{ID: "k1"}})
	if len(resolved) != 1 || resolved[0].Name != "附件" {
		t.Fatalf("nameless object should resolve with placeholder name, got %+v", resolved)
	}
}

func TestResolveEmptyRefs(t *testing.T) {
	resolver := NewResolver(&fakeFetcher{}, nil)
	if got := resolver.Resolve(context.Background(), nil); len(got) != 0 {
		t.Errorf("Resolve(nil) = %v, want empty", got)
	}
}
