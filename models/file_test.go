package models

import (
	"strings"
	"testing"
)

func TestNewOutgoingFile(t *testing.T) {
	f, err := NewOutgoingFile("report.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if f.MediaType != "application/pdf" {
		t.Errorf("media type = %q", f.MediaType)
	}
	if string(f.Content) != "pdf-bytes" {
		t.Errorf("content = %q", f.Content)
	}
	if got := f.DataURL(); got != "data:application/pdf;base64,cGRmLWJ5dGVz" {
		t.Errorf("data URL = %q", got)
	}
}

func TestNewOutgoingFileRejectsUnknownExtension(t *testing.T) {
	if _, err := NewOutgoingFile("payload.exe", strings.NewReader("x")); err == nil {
		t.Error("expected error for .exe")
	}
}

func TestIsExtensionAllowed(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"photo.PNG", true},
		{"notes.md", true},
		{"archive.tar", true},
		{"script.sh", false},
		{"noext", false},
	}
	for _, tc := range cases {
		if got := IsExtensionAllowed(tc.name); got != tc.want {
			t.Errorf("IsExtensionAllowed(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWithCaption(t *testing.T) {
	f, err := NewOutgoingFile("a.txt", strings.NewReader("hi"))
	if err != nil {
		t.Fatal(err)
	}
	captioned := f.WithCaption("hello")
	if captioned.Caption != "hello" {
		t.Errorf("caption = %q", captioned.Caption)
	}
	if f.Caption != "" {
		t.Error("original file mutated")
	}
}

func TestFallbackMediaType(t *testing.T) {
	f, err := NewOutgoingFile("song.flac", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if f.MediaType != "audio/flac" {
		t.Errorf("media type = %q", f.MediaType)
	}
}
