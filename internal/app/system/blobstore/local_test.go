package blobstore

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestPutAndGetFullPath(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "https://rd.test.edu/files")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	if err := store.Put(context.Background(), "proofs/2026/08/receipt.pdf", strings.NewReader("hello"), nil); err != nil {
		t.Fatalf("Put: %v", err)
	}

	full, err := store.GetFullPath("proofs/2026/08/receipt.pdf")
	if err != nil {
		t.Fatalf("GetFullPath: %v", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("content = %q", data)
	}
}

func TestGetFullPathRejectsEscape(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if _, err := store.GetFullPath("../outside.txt"); err == nil {
		t.Fatal("expected error for escaping path")
	}
}

func TestPresignedURL(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "https://rd.test.edu/files/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	url, err := store.PresignedURL(context.Background(), "resumes/cv.pdf", nil)
	if err != nil {
		t.Fatalf("PresignedURL: %v", err)
	}
	if url != "https://rd.test.edu/files/resumes/cv.pdf" {
		t.Fatalf("url = %q", url)
	}
}
