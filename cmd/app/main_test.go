package main

import "testing"

func TestListenURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		":8000":          "http://0.0.0.0:8000",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
		"http://x:1":     "http://x:1",
	}
	for in, want := range tests {
		if got := listenURL(in); got != want {
			t.Fatalf("listenURL(%q) = %q, want %q", in, got, want)
		}
	}
}
