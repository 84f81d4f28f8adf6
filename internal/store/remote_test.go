package store

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteGetRejectsOversizedValue(t *testing.T) {
	big := append([]byte(`"`), bytes.Repeat([]byte("x"), maxValueSize)...)
	big = append(big, '"')

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/rooms/room_BIG":
			w.Write(big)
		case "/api/v1/rooms/room_FIT":
			w.Write(big[:maxValueSize])
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, nil)
	ctx := context.Background()

	if _, err := r.Get(ctx, "room_BIG"); !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("err = %v; want ErrValueTooLarge", err)
	}
	v, err := r.Get(ctx, "room_FIT")
	if err != nil || len(v) != maxValueSize {
		t.Fatalf("value at the limit: len %d err %v", len(v), err)
	}
	if _, err := r.Get(ctx, "room_NONE"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
	if err := r.Set(ctx, "room_BIG", big); !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("set err = %v; want ErrValueTooLarge", err)
	}
}
