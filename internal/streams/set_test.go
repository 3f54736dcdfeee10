package streams_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"benchcat/internal/failure"
	"benchcat/internal/streams"
	"benchcat/internal/testsupport"
)

func TestReadAlignedStopsAtShortestSource(t *testing.T) {
	opener := testsupport.NewFakeOpener(map[string]testsupport.FakeSource{
		"a.mp4": {Width: 4, Height: 2, Frames: 10},
		"b.mp4": {Width: 4, Height: 2, Frames: 12},
		"c.mp4": {Width: 4, Height: 2, Frames: 8},
	})
	set, err := streams.Open(context.Background(), opener, []string{"a.mp4", "b.mp4", "c.mp4"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer set.Close()

	tuples := 0
	for {
		frames, err := set.ReadAligned()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadAligned returned error: %v", err)
		}
		if len(frames) != 3 {
			t.Fatalf("expected 3 frames per tuple, got %d", len(frames))
		}
		tuples++
	}
	if tuples != 8 {
		t.Fatalf("expected 8 aligned tuples, got %d", tuples)
	}
	if set.Err() != nil {
		t.Fatalf("expected clean end of stream, got %v", set.Err())
	}
	if _, err := set.ReadAligned(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF to persist, got %v", err)
	}
}

func TestReadAlignedPreservesOrder(t *testing.T) {
	opener := testsupport.NewFakeOpener(map[string]testsupport.FakeSource{
		"wide.mp4":   {Width: 8, Height: 2, Frames: 1},
		"narrow.mp4": {Width: 2, Height: 2, Frames: 1},
	})
	set, err := streams.Open(context.Background(), opener, []string{"narrow.mp4", "wide.mp4"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer set.Close()

	frames, err := set.ReadAligned()
	if err != nil {
		t.Fatalf("ReadAligned returned error: %v", err)
	}
	if frames[0].Bounds().Dx() != 2 || frames[1].Bounds().Dx() != 8 {
		t.Fatalf("frames out of order: %v %v", frames[0].Bounds(), frames[1].Bounds())
	}
	infos := set.Infos()
	if infos[0].Path != "narrow.mp4" || infos[1].Path != "wide.mp4" {
		t.Fatalf("infos out of order: %+v", infos)
	}
}

func TestDecodeErrorEndsStream(t *testing.T) {
	opener := testsupport.NewFakeOpener(map[string]testsupport.FakeSource{
		"ok.mp4":     {Width: 2, Height: 2, Frames: 10},
		"broken.mp4": {Width: 2, Height: 2, Frames: 10, FailAfter: 3},
	})
	set, err := streams.Open(context.Background(), opener, []string{"ok.mp4", "broken.mp4"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer set.Close()

	tuples := 0
	for {
		if _, err := set.ReadAligned(); err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("expected EOF, got %v", err)
			}
			break
		}
		tuples++
	}
	if tuples != 3 {
		t.Fatalf("expected 3 tuples before decode error, got %d", tuples)
	}
	if set.Err() == nil {
		t.Fatal("expected decode error to be retained")
	}
}

func TestOpenFailureReleasesOpenedHandles(t *testing.T) {
	opener := testsupport.NewFakeOpener(map[string]testsupport.FakeSource{
		"first.mp4": {Width: 2, Height: 2, Frames: 1},
		"third.mp4": {Width: 2, Height: 2, Frames: 1},
	})
	_, err := streams.Open(context.Background(), opener, []string{"first.mp4", "missing.mp4", "third.mp4"})
	if !errors.Is(err, failure.ErrOpen) {
		t.Fatalf("expected open error, got %v", err)
	}
	if opener.OpenHandles() != 0 {
		t.Fatalf("expected zero open handles, got %d", opener.OpenHandles())
	}
	if opener.Opens() != 1 || opener.Closes() != 1 {
		t.Fatalf("expected one open and one close, got %d/%d", opener.Opens(), opener.Closes())
	}
}

func TestOpenRejectsEmptyInput(t *testing.T) {
	opener := testsupport.NewFakeOpener(nil)
	if _, err := streams.Open(context.Background(), opener, nil); !errors.Is(err, failure.ErrOpen) {
		t.Fatalf("expected open error, got %v", err)
	}
	if _, err := streams.Open(context.Background(), nil, []string{"a"}); !errors.Is(err, failure.ErrOpen) {
		t.Fatalf("expected open error for nil opener, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	opener := testsupport.NewFakeOpener(map[string]testsupport.FakeSource{
		"a.mp4": {Width: 2, Height: 2, Frames: 1},
		"b.mp4": {Width: 2, Height: 2, Frames: 1},
	})
	set, err := streams.Open(context.Background(), opener, []string{"a.mp4", "b.mp4"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := set.Close(); err != nil {
			t.Fatalf("Close #%d returned error: %v", i+1, err)
		}
	}
	if opener.Closes() != 2 {
		t.Fatalf("expected each reader closed once, got %d closes", opener.Closes())
	}
	if _, err := set.ReadAligned(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after close, got %v", err)
	}
}
