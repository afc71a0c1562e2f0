package main

import (
	"sync"
	"testing"
	"time"
)

type edge struct {
	note    uint8
	pressed bool
}

type edgeLog struct {
	mu    sync.Mutex
	edges []edge
}

func (l *edgeLog) KeyEvent(note uint8, pressed bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.edges = append(l.edges, edge{note, pressed})
	return nil
}

func TestRepeatExtendsHeldKey(t *testing.T) {
	log := &edgeLog{}
	k := newKeyScanner(log, time.Hour)
	k.press(60)
	k.press(60)
	if len(log.edges) != 1 || log.edges[0] != (edge{60, true}) {
		t.Fatalf("edges = %v, want a single press", log.edges)
	}
	k.release(60, k.held[60])
	if len(log.edges) != 2 || log.edges[1] != (edge{60, false}) {
		t.Fatalf("edges = %v, want press then release", log.edges)
	}
}

func TestStaleReleaseDoesNotCutRepress(t *testing.T) {
	log := &edgeLog{}
	k := newKeyScanner(log, time.Hour)
	k.press(60)
	stale := k.held[60]
	// The timer has fired but its release has not taken the lock yet.
	stale.timer.Stop()
	k.press(60)
	k.release(60, stale)
	if len(log.edges) != 1 {
		t.Fatalf("stale release reached the player: %v", log.edges)
	}
	k.release(60, k.held[60])
	want := []edge{{60, true}, {60, false}}
	if len(log.edges) != len(want) || log.edges[0] != want[0] || log.edges[1] != want[1] {
		t.Fatalf("edges = %v, want %v", log.edges, want)
	}
	if _, ok := k.held[60]; ok {
		t.Fatalf("released key still held")
	}
}

func TestTimedRelease(t *testing.T) {
	log := &edgeLog{}
	k := newKeyScanner(log, time.Millisecond)
	k.press(64)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		log.mu.Lock()
		n := len(log.edges)
		log.mu.Unlock()
		if n == 2 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	t.Fatalf("key was never released: %v", log.edges)
}
