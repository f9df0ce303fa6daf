/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
)

type chatFixture struct {
	router *Router
	chat   *Room
	conns  map[string]*fakeConn
	people map[string]*Player
}

func newChatFixture(t *testing.T, names ...string) *chatFixture {
	t.Helper()

	players := newPlayerRegistry()
	chat := newRoom(chatRoom)
	f := &chatFixture{
		router: newRouter(testConfig(), players, chat),
		chat:   chat,
		conns:  make(map[string]*fakeConn),
		people: make(map[string]*Player),
	}

	for _, name := range names {
		conn := &fakeConn{}
		p := newPlayer(conn)
		p.setName(name)
		players.Register(p)
		chat.Join(p.ID(), conn)

		f.conns[name] = conn
		f.people[name] = p
	}

	return f
}

func TestDirectMessageToUnknownName(t *testing.T) {
	f := newChatFixture(t, "Ann", "Ben", "Cat")

	if res := f.router.Route(f.people["Ann"], "Nobody", "hello"); res != NotFound {
		t.Fatalf("expected not found, got %v", res)
	}

	msgs := f.conns["Ann"].chats()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one message to the sender, got %d", len(msgs))
	}
	if msgs[0].Text != msgNoPeer || len(msgs[0].Tags) != 1 || msgs[0].Tags[0].Text != labelInfo {
		t.Fatalf("unexpected error message %+v", msgs[0])
	}

	for _, name := range []string{"Ben", "Cat"} {
		if n := len(f.conns[name].events); n != 0 {
			t.Fatalf("%s received %d messages", name, n)
		}
	}
}

func TestDirectMessageReachesOnlyTarget(t *testing.T) {
	f := newChatFixture(t, "Ann", "Ben", "Cat")

	if res := f.router.Route(f.people["Ann"], "Ben", "psst"); res != Ok {
		t.Fatalf("expected ok, got %v", res)
	}

	msgs := f.conns["Ben"].chats()
	if len(msgs) != 1 {
		t.Fatalf("expected one message for Ben, got %d", len(msgs))
	}
	want := []ChatTag{{Text: "Ann"}, {Type: tagInfo, Text: labelPM}}
	if msgs[0].Text != "psst" || len(msgs[0].Tags) != 2 || msgs[0].Tags[0] != want[0] || msgs[0].Tags[1] != want[1] {
		t.Fatalf("unexpected direct message %+v", msgs[0])
	}

	if len(f.conns["Ann"].events) != 0 || len(f.conns["Cat"].events) != 0 {
		t.Fatalf("direct message leaked")
	}
}

func TestBroadcastSkipsSender(t *testing.T) {
	f := newChatFixture(t, "Ann", "Ben", "Cat")
	f.chat.Leave(f.people["Cat"].ID())

	f.router.Route(f.people["Ann"], "", "hi all")

	if len(f.conns["Ann"].events) != 0 {
		t.Fatalf("sender received own broadcast")
	}
	if len(f.conns["Cat"].events) != 0 {
		t.Fatalf("player outside the chat scope received a broadcast")
	}

	msgs := f.conns["Ben"].chats()
	if len(msgs) != 1 || msgs[0].Text != "hi all" || msgs[0].Tags[0].Text != "Ann" {
		t.Fatalf("unexpected broadcast %+v", msgs)
	}
}

func TestRoomBroadcastCountsDeliveries(t *testing.T) {
	room := newRoom("test")
	live := &fakeConn{}
	dead := &fakeConn{dead: true}
	room.Join("live", live)
	room.Join("dead", dead)
	room.Join("self", &fakeConn{})

	if n := room.Broadcast("x", nil, "self"); n != 1 {
		t.Fatalf("expected one delivery, got %d", n)
	}
	if !room.Has("dead") {
		t.Fatalf("room membership is owned by the session, not by delivery")
	}
}

func TestSanitizeChat(t *testing.T) {
	if got := sanitizeChat(`<b>"hi"</b> & bye`); got != "&lt;b&gt;&#34;hi&#34;&lt;/b&gt; &amp; bye" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}
