package assistant

import (
	"context"
	"strings"
	"testing"
)

func TestREPL_Run(t *testing.T) {
	f := &fakeBackend{reply: &ChatReply{Response: "Your portfolio is fine."}}
	var out strings.Builder
	r := NewREPL(&out, strings.NewReader("how is my portfolio?\nbye\nnever sent\n"), NewChat(f, "USR000001", nil))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Your portfolio is fine.") {
		t.Errorf("output = %q, missing the reply", out.String())
	}
	if len(f.calls) != 1 {
		t.Errorf("calls = %v, want one chat", f.calls)
	}
}

func TestREPL_EOFAndPrompts(t *testing.T) {
	f := &fakeBackend{chatErr: errOffline}
	var out strings.Builder
	r := NewREPL(&out, strings.NewReader("last line without newline"), NewChat(f, "USR000001", nil))

	if err := r.Run(context.Background(), "first", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.Count(out.String(), OfflineReply); got != 2 {
		t.Errorf("offline replies = %d, want 2", got)
	}
}

func TestREPL_Panel(t *testing.T) {
	f := &fakeBackend{}
	chat := NewChat(f, "USR000001", nil)
	var out strings.Builder
	r := NewREPL(&out, strings.NewReader(":panel monitoring\n:panel weather\n"), chat)
	r.Board = NewBoard(f, "USR000001", nil)
	r.Panel = func(v *PanelView) string { return "# " + v.Cards[0].Title }

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "# Monitoring Status") {
		t.Errorf("output = %q, missing the panel", out.String())
	}
	if !strings.Contains(out.String(), `unknown panel "weather"`) {
		t.Errorf("output = %q, missing the parse error", out.String())
	}
}
