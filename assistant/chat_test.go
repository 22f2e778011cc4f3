package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChat_Send(t *testing.T) {
	tests := []struct {
		name      string
		backend   *fakeBackend
		wantReply string
		wantErr   bool
	}{
		{"ok", &fakeBackend{reply: &ChatReply{Response: "**Hello**", Suggestions: []string{"Show risk"}}}, "**Hello**", false},
		{"application failure", &fakeBackend{chatErr: errServer}, TroubleReply, true},
		{"offline", &fakeBackend{chatErr: errOffline}, OfflineReply, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChat(tt.backend, "USR000001", nil)
			reply, err := c.Send(context.Background(), "  How am I doing?  ")
			if (err != nil) != tt.wantErr {
				t.Errorf("Send() error = %v, wantErr %v", err, tt.wantErr)
			}
			if reply.Content != tt.wantReply {
				t.Errorf("Send() = %q, want %q", reply.Content, tt.wantReply)
			}
			h := c.History()
			if len(h) != 2 || h[0].Role != UserRole || h[0].Content != "How am I doing?" || h[1].Role != AssistantRole {
				t.Errorf("History() = %+v", h)
			}
		})
	}
}

func TestChat_BlankIsNotSent(t *testing.T) {
	f := &fakeBackend{}
	c := NewChat(f, "USR000001", nil)
	if _, err := c.Send(context.Background(), "   "); err != ErrEmptyMessage {
		t.Errorf("Send(blank) error = %v, want ErrEmptyMessage", err)
	}
	if len(f.calls) != 0 || len(c.History()) != 0 {
		t.Errorf("blank message reached the server or the history")
	}
}

func TestChat_Suggestions(t *testing.T) {
	f := &fakeBackend{library: &ScenarioLibrary{QuickScenarios: []Scenario{{ScenarioID: "AI_001", Title: "Market Crash"}}}}
	c := NewChat(f, "USR000001", nil)
	if _, err := c.LoadLibrary(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Tell me more about: Market Crash"}, c.Suggestions()); diff != "" {
		t.Errorf("Suggestions() mismatch (-want +got):\n%s", diff)
	}

	// a reply without suggestions keeps the chips
	f.reply = &ChatReply{Response: "ok"}
	c.Send(context.Background(), "hi")
	if len(c.Suggestions()) != 1 {
		t.Errorf("Suggestions() = %v, want unchanged", c.Suggestions())
	}
	f.reply = &ChatReply{Response: "ok", Suggestions: []string{"a", "b"}}
	c.Send(context.Background(), "hi")
	if diff := cmp.Diff([]string{"a", "b"}, c.Suggestions()); diff != "" {
		t.Errorf("Suggestions() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat(t *testing.T) {
	got := string(Format("**Bold** and *soft*\nnext <script>"))
	for _, want := range []string{"<strong>Bold</strong>", "<em>soft</em>", "<br", "next"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("Format() = %q, raw html passed through", got)
	}
}

func TestPrompts(t *testing.T) {
	if got := ImplementScenario("AI_003"); got != "I want to implement scenario AI_003. Show me the specific steps." {
		t.Errorf("ImplementScenario() = %q", got)
	}
}
