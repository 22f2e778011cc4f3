package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/etnz/portal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Replies used in place of the server answer when the call fails.
const (
	TroubleReply = "I'm having trouble processing your request right now. Please try again."
	OfflineReply = "I'm currently offline. Please check your connection and try again."
)

// ErrEmptyMessage is returned for a blank chat input, which is never sent.
var ErrEmptyMessage = errors.New("empty message")

// Role is the author of a chat message.
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

// Message is one bubble of the conversation.
type Message struct {
	Role    Role
	Content string
	At      time.Time
}

// HTML is the formatted content of the message.
func (m Message) HTML() template.HTML { return Format(m.Content) }

// Time is the short time shown under the bubble.
func (m Message) Time() string { return m.At.Format("15:04") }

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Format renders the light markdown of assistant texts (bold, emphasis and
// line breaks) to HTML. Raw HTML in content is not passed through.
func Format(content string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}

// Prompts sent on behalf of the user by the scenario buttons.
func TellMeMore(title string) string { return "Tell me more about: " + title }

func ImplementScenario(id string) string {
	return fmt.Sprintf("I want to implement scenario %s. Show me the specific steps.", id)
}

func ImplementForCustomer(id, name string) string {
	return fmt.Sprintf("I want to implement %s for customer %s. Show me the detailed steps and considerations.", id, name)
}

// Chat is the conversation of the chat panel. The history is local only.
type Chat struct {
	backend Backend
	UserID  string
	log     *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	history     []Message
	suggestions []string
	library     *ScenarioLibrary
}

// NewChat returns an empty conversation for userID.
func NewChat(backend Backend, userID string, log *slog.Logger) *Chat {
	if log == nil {
		log = slog.Default()
	}
	return &Chat{backend: backend, UserID: userID, log: log, now: time.Now}
}

// Send posts text and appends both the user message and the reply to the
// history. On failure the reply is TroubleReply or OfflineReply and the
// cause is returned along with it.
func (c *Chat) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	c.append(Message{Role: UserRole, Content: text, At: c.now()})

	res, err := c.backend.Chat(ctx, ChatRequest{UserID: c.UserID, Message: text})
	reply := Message{Role: AssistantRole, At: c.now()}
	switch {
	case err == nil:
		reply.Content = res.Response
		if len(res.Suggestions) > 0 {
			c.mu.Lock()
			c.suggestions = res.Suggestions
			c.mu.Unlock()
		}
	case portal.IsTransport(err):
		reply.Content = OfflineReply
	default:
		reply.Content = TroubleReply
	}
	if err != nil {
		c.log.Warn("chat failed", "user", c.UserID, "err", err)
	}
	c.append(reply)
	return reply, err
}

func (c *Chat) append(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, m)
}

// History returns the messages so far.
func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Suggestions returns the current follow-up chips.
func (c *Chat) Suggestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.suggestions...)
}

// LoadLibrary fetches the scenario library; its quick scenarios become the
// suggestion chips, as "Tell me more about" prompts.
func (c *Chat) LoadLibrary(ctx context.Context) (*ScenarioLibrary, error) {
	lib, err := c.backend.ScenarioLibrary(ctx)
	if err != nil {
		c.log.Debug("scenario library not available", "err", err)
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.library = lib
	if len(lib.QuickScenarios) > 0 {
		c.suggestions = c.suggestions[:0:0]
		for _, s := range lib.QuickScenarios {
			c.suggestions = append(c.suggestions, TellMeMore(s.Title))
		}
	}
	return lib, nil
}

// Library returns the last loaded scenario library, nil if none.
func (c *Chat) Library() *ScenarioLibrary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.library
}
