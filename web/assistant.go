package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/etnz/portal/assistant"
	"github.com/etnz/portal/renderer"
	"github.com/go-chi/chi/v5"
)

// assistantSession is the assistant page of one user.
type assistantSession struct {
	board *assistant.Board
	chat  *assistant.Chat
}

// session returns the assistant of user, creating it on first use.
func (s *Server) session(ctx context.Context, user string) *assistantSession {
	s.mu.Lock()
	a, ok := s.assistant[user]
	if !ok {
		a = &assistantSession{
			board: assistant.NewBoard(s.backend, user, s.log),
			chat:  assistant.NewChat(s.backend, user, s.log),
		}
		s.assistant[user] = a
	}
	s.mu.Unlock()
	if !ok {
		if _, err := a.chat.LoadLibrary(ctx); err != nil {
			s.log.Debug("scenario library not available", "err", err)
		}
	}
	return a
}

func (s *Server) userOf(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user")); u != "" {
		return u
	}
	return s.user
}

func (s *Server) renderAssistant(w http.ResponseWriter, r *http.Request, a *assistantSession, status int) {
	d := s.data("AI Assistant", a.board.UserID)
	d.Panels, d.Active = assistant.Panels, a.board.Active()
	d.Status = renderer.RenderStatus(a.board.Status(r.Context()))
	d.History, d.Suggestions = a.chat.History(), a.chat.Suggestions()
	if d.Active != assistant.ChatPanel {
		if v := a.board.View(d.Active); v != nil {
			d.Body = s.markdown(renderer.RenderPanel(v))
		}
	}
	s.render(w, status, "assistant.html", d)
}

// Assistant handles GET /assistant?panel=&user=.
func (s *Server) Assistant(w http.ResponseWriter, r *http.Request) {
	a := s.session(r.Context(), s.userOf(r))
	if name := r.URL.Query().Get("panel"); name != "" {
		p, err := assistant.ParsePanel(name)
		if err != nil {
			d := s.data("AI Assistant", a.board.UserID)
			d.Message = err.Error()
			s.render(w, http.StatusNotFound, "page.html", d)
			return
		}
		a.board.Switch(r.Context(), p)
	}
	s.renderAssistant(w, r, a, http.StatusOK)
}

// chatReply is the JSON answer of the chat endpoint.
type chatReply struct {
	Response    string   `json:"response"`
	HTML        string   `json:"html"`
	Suggestions []string `json:"suggestions"`
}

// Chat handles POST /assistant/chat. A JSON body {"message": ...} gets a JSON
// reply; a form post gets the assistant page back.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	a := s.session(r.Context(), s.userOf(r))
	isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

	var text string
	if isJSON {
		var in struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		text = in.Message
	} else {
		text = r.FormValue("message")
	}

	a.board.Switch(r.Context(), assistant.ChatPanel)
	reply, err := a.chat.Send(r.Context(), text)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		if isJSON {
			http.Error(w, "Message is required", http.StatusBadRequest)
			return
		}
		s.renderAssistant(w, r, a, http.StatusBadRequest)
		return
	}
	if !isJSON {
		s.renderAssistant(w, r, a, http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatReply{
		Response:    reply.Content,
		HTML:        string(reply.HTML()),
		Suggestions: a.chat.Suggestions(),
	})
}

// Customers handles GET /assistant/customers.
func (s *Server) Customers(w http.ResponseWriter, r *http.Request) {
	a := s.session(r.Context(), s.userOf(r))
	d := s.data("Customers", a.board.UserID)
	customers, err := a.board.Customers(r.Context())
	if err != nil {
		s.fail(w, d, err)
		return
	}
	d.Body = s.markdown(renderer.RenderCustomers(customers))
	for _, c := range customers {
		d.Links = append(d.Links, link{c.Name, "/assistant/customers/" + c.UserID})
	}
	s.render(w, http.StatusOK, "page.html", d)
}

// SelectCustomer handles GET /assistant/customers/{id}: it shows the
// personalized scenarios and hands the customer off to the store.
func (s *Server) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a := s.session(r.Context(), s.userOf(r))
	d := s.data("Customer "+id, a.board.UserID)
	cs, err := a.board.SelectCustomer(r.Context(), s.store, id)
	if err != nil {
		s.fail(w, d, err)
		return
	}
	d.Body = s.markdown(renderer.RenderCustomerScenarios(cs))
	s.render(w, http.StatusOK, "page.html", d)
}
