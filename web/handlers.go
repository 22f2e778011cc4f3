package web

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/etnz/portal"
	"github.com/etnz/portal/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Welcome handles GET /. With ?user=ID&view=dashboard it opens the dashboard.
func (s *Server) Welcome(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user != "" && r.URL.Query().Get("view") == "dashboard" {
		http.Redirect(w, r, "/users/"+url.PathEscape(user), http.StatusFound)
		return
	}
	d := s.data("Welcome", user)
	screen, err := controllerOf(r).Welcome(r.Context())
	if err != nil {
		s.fail(w, d, err)
		return
	}
	d.Body = s.markdown(renderer.RenderScreen(screen))
	s.render(w, http.StatusOK, "page.html", d)
}

// Table handles GET /tables/{name}?q=.
func (s *Server) Table(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query().Get("q")
	d := s.data(portal.TableTitle(name), "")
	d.Search, d.Query = "/tables/"+url.PathEscape(name), q

	ctrl := controllerOf(r)
	screen, err := ctrl.LoadTable(r.Context(), name)
	if err == nil && screen.Table != nil && strings.TrimSpace(q) != "" {
		screen, err = ctrl.Search(q)
	}
	if err != nil {
		s.fail(w, d, err)
		return
	}
	status := http.StatusOK
	if screen.Error != nil {
		status = statusOf(screen.Error.Err)
	}
	d.Body = s.markdown(renderer.RenderScreen(screen))
	s.render(w, status, "page.html", d)
}

// Export handles GET /tables/{name}/export?q=: the visible rows as CSV.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctrl := controllerOf(r)
	screen, err := ctrl.LoadTable(r.Context(), name)
	if err != nil {
		http.Error(w, portal.Message(err), statusOf(err))
		return
	}
	if screen.Error != nil {
		http.Error(w, screen.Error.Message, statusOf(screen.Error.Err))
		return
	}
	if _, err := ctrl.Search(r.URL.Query().Get("q")); err != nil {
		http.Error(w, portal.Message(err), statusOf(err))
		return
	}
	ds := ctrl.Dataset()
	var buf bytes.Buffer
	if err := ds.WriteCSV(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ds.ExportFilename(s.now())))
	buf.WriteTo(w)
}

// Dashboard handles GET /users/{id}.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := s.data("Dashboard", id)
	ctrl := controllerOf(r)
	dash, err := ctrl.LoadDashboard(r.Context(), id)
	if err != nil {
		s.fail(w, d, err)
		return
	}
	d.Title = dash.Title
	d.Body = s.markdown(renderer.RenderDashboard(dash))
	d.Charts = ctrl.Charts().Specs()
	base := "/users/" + url.PathEscape(id)
	if asset, ok := dash.QuickRebalance(); ok {
		d.Links = append(d.Links, link{"Quick rebalance " + asset, base + "/rebalance/" + url.PathEscape(asset)})
	}
	for _, a := range dash.Breakdown {
		d.Links = append(d.Links, link{"Custom rebalance " + a.Asset, base + "/custom/" + url.PathEscape(a.Asset)})
	}
	d.Links = append(d.Links, link{"Behavioral coach", base + "/coach"})
	s.render(w, http.StatusOK, "page.html", d)
}

// guided returns the guided session of id and asset in ctrl, opening a new
// one when another page is showing.
func guided(ctrl *portal.Controller, r *http.Request) (*portal.RebalancingSession, error) {
	id, asset := chi.URLParam(r, "id"), chi.URLParam(r, "asset")
	st := ctrl.State()
	if g := ctrl.Guided(); g != nil && st.UserID == id && st.AssetClass == asset {
		return g, nil
	}
	return ctrl.OpenRebalancing(r.Context(), id, asset)
}

func (s *Server) selectScenario(g *portal.RebalancingSession, raw string) error {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid scenario %q", raw)
	}
	return g.Select(n)
}

// renderGuided shows the page. err is shown inline unless the session
// already displays it.
func (s *Server) renderGuided(w http.ResponseWriter, g *portal.RebalancingSession, scenario string, err error) {
	d := s.data("Rebalance "+portal.TitleCase(g.AssetClass), g.UserID)
	d.Guided, d.Scenario = g, scenario
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
		if g.State != portal.RebalancingErrorShown {
			d.Message = portal.Message(err)
		}
	}
	d.Body = s.markdown(renderer.RenderGuided(g))
	s.render(w, status, "guided.html", d)
}

// Rebalance handles GET /users/{id}/rebalance/{asset}?scenario=.
func (s *Server) Rebalance(w http.ResponseWriter, r *http.Request) {
	g, err := controllerOf(r).OpenRebalancing(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "asset"))
	if err != nil {
		s.fail(w, s.data("Rebalance", chi.URLParam(r, "id")), err)
		return
	}
	scenario := r.URL.Query().Get("scenario")
	if err := s.selectScenario(g, scenario); err != nil {
		s.fail(w, s.data("Rebalance", g.UserID), err)
		return
	}
	s.renderGuided(w, g, scenario, nil)
}

// ExecuteRebalance handles POST /users/{id}/rebalance/{asset}/execute.
func (s *Server) ExecuteRebalance(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerOf(r)
	g, err := guided(ctrl, r)
	if err != nil {
		s.fail(w, s.data("Rebalance", chi.URLParam(r, "id")), err)
		return
	}
	g.Retry()
	scenario := r.FormValue("scenario")
	if err := s.selectScenario(g, scenario); err != nil {
		s.fail(w, s.data("Rebalance", g.UserID), err)
		return
	}
	s.renderGuided(w, g, scenario, ctrl.ExecuteScenario(r.Context(), g))
}

// Report handles GET /users/{id}/rebalance/{asset}/report?scenario=.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	g, err := guided(controllerOf(r), r)
	if err != nil {
		http.Error(w, portal.Message(err), statusOf(err))
		return
	}
	if raw := r.URL.Query().Get("scenario"); raw != "" && !g.IsSelected(atoi(raw)) {
		if err := s.selectScenario(g, raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	sc, ok := g.Selected()
	if !ok {
		http.Error(w, portal.ErrNoSelection.Error(), http.StatusBadRequest)
		return
	}
	now := s.now()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", portal.ReportFilename(now)))
	fmt.Fprint(w, renderer.RenderReport(renderer.NewReport(sc, now)))
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func (s *Server) renderCustom(w http.ResponseWriter, c *portal.CustomSession, err error) {
	d := s.data("Custom Rebalancing", c.UserID)
	d.Custom = c
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
		if c.State != portal.CustomErrorShown {
			d.Message = portal.Message(err)
		}
	}
	d.Body = s.markdown(renderer.RenderCustom(c))
	s.render(w, status, "custom.html", d)
}

// Custom handles GET /users/{id}/custom/{asset}.
func (s *Server) Custom(w http.ResponseWriter, r *http.Request) {
	c, err := controllerOf(r).OpenCustom(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "asset"))
	if c == nil {
		s.fail(w, s.data("Custom Rebalancing", chi.URLParam(r, "id")), err)
		return
	}
	s.renderCustom(w, c, err)
}

// ExecuteCustom handles POST /users/{id}/custom/{asset}/execute. The form
// lists the selected ids under "select" and their amounts under "amount_ID".
func (s *Server) ExecuteCustom(w http.ResponseWriter, r *http.Request) {
	id, asset := chi.URLParam(r, "id"), chi.URLParam(r, "asset")
	ctrl := controllerOf(r)
	c := ctrl.Custom()
	if st := ctrl.State(); c == nil || c.Options == nil || st.UserID != id || st.AssetClass != asset {
		var err error
		if c, err = ctrl.OpenCustom(r.Context(), id, asset); err != nil {
			if c == nil {
				s.fail(w, s.data("Custom Rebalancing", id), err)
			} else {
				s.renderCustom(w, c, err)
			}
			return
		}
	}
	c.Retry()
	if err := r.ParseForm(); err != nil {
		s.fail(w, s.data("Custom Rebalancing", id), err)
		return
	}
	if err := applySelection(c, r.PostForm); err != nil {
		s.fail(w, s.data("Custom Rebalancing", id), err)
		return
	}
	s.renderCustom(w, c, c.Execute(r.Context(), s.src))
}

// applySelection makes the session selection match the form.
func applySelection(c *portal.CustomSession, form url.Values) error {
	want := map[string]bool{}
	for _, id := range form["select"] {
		want[id] = true
	}
	items := append(append([]portal.LineItem(nil), c.Sells...), c.Buys...)
	for _, li := range items {
		if li.Selected != want[li.ID] {
			if err := c.Toggle(li.ID); err != nil {
				return err
			}
		}
		raw := strings.TrimSpace(form.Get("amount_" + li.ID))
		if raw == "" {
			continue
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid amount %q for %s", raw, li.FundSymbol)
		}
		if _, err := c.SetAmount(li.ID, portal.USD(amount)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) renderCoach(w http.ResponseWriter, status int, c *portal.CoachSession, body string) {
	d := s.data("Behavioral Finance Coach", c.UserID)
	d.Coach, d.Implementations = c, portal.Implementations()
	d.Body = s.markdown(body)
	s.render(w, status, "coach.html", d)
}

// Coach handles GET /users/{id}/coach: an empty questionnaire and the
// previous analyses.
func (s *Server) Coach(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c := controllerOf(r).OpenCoach(id)
	history, err := s.src.CoachHistory(r.Context(), id)
	if err != nil {
		s.log.Warn("coach history not available", "user", id, "err", err)
	}
	s.renderCoach(w, http.StatusOK, c, renderer.RenderCoachHistory(history))
}

// Analyze handles POST /users/{id}/coach.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctrl := controllerOf(r)
	ctrl.OpenCoach(id)
	q := portal.Questionnaire{
		LifeEvent: portal.LifeEvent{
			PrimaryLifeEvent: r.FormValue("primaryLifeEvent"),
			EventTimeline:    r.FormValue("eventTimeline"),
			FinancialImpact:  r.FormValue("financialImpact"),
			RiskChange:       r.FormValue("riskChange"),
			EventDetails:     r.FormValue("eventDetails"),
		},
		Behavior: portal.BehavioralProfile{
			CurrentEmotion: r.FormValue("currentEmotion"),
			MarketOutlook:  r.FormValue("marketOutlook"),
			DecisionStyle:  r.FormValue("decisionStyle"),
			RecentBehavior: r.FormValue("recentBehavior"),
		},
	}
	c, err := ctrl.Analyze(r.Context(), q)
	if c == nil {
		s.fail(w, s.data("Behavioral Finance Coach", id), err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
	}
	s.renderCoach(w, status, c, renderer.RenderCoach(renderer.NewCoach(c)))
}

// Implement handles POST /users/{id}/coach/implement.
func (s *Server) Implement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctrl := controllerOf(r)
	c := ctrl.Coach()
	if c == nil || c.UserID != id || c.Analysis == nil {
		d := s.data("Behavioral Finance Coach", id)
		d.Message = "Complete the questionnaire first."
		s.render(w, http.StatusConflict, "page.html", d)
		return
	}
	_, err := ctrl.Implement(r.Context(), r.FormValue("scenario"))
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
		if c.Err == nil {
			c.Err = err
		}
	}
	s.renderCoach(w, status, c, renderer.RenderCoach(renderer.NewCoach(c)))
}
