package portal

import (
	"sort"
	"strings"
)

// Summary is the kind-specific digest of a table, derived only from the rows
// given. Each TableKind has exactly one implementation; renderers switch on
// the concrete type.
type Summary interface {
	Kind() TableKind
}

// Summarize dispatches rows to the summary of kind.
func Summarize(kind TableKind, rows []Row) Summary {
	switch kind {
	case InvestorData:
		return SummarizeInvestors(rows)
	case PortfolioAllocation:
		return SummarizeAllocations(rows)
	case ProductMarketData:
		return SummarizeMarket(rows)
	case MasterAllocationModel:
		return SummarizeModels(rows)
	case AIRebalancing:
		return SummarizeRebalancing(rows)
	default:
		return GenericSummary{Rows: rows}
	}
}

// Count is a labelled tally.
type Count struct {
	Label string
	N     int
}

// tally counts labels, keeping first-seen order.
type tally []Count

func (t *tally) add(label string) {
	for i := range *t {
		if (*t)[i].Label == label {
			(*t)[i].N++
			return
		}
	}
	*t = append(*t, Count{label, 1})
}

// GenericSummary is a plain key/value table.
type GenericSummary struct {
	Rows []Row
}

func (GenericSummary) Kind() TableKind { return GenericTable }

// InvestorCard is one client of the investor table.
type InvestorCard struct {
	UserID    string
	Name      string
	Age       int
	City      string
	Category  string
	Risk      string
	Value     Money
	Status    string // Premium, Gold, Silver or Standard
	RiskClass string // conservative, moderate, aggressive or unknown
}

// InvestorSummary is the client overview of the investor table.
type InvestorSummary struct {
	Total        int
	AUM          Money
	Average      Money
	RiskCapacity []Count
	AgeGroups    []Count
	Top          []InvestorCard
	Cards        []InvestorCard
}

func (InvestorSummary) Kind() TableKind { return InvestorData }

// ClientStatus grades a client by portfolio value.
func ClientStatus(value Money) string {
	switch {
	case value.GreaterThanOrEqual(USD(1000000)):
		return "Premium"
	case value.GreaterThanOrEqual(USD(500000)):
		return "Gold"
	case value.GreaterThanOrEqual(USD(100000)):
		return "Silver"
	default:
		return "Standard"
	}
}

// RiskClass reduces a free-form risk label to a class.
func RiskClass(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "conservative"):
		return "conservative"
	case strings.Contains(l, "moderate"):
		return "moderate"
	case strings.Contains(l, "aggressive"):
		return "aggressive"
	default:
		return "unknown"
	}
}

func ageGroup(age int) string {
	switch {
	case age < 30:
		return "Under 30"
	case age <= 45:
		return "30-45"
	case age <= 60:
		return "46-60"
	default:
		return "Over 60"
	}
}

func SummarizeInvestors(rows []Row) InvestorSummary {
	s := InvestorSummary{
		Total:     len(rows),
		AUM:       USD(0),
		AgeGroups: []Count{{"Under 30", 0}, {"30-45", 0}, {"46-60", 0}, {"Over 60", 0}},
	}
	var risks tally
	for _, r := range rows {
		card := InvestorCard{
			UserID:   r.String("user_id"),
			Name:     r.String("full_name"),
			Age:      r.Int("age"),
			City:     r.String("city"),
			Category: r.String("investor_category"),
			Risk:     r.String("risk_capacity"),
			Value:    r.Money("total_portfolio_value"),
		}
		card.Status = ClientStatus(card.Value)
		card.RiskClass = RiskClass(card.Risk)
		s.Cards = append(s.Cards, card)

		s.AUM = s.AUM.Add(card.Value)
		risk := card.Risk
		if risk == "" {
			risk = "Unknown"
		}
		risks.add(risk)
		for i := range s.AgeGroups {
			if s.AgeGroups[i].Label == ageGroup(card.Age) {
				s.AgeGroups[i].N++
			}
		}
	}
	s.RiskCapacity = risks
	s.Average = s.AUM.DivN(s.Total)

	// sort a copy, the fetched order is kept for the cards.
	top := append([]InvestorCard(nil), s.Cards...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Value.GreaterThan(top[j].Value) })
	if len(top) > 5 {
		top = top[:5]
	}
	s.Top = top
	return s
}

// FilterInvestors selects cards by segment: "all", "high-net-worth" (500k and
// above) or a risk class.
func FilterInvestors(cards []InvestorCard, segment string) []InvestorCard {
	var res []InvestorCard
	for _, c := range cards {
		switch segment {
		case "", "all":
		case "high-net-worth":
			if c.Value.LessThan(USD(500000)) {
				continue
			}
		default:
			if c.RiskClass != segment {
				continue
			}
		}
		res = append(res, c)
	}
	return res
}

// Slice is the share of one asset class in a portfolio.
type Slice struct {
	Asset   string
	Percent Percent
	Amount  Money
}

// AllocationCard is one portfolio of the allocation table.
type AllocationCard struct {
	UserID string
	Name   string
	Total  Money
	Slices []Slice
	Risk   string
}

// AllocationSummary is the card view of the allocation table.
type AllocationSummary struct {
	Cards   []AllocationCard
	Total   Money
	Average []Slice // average percent per asset class
}

func (AllocationSummary) Kind() TableKind { return PortfolioAllocation }

// AssetClasses are the allocation units, in display order.
var AssetClasses = []string{"equities", "bonds", "cash", "alternatives"}

// AllocationRisk grades a portfolio by its equity share.
func AllocationRisk(equities Percent) string {
	switch {
	case equities > 70:
		return "High"
	case equities > 50:
		return "Medium"
	default:
		return "Low"
	}
}

func SummarizeAllocations(rows []Row) AllocationSummary {
	s := AllocationSummary{Total: USD(0)}
	sums := make([]Percent, len(AssetClasses))
	for _, r := range rows {
		card := AllocationCard{
			UserID: r.String("user_id"),
			Name:   r.String("full_name"),
			Total:  r.Money("total_investment_amount"),
		}
		for i, asset := range AssetClasses {
			p := r.Percent(asset + "_percent")
			card.Slices = append(card.Slices, Slice{asset, p, card.Total.Share(p)})
			sums[i] += p
		}
		card.Risk = AllocationRisk(r.Percent("equities_percent"))
		s.Cards = append(s.Cards, card)
		s.Total = s.Total.Add(card.Total)
	}
	for i, asset := range AssetClasses {
		avg := Percent(0)
		if len(rows) > 0 {
			avg = sums[i] / Percent(len(rows))
		}
		s.Average = append(s.Average, Slice{Asset: asset, Percent: avg})
	}
	return s
}

// TypeStat aggregates products of one investment type.
type TypeStat struct {
	Type    string
	Count   int
	Total   Money
	Sectors []string
}

// SectorStat aggregates products of one industry sector.
type SectorStat struct {
	Sector  string
	Count   int
	Average Money
	Share   Percent // of the number of products
}

// MarketSummary is the overview of the product market table.
type MarketSummary struct {
	Count    int
	Average  Money
	Low      Money
	High     Money
	Sectors  int
	Types    []TypeStat
	BySector []SectorStat
	Products []Row
}

func (MarketSummary) Kind() TableKind { return ProductMarketData }

func SummarizeMarket(rows []Row) MarketSummary {
	s := MarketSummary{Count: len(rows), Products: rows, Average: USD(0), Low: USD(0), High: USD(0)}
	total := USD(0)
	sectorTotals := map[string]Money{}
	var sectors tally
	for i, r := range rows {
		price := r.Money("market_price_usd")
		sector := r.String("industry_sector")
		typ := r.String("investment_type")

		total = total.Add(price)
		if i == 0 {
			s.Low, s.High = price, price
		}
		s.Low, s.High = Min(s.Low, price), Max(s.High, price)

		ti := -1
		for j := range s.Types {
			if s.Types[j].Type == typ {
				ti = j
			}
		}
		if ti < 0 {
			s.Types = append(s.Types, TypeStat{Type: typ, Total: USD(0)})
			ti = len(s.Types) - 1
		}
		s.Types[ti].Count++
		s.Types[ti].Total = s.Types[ti].Total.Add(price)
		if !contains(s.Types[ti].Sectors, sector) {
			s.Types[ti].Sectors = append(s.Types[ti].Sectors, sector)
		}

		sectors.add(sector)
		if t, ok := sectorTotals[sector]; ok {
			sectorTotals[sector] = t.Add(price)
		} else {
			sectorTotals[sector] = price
		}
	}
	s.Average = total.DivN(len(rows))
	s.Sectors = len(sectors)
	for _, c := range sectors {
		s.BySector = append(s.BySector, SectorStat{
			Sector:  c.Label,
			Count:   c.N,
			Average: sectorTotals[c.Label].DivN(c.N),
			Share:   Percent(float64(c.N) / float64(len(rows)) * 100),
		})
	}
	return s
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// ModelCard is one master allocation model.
type ModelCard struct {
	No           string
	Type         string
	Description  string
	Equities     Percent
	Domestic     Percent
	Emerging     Percent
	Bonds        Percent
	Cash         Percent
	Alternatives Percent
}

// ModelGroup is the models of one category.
type ModelGroup struct {
	Category string
	Risk     string
	Models   []ModelCard
}

// ModelSummary groups the master allocation models by category.
type ModelSummary struct {
	Groups          []ModelGroup
	Total           int
	AverageEquities Percent
	AverageBonds    Percent
}

func (ModelSummary) Kind() TableKind { return MasterAllocationModel }

// ModelRisk is the risk label of a model category.
func ModelRisk(category string) string {
	switch category {
	case "Conservative":
		return "Low"
	case "Moderate":
		return "Medium"
	case "Growth":
		return "Medium-High"
	case "Aggressive":
		return "High"
	default:
		return "Medium"
	}
}

func SummarizeModels(rows []Row) ModelSummary {
	var s ModelSummary
	var eq, bd Percent
	for _, r := range rows {
		cat := r.String("category")
		if cat == "" {
			cat = "General"
		}
		gi := -1
		for i := range s.Groups {
			if s.Groups[i].Category == cat {
				gi = i
			}
		}
		if gi < 0 {
			s.Groups = append(s.Groups, ModelGroup{Category: cat, Risk: ModelRisk(cat)})
			gi = len(s.Groups) - 1
		}
		m := ModelCard{
			No:           r.String("model_no"),
			Type:         r.String("model_type"),
			Description:  r.String("model_desc"),
			Equities:     r.Percent("equities"),
			Domestic:     r.Percent("domestic_equities"),
			Emerging:     r.Percent("emerging_market"),
			Bonds:        r.Percent("bonds"),
			Cash:         r.Percent("cash_cash_equivalents"),
			Alternatives: r.Percent("alternative_investments"),
		}
		s.Groups[gi].Models = append(s.Groups[gi].Models, m)
		eq += m.Equities
		bd += m.Bonds
		s.Total++
	}
	if s.Total > 0 {
		s.AverageEquities = eq / Percent(s.Total)
		s.AverageBonds = bd / Percent(s.Total)
	}
	return s
}

// RebalancingCard is one customer of the AI rebalancing table.
type RebalancingCard struct {
	UserID        string
	Name          string
	Age           int
	Category      string
	Priority      string
	Value         Money
	AvgReturn     Percent
	EquityDrift   Percent
	CurrentEquity Percent
	TargetEquity  Percent
	Holdings      int
}

// RebalancingSummary is the priority overview of the AI rebalancing table.
type RebalancingSummary struct {
	Total  int
	High   int
	Medium int
	Low    int
	Value  Money
	Cards  []RebalancingCard
}

func (RebalancingSummary) Kind() TableKind { return AIRebalancing }

func SummarizeRebalancing(rows []Row) RebalancingSummary {
	s := RebalancingSummary{Total: len(rows), Value: USD(0)}
	for _, r := range rows {
		c := RebalancingCard{
			UserID:        r.String("user_id"),
			Name:          r.String("full_name"),
			Age:           r.Int("age"),
			Category:      r.String("investor_category"),
			Priority:      r.String("rebalancing_priority"),
			Value:         r.Money("portfolio_value"),
			AvgReturn:     r.Percent("avg_return"),
			EquityDrift:   r.Percent("equity_drift"),
			CurrentEquity: r.Percent("current_equity"),
			TargetEquity:  r.Percent("target_equity"),
			Holdings:      r.Int("holdings_count"),
		}
		switch c.Priority {
		case "High":
			s.High++
		case "Medium":
			s.Medium++
		case "Low":
			s.Low++
		}
		s.Value = s.Value.Add(c.Value)
		s.Cards = append(s.Cards, c)
	}
	return s
}
