package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/portal"
	md "github.com/nao1215/markdown"
)

// RenderCoachHistory renders the past analyses of a user.
func RenderCoachHistory(records []portal.CoachRecord) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("Previous Analyses")
	if len(records) == 0 {
		doc.PlainText("No previous analyses.")
		return doc.String()
	}
	set := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"#", "Date", "Life Event", "Timeline", "Emotion", "Outlook"},
	}
	for _, r := range records {
		set.Rows = append(set.Rows, []string{
			strconv.Itoa(r.ID),
			portal.FormatCell(r.AnalysisDate),
			portal.TitleCase(r.LifeEvent),
			r.Timeline,
			r.CurrentEmotion,
			r.MarketOutlook,
		})
	}
	writeTable(doc, set)
	return doc.String()
}
