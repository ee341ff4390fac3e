package render

import (
	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/services"
)

var tabLabels = map[models.Tab]string{
	models.TabStats:      "Election Statistics",
	models.TabCompare:    "Compare Elections",
	models.TabCandidates: "Top Candidates",
}

var actionLabels = map[models.Tab]string{
	models.TabStats:      "Analyze",
	models.TabCompare:    "Compare",
	models.TabCandidates: "Show Candidates",
}

// YearSelectView is one year select of a tab
type YearSelectView struct {
	ID       string
	Label    string
	Options  []int
	Selected int
}

// TabView is one tab of the index page
type TabView struct {
	Tab         models.Tab
	Label       string
	Action      string
	Country     string
	YearSelects []YearSelectView
	Panel       *services.Panel
}

// IndexData is the data of the index page
type IndexData struct {
	Title        string
	Countries    []string
	Active       models.Tab
	Tabs         []TabView
	Count        int
	CatalogError string
	Notice       string
}

// NewIndexData builds the index page from a session's selections and panels.
// defaultCount is shown when the session has no candidate count.
func NewIndexData(sess *services.Session, countries []string, defaultCount int) IndexData {
	data := IndexData{
		Title:     "Election Data Analysis",
		Countries: countries,
		Active:    sess.ActiveTab(),
		Count:     sess.Count(),
	}
	if data.Count == 0 {
		data.Count = defaultCount
	}

	for _, tab := range models.Tabs {
		sel := sess.Selector(tab)
		tv := TabView{
			Tab:     tab,
			Label:   tabLabels[tab],
			Action:  actionLabels[tab],
			Country: sel.Parent(),
			Panel:   sess.Panel(tab),
		}
		for slot := 0; slot < sel.Children(); slot++ {
			label := "Year"
			if sel.Children() > 1 {
				label = "Year " + string(rune('1'+slot))
			}
			tv.YearSelects = append(tv.YearSelects, YearSelectView{
				ID:       YearSelectTarget(tab, slot)[1:],
				Label:    label,
				Options:  sel.ChildOptions(slot),
				Selected: sel.Child(slot),
			})
		}
		data.Tabs = append(data.Tabs, tv)
	}
	return data
}
