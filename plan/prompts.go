package plan

import (
	"fmt"
	"strings"

	"github.com/ronfux/LeadGenius/task"
)

// CitySearchPrompt renders the worker prompt for one city_search task. The
// requested output shape matches what the aggregator accepts: a single JSON
// object carrying the city, state, and a businesses list.
func CitySearchPrompt(p task.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search for businesses in:\nCity: %s\nState: %s\nIndustry: %s\n\n",
		p.City, p.State, p.Industry)
	fmt.Fprintf(&b, "Search terms to use: %s\n", strings.Join(p.SearchTerms, ", "))
	fmt.Fprintf(&b, "Data fields to collect: %s\n\n", strings.Join(p.DataFields, ", "))
	b.WriteString("Find relevant businesses in this city and report every one.\n")
	b.WriteString(`Respond with a single JSON object of the form {"city": ..., "state": ..., "businesses": [...]}, one entry per business carrying the requested data fields.`)
	return b.String()
}

// CompanyResearchPrompt renders the worker prompt for one company_research
// task.
func CompanyResearchPrompt(p task.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research this company:\nCompany Name: %s\nLocation: %s, %s\nIndustry: %s\n\n",
		p.CompanyName, p.City, p.State, p.Industry)
	if len(p.DataFields) > 0 {
		fmt.Fprintf(&b, "Data fields to collect: %s\n\n", strings.Join(p.DataFields, ", "))
	}
	b.WriteString("Gather detailed information about this company.\n")
	b.WriteString(`Respond with a single JSON object keyed "company_name", with nested "location" and "contact" groups where known.`)
	return b.String()
}

// managerPrompt renders the planning prompt sent to the manager model.
func managerPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Propose target cities for a market research run.\n\n")
	fmt.Fprintf(&b, "Industry: %s\n", req.Industry)
	fmt.Fprintf(&b, "States to research: %s\n", strings.Join(req.States, ", "))
	fmt.Fprintf(&b, "Search terms to use: %s\n", strings.Join(req.SearchTerms, ", "))
	fmt.Fprintf(&b, "Data fields to collect: %s\n\n", strings.Join(req.DataFields, ", "))
	b.WriteString("Cover the major business hubs of every listed state")
	if req.CitiesPerState > 0 {
		fmt.Fprintf(&b, ", at most %d cities per state", req.CitiesPerState)
	}
	b.WriteString(".\n")
	b.WriteString(`Respond with a JSON array, one object per city: [{"city": "Houston", "state": "TX"}, ...].` + "\n")
	b.WriteString(`An entry may instead request deep research on one known company: {"task_type": "company_research", "company_name": ..., "city": ..., "state": ...}.`)
	return b.String()
}
