package report

// Typed report payload. Persisted as the Report row's JSON data column
// so export and display consumers get a stable shape instead of an
// untyped map.

type Summary struct {
	TotalLeads        int     `json:"total_leads"`
	QualifiedLeads    int     `json:"qualified_leads"`
	ClosedWonLeads    int     `json:"closed_won_leads"`
	TotalCalls        int     `json:"total_calls"`
	TotalCallDuration int     `json:"total_call_duration"` // seconds
	ConversionRate    float64 `json:"conversion_rate"`     // percent, 1 decimal
	Revenue           float64 `json:"revenue"`
}

type CampaignRollup struct {
	CampaignID     uint   `json:"campaign_id"`
	Name           string `json:"name"`
	LeadsGenerated int    `json:"leads_generated"`
	LeadsConverted int    `json:"leads_converted"`
}

type AgentRollup struct {
	AgentID         uint    `json:"agent_id"`
	Name            string  `json:"name"`
	Calls           int     `json:"calls"`
	TotalDuration   int     `json:"total_duration"` // seconds
	AvgCallDuration float64 `json:"avg_call_duration"`
	LeadsConverted  int     `json:"leads_converted"`
}

type DailyBucket struct {
	Date           string `json:"date"` // YYYY-MM-DD
	Calls          int    `json:"calls"`
	LeadsCreated   int    `json:"leads_created"`
	LeadsConverted int    `json:"leads_converted"`
}

type Data struct {
	Summary   Summary          `json:"summary"`
	Campaigns []CampaignRollup `json:"campaigns"`
	Agents    []AgentRollup    `json:"agents"`
	Daily     []DailyBucket    `json:"daily"`
}
