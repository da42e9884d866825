// Package reporting resolves report date windows and aggregates call logs
// into the inbound report and lead buckets.
package reporting

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dalemusser/voicedesk/internal/domain/models"
)

// Named filters accepted by the inbound endpoints.
const (
	FilterToday     = "today"
	FilterYesterday = "yesterday"
	FilterLast7Days = "last7days"
)

// AllowedFilters is echoed back to callers that send an unknown filter.
var AllowedFilters = []string{FilterToday, FilterYesterday, FilterLast7Days}

var (
	ErrInvalidFilter = errors.New("invalid filter parameter")
	ErrInvalidDate   = errors.New("invalid date format")
)

// InvalidFilterMessage is the human message paired with ErrInvalidFilter.
const InvalidFilterMessage = "Filter must be one of: today, yesterday, last7days or provide both startDate and endDate"

// Range is a resolved time window. Start and End are nil when no window
// applies, in which case every log matches.
type Range struct {
	Filter string
	Start  *time.Time
	End    *time.Time
}

// Echo is the filter block returned alongside report data.
type Echo struct {
	Applied   string     `json:"applied"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Echo reports what window was applied.
func (r Range) Echo() Echo {
	applied := r.Filter
	if applied == "" {
		applied = "all"
	}
	return Echo{Applied: applied, StartDate: r.Start, EndDate: r.End}
}

func isAllowed(filter string) bool {
	for _, f := range AllowedFilters {
		if f == filter {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Resolve turns the filter/startDate/endDate query values into a window,
// evaluated in now's location.
//
// A named filter wins over explicit dates. An unknown filter is tolerated
// only when both dates are present.
func Resolve(filter, startDate, endDate string, now time.Time) (Range, error) {
	filter = strings.TrimSpace(filter)
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)
	haveDates := startDate != "" && endDate != ""

	if filter != "" && !isAllowed(filter) && !haveDates {
		return Range{}, ErrInvalidFilter
	}

	rg := Range{Filter: filter}
	var start, end time.Time
	switch filter {
	case FilterToday:
		start, end = startOfDay(now), endOfDay(now)
	case FilterYesterday:
		y := now.Add(-24 * time.Hour)
		start, end = startOfDay(y), endOfDay(y)
	case FilterLast7Days:
		start, end = now.Add(-7*24*time.Hour), now
	default:
		if !haveDates {
			return rg, nil
		}
		var err error
		if start, err = dateparse.ParseIn(startDate, now.Location()); err != nil {
			return Range{}, ErrInvalidDate
		}
		if end, err = dateparse.ParseIn(endDate, now.Location()); err != nil {
			return Range{}, ErrInvalidDate
		}
		end = endOfDay(end.In(now.Location()))
	}
	rg.Start, rg.End = &start, &end
	return rg, nil
}

// Summary is the inbound report body.
type Summary struct {
	ClientID              string  `json:"clientId"`
	TotalCalls            int     `json:"totalCalls"`
	TotalConnected        int     `json:"totalConnected"`
	TotalNotConnected     int     `json:"totalNotConnected"`
	TotalConversationTime float64 `json:"totalConversationTime"`
	AvgCallDuration       float64 `json:"avgCallDuration"`
}

// Summarize computes call totals. A log is connected unless its status is
// not_connected.
func Summarize(clientID string, logs []models.CallLog) Summary {
	s := Summary{ClientID: clientID, TotalCalls: len(logs)}
	for _, l := range logs {
		if l.LeadStatus == models.LeadNotConnected {
			s.TotalNotConnected++
		} else {
			s.TotalConnected++
		}
		s.TotalConversationTime += l.Duration
	}
	if s.TotalCalls > 0 {
		s.AvgCallDuration = s.TotalConversationTime / float64(s.TotalCalls)
	}
	return s
}

// Bucket is one lead category.
type Bucket struct {
	Data  []models.CallLog `json:"data"`
	Count int              `json:"count"`
}

func (b *Bucket) add(l models.CallLog) {
	b.Data = append(b.Data, l)
	b.Count++
}

// Leads groups call logs by lead status. Field order matches the
// categories shown on the dashboard.
type Leads struct {
	VeryInterested Bucket `json:"veryInterested"`
	Maybe          Bucket `json:"maybe"`
	Enrolled       Bucket `json:"enrolled"`

	JunkLead      Bucket `json:"junkLead"`
	NotRequired   Bucket `json:"notRequired"`
	EnrolledOther Bucket `json:"enrolledOther"`
	Decline       Bucket `json:"decline"`
	NotEligible   Bucket `json:"notEligible"`
	WrongNumber   Bucket `json:"wrongNumber"`

	HotFollowup  Bucket `json:"hotFollowup"`
	ColdFollowup Bucket `json:"coldFollowup"`
	Schedule     Bucket `json:"schedule"`

	NotConnected Bucket `json:"notConnected"`
}

func (ls *Leads) bucket(status string) *Bucket {
	switch status {
	case models.LeadVVI, models.LeadVeryInterested:
		return &ls.VeryInterested
	case models.LeadMaybe, models.LeadMedium:
		return &ls.Maybe
	case models.LeadEnrolled:
		return &ls.Enrolled
	case models.LeadJunk:
		return &ls.JunkLead
	case models.LeadNotRequired:
		return &ls.NotRequired
	case models.LeadEnrolledOther:
		return &ls.EnrolledOther
	case models.LeadDecline:
		return &ls.Decline
	case models.LeadNotEligible:
		return &ls.NotEligible
	case models.LeadWrongNumber:
		return &ls.WrongNumber
	case models.LeadHotFollowup:
		return &ls.HotFollowup
	case models.LeadColdFollowup:
		return &ls.ColdFollowup
	case models.LeadSchedule:
		return &ls.Schedule
	case models.LeadNotConnected:
		return &ls.NotConnected
	}
	return nil
}

// Bucketize sorts logs into lead categories. Logs with an unrecognised
// status are left out. Every bucket's Data is non-nil.
func Bucketize(logs []models.CallLog) Leads {
	var ls Leads
	for _, b := range ls.all() {
		b.Data = []models.CallLog{}
	}
	for _, l := range logs {
		if b := ls.bucket(l.LeadStatus); b != nil {
			b.add(l)
		}
	}
	return ls
}

func (ls *Leads) all() []*Bucket {
	return []*Bucket{
		&ls.VeryInterested, &ls.Maybe, &ls.Enrolled,
		&ls.JunkLead, &ls.NotRequired, &ls.EnrolledOther, &ls.Decline, &ls.NotEligible, &ls.WrongNumber,
		&ls.HotFollowup, &ls.ColdFollowup, &ls.Schedule,
		&ls.NotConnected,
	}
}
