package milestone

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/illarion/billcycle/internal/errs"
)

// Name identifies one milestone in a Set.
type Name string

const (
	BillingCycleStart     Name = "billing_cycle_start"
	BillInTLifeApp        Name = "bill_in_tlife_app"
	FundsAvailPreAP       Name = "funds_avail_pre_ap"
	AutopayDraft          Name = "autopay_draft"
	BillingCycleClose     Name = "billing_cycle_close"
	ServiceSuspensionRisk Name = "service_suspension_risk"
	NumberLossRisk        Name = "number_loss_risk"
)

// Definition pairs a milestone name with its offset from the cycle start.
type Definition struct {
	Name       Name
	OffsetDays int
}

// Definitions lists every milestone in offset order.
var Definitions = []Definition{
	{BillingCycleStart, 0},
	{BillInTLifeApp, 4},
	{FundsAvailPreAP, 16},
	{AutopayDraft, 17},
	{BillingCycleClose, 30},
	{ServiceSuspensionRisk, 37},
	{NumberLossRisk, 90},
}

func maxOffset() int {
	longest := 0
	for _, def := range Definitions {
		if def.OffsetDays > longest {
			longest = def.OffsetDays
		}
	}
	return longest
}

// Milestone is a single named date of a Set.
type Milestone struct {
	Name       Name
	OffsetDays int
	Date       CalendarDate
}

// Set holds the seven milestones derived from one start date.
type Set struct {
	BillingCycleStart     CalendarDate `json:"billing_cycle_start"`
	BillInTLifeApp        CalendarDate `json:"bill_in_tlife_app"`
	FundsAvailPreAP       CalendarDate `json:"funds_avail_pre_ap"`
	AutopayDraft          CalendarDate `json:"autopay_draft"`
	BillingCycleClose     CalendarDate `json:"billing_cycle_close"`
	ServiceSuspensionRisk CalendarDate `json:"service_suspension_risk"`
	NumberLossRisk        CalendarDate `json:"number_loss_risk"`
}

// Compute derives the milestone set for a billing cycle starting on start.
func Compute(start CalendarDate) Set {
	var s Set
	for _, def := range Definitions {
		*s.field(def.Name) = start.AddDays(def.OffsetDays)
	}
	return s
}

func (s *Set) field(name Name) *CalendarDate {
	switch name {
	case BillingCycleStart:
		return &s.BillingCycleStart
	case BillInTLifeApp:
		return &s.BillInTLifeApp
	case FundsAvailPreAP:
		return &s.FundsAvailPreAP
	case AutopayDraft:
		return &s.AutopayDraft
	case BillingCycleClose:
		return &s.BillingCycleClose
	case ServiceSuspensionRisk:
		return &s.ServiceSuspensionRisk
	case NumberLossRisk:
		return &s.NumberLossRisk
	}
	return nil
}

// Get returns the date for name. ok is false for unknown names.
func (s Set) Get(name Name) (date CalendarDate, ok bool) {
	p := s.field(name)
	if p == nil {
		return CalendarDate{}, false
	}
	return *p, true
}

// Start returns the date the set was derived from.
func (s Set) Start() CalendarDate {
	return s.BillingCycleStart
}

// Milestones returns the set in offset order.
func (s Set) Milestones() []Milestone {
	out := make([]Milestone, len(Definitions))
	for i, def := range Definitions {
		date, _ := s.Get(def.Name)
		out[i] = Milestone{Name: def.Name, OffsetDays: def.OffsetDays, Date: date}
	}
	return out
}

// Validate checks that every milestone sits at its fixed offset from the start.
// Sets produced by Compute are always valid; decoded payloads may not be.
func (s Set) Validate() error {
	start := s.Start()
	for _, m := range s.Milestones() {
		if want := start.AddDays(m.OffsetDays); m.Date != want {
			return errs.Format(string(m.Name), "expected %s (start %+dd), got %s", want, m.OffsetDays, m.Date)
		}
	}
	return nil
}

// Encode returns the JSON payload form of the set.
func (s Set) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a JSON payload. All seven names must be present, no other key
// is allowed, every value must be an MM/DD/YYYY date and the dates must sit at
// their fixed offsets from billing_cycle_start.
func Decode(data []byte) (Set, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return Set{}, errs.Format("payload", "not a JSON object of strings: %v", err)
	}

	var s Set
	for _, def := range Definitions {
		value, ok := raw[string(def.Name)]
		if !ok {
			return Set{}, errs.Format(string(def.Name), "missing")
		}
		date, err := parseDate(value)
		if err != nil {
			return Set{}, errs.Format(string(def.Name), "%q is not a valid MM/DD/YYYY date", value)
		}
		*s.field(def.Name) = date
	}

	if len(raw) != len(Definitions) {
		for key := range raw {
			if s.field(Name(key)) == nil {
				return Set{}, errs.Format(key, "unknown milestone")
			}
		}
	}

	if err := s.Validate(); err != nil {
		return Set{}, err
	}
	return s, nil
}

// Table renders the set as an aligned name/offset/date listing.
func (s Set) Table() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, m := range s.Milestones() {
		fmt.Fprintf(w, "%s\t+%dd\t%s\n", m.Name, m.OffsetDays, m.Date)
	}
	w.Flush()
	return buf.String()
}
