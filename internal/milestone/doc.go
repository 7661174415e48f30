// Package milestone computes the billing-cycle milestones derived from a
// single start date.
//
// Every milestone is a fixed day offset from the start date:
//   - billing_cycle_start       +0 days
//   - bill_in_tlife_app         +4 days
//   - funds_avail_pre_ap        +16 days
//   - autopay_draft             +17 days
//   - billing_cycle_close       +30 days
//   - service_suspension_risk   +37 days
//   - number_loss_risk          +90 days
//
// Dates are plain Gregorian calendar dates with no time zone. The JSON payload
// form keys each milestone by name with an MM/DD/YYYY value.
package milestone
