package subscription

// ============================================================================
// Charge window arithmetic
// ============================================================================

// DueAt returns when the period after sub's last paid one begins
func (p *Plan) DueAt(sub *Subscription) uint64 {
	return sub.LastCharge + uint64(p.PaymentInterval)*Day
}

// PeriodStart returns the start of the period a charge made at now pays
// for. Charges taken early, inside the grace window, pay for the upcoming
// period rather than shifting the schedule.
func (p *Plan) PeriodStart(sub *Subscription, now uint64) uint64 {
	if due := p.DueAt(sub); due > now {
		return due
	}
	return now
}

// Covers reports whether a period starting at periodStart ends within the
// subscription term
func (p *Plan) Covers(sub *Subscription, periodStart uint64) bool {
	end := sub.Start + uint64(p.Duration)*Day
	return periodStart+uint64(p.PaymentInterval)*Day <= end
}

// Chargeable reports whether the plan owner may charge sub at now given
// the configured grace period. The second result is false when the next
// period would run past the term and the subscription must be renewed.
func (p *Plan) Chargeable(sub *Subscription, now uint64, grace uint32) (open bool, covered bool) {
	open = now+uint64(grace) >= p.DueAt(sub)
	covered = p.Covers(sub, p.PeriodStart(sub, now))
	return open, covered
}
