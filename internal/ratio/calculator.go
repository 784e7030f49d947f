package ratio

import (
	"apbdcli/pkg/contracts/domain"
)

// Compute builds the full ratio set from the aggregated totals of one
// analysis run. Every ratio with a zero or absent denominator comes back as
// the unavailable sentinel, never as infinity, zero, or an error.
//
// The growth ratios need the two-period partition; a nil periods argument
// marks all three unavailable. SILPA is the one non-percentage entry: the
// summed pembiayaan actual reported as a raw rupiah amount, zero when no
// pembiayaan lines exist.
func Compute(current domain.CategoryTotals, operating domain.OperatingTotals, periods *domain.PeriodTotals) domain.RatioSet {
	spendingActual := current.SpendingActual()

	rs := domain.RatioSet{
		domain.RatioKemandirian: domain.Ratio(
			current.Get(domain.CategoryPAD).Actual,
			current.Get(domain.CategoryTransfer).Actual,
		),
		// The denominator is the PENDAPATAN umbrella category on its own,
		// not the revenue-family sum.
		domain.RatioKetergantungan: domain.Ratio(
			current.Get(domain.CategoryTransfer).Actual,
			current.Get(domain.CategoryPendapatan).Actual,
		),
		domain.RatioEfektivitasPAD: domain.Ratio(
			current.Get(domain.CategoryPAD).Actual,
			current.Get(domain.CategoryPAD).Budget,
		),
		domain.RatioEfisiensiBelanja: domain.Ratio(
			spendingActual,
			current.SpendingBudget(),
		),
		domain.RatioBelanjaOperasi: domain.Ratio(
			current.Get(domain.CategoryBelanjaOperasi).Actual,
			spendingActual,
		),
		domain.RatioBelanjaModal: domain.Ratio(
			current.Get(domain.CategoryBelanjaModal).Actual,
			spendingActual,
		),
		domain.RatioSILPA: domain.Amount(current.Get(domain.CategoryPembiayaan).Actual),
	}

	rs[domain.RatioBelanjaPegawai] = shareWhenTracked(operating.PegawaiTracked, operating.Pegawai.Actual, spendingActual)
	rs[domain.RatioBelanjaBarangJasa] = shareWhenTracked(operating.BarangJasaTracked, operating.BarangJasa.Actual, spendingActual)

	if periods != nil {
		rs[domain.RatioPertumbuhanPendapat] = growth(
			periods.Current.RevenueActual(),
			periods.Previous.RevenueActual(),
		)
		rs[domain.RatioPertumbuhanBelanja] = growth(
			periods.Current.SpendingActual(),
			periods.Previous.SpendingActual(),
		)
		rs[domain.RatioPertumbuhanPAD] = growth(
			periods.Current.Get(domain.CategoryPAD).Actual,
			periods.Previous.Get(domain.CategoryPAD).Actual,
		)
	} else {
		rs[domain.RatioPertumbuhanPendapat] = domain.Unavailable()
		rs[domain.RatioPertumbuhanBelanja] = domain.Unavailable()
		rs[domain.RatioPertumbuhanPAD] = domain.Unavailable()
	}

	return rs
}

// growth is the period-over-period percentage change. A zero previous total
// yields the unavailable sentinel rather than a synthetic figure.
func growth(current, previous float64) domain.Value {
	return domain.Ratio(current-previous, previous)
}

// shareWhenTracked guards the operating-breakdown shares: a sheet that never
// itemizes the bucket reports unavailable instead of a misleading 0.00%.
func shareWhenTracked(tracked bool, actual, total float64) domain.Value {
	if !tracked {
		return domain.Unavailable()
	}
	return domain.Ratio(actual, total)
}
