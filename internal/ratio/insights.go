package ratio

import (
	"fmt"
	"strconv"
	"strings"

	"apbdcli/pkg/contracts/domain"
)

// Interpret renders the named-ratio diagnostics in display order. Each
// covered ratio contributes at most one sentence; ratios marked unavailable
// are skipped, except the composition sentence which always appears with
// zeroed shares. Threshold bands are evaluated top to bottom, first match
// wins.
func Interpret(rs domain.RatioSet) []domain.Insight {
	insights := make([]domain.Insight, 0, 6)

	if k := rs.Get(domain.RatioKemandirian); k.Available {
		insights = append(insights, interpretKemandirian(k.Amount))
	}
	if ef := rs.Get(domain.RatioEfektivitasPAD); ef.Available {
		insights = append(insights, interpretEfektivitas(ef.Amount))
	}
	if efi := rs.Get(domain.RatioEfisiensiBelanja); efi.Available {
		insights = append(insights, interpretEfisiensi(efi.Amount))
	}

	insights = append(insights, interpretKomposisi(
		rs.Get(domain.RatioBelanjaOperasi),
		rs.Get(domain.RatioBelanjaModal),
	))

	if pg := rs.Get(domain.RatioPertumbuhanPendapat); pg.Available {
		insights = append(insights, interpretPertumbuhan(pg.Amount))
	}
	if silpa := rs.Get(domain.RatioSILPA); silpa.Available && silpa.Amount != 0 {
		insights = append(insights, interpretSILPA(silpa.Amount))
	}

	return insights
}

func interpretKemandirian(k float64) domain.Insight {
	var severity domain.Severity
	var text string
	switch {
	case k < 10:
		severity = domain.SeverityPerhatian
		text = fmt.Sprintf("Rasio kemandirian sebesar %.2f%% menunjukkan sangat rendahnya kemampuan PAD; daerah sangat bergantung pada transfer pusat.", k)
	case k < 20:
		severity = domain.SeverityPerhatian
		text = fmt.Sprintf("Rasio kemandirian sebesar %.2f%% tergolong rendah; perlu strategi peningkatan PAD (pajak, retribusi, sumber baru).", k)
	case k < 50:
		severity = domain.SeverityCukup
		text = fmt.Sprintf("Rasio kemandirian %.2f%% tergolong sedang — ada kapasitas PAD tetapi masih perlu penguatan.", k)
	default:
		severity = domain.SeverityBaik
		text = fmt.Sprintf("Rasio kemandirian %.2f%% tergolong tinggi; daerah relatif mandiri.", k)
	}
	return domain.Insight{Ratio: domain.RatioKemandirian, Severity: severity, Text: text}
}

func interpretEfektivitas(ef float64) domain.Insight {
	var severity domain.Severity
	var text string
	switch {
	case ef < 80:
		severity = domain.SeverityPerhatian
		text = fmt.Sprintf("Efektivitas PAD (%.2f%%) rendah — realisasi PAD jauh di bawah target.", ef)
	case ef <= 100:
		severity = domain.SeverityBaik
		text = fmt.Sprintf("Efektivitas PAD (%.2f%%) baik — realisasi mendekati atau sesuai target.", ef)
	default:
		severity = domain.SeverityCukup
		text = fmt.Sprintf("Efektivitas PAD (%.2f%%) tinggi — realisasi melebihi target, perlu verifikasi apakah target realistis.", ef)
	}
	return domain.Insight{Ratio: domain.RatioEfektivitasPAD, Severity: severity, Text: text}
}

func interpretEfisiensi(efi float64) domain.Insight {
	var severity domain.Severity
	var text string
	switch {
	case efi > 100:
		severity = domain.SeverityPerhatian
		text = fmt.Sprintf("Rasio efisiensi belanja (%.2f%%) menunjukkan belanja melebihi anggaran — potensi pemborosan atau realokasi anggaran.", efi)
	case efi >= 90:
		severity = domain.SeverityBaik
		text = fmt.Sprintf("Rasio efisiensi belanja (%.2f%%) cukup baik, serapan wajar terhadap anggaran.", efi)
	default:
		severity = domain.SeverityCukup
		text = fmt.Sprintf("Rasio efisiensi belanja (%.2f%%) rendah — serapan belanja rendah terhadap anggaran.", efi)
	}
	return domain.Insight{Ratio: domain.RatioEfisiensiBelanja, Severity: severity, Text: text}
}

// interpretKomposisi always renders, with unavailable shares shown as 0.00
// so the sentence shape stays stable on spending-free sheets.
func interpretKomposisi(operasi, modal domain.Value) domain.Insight {
	bo, bm := 0.0, 0.0
	if operasi.Available {
		bo = operasi.Amount
	}
	if modal.Available {
		bm = modal.Amount
	}
	return domain.Insight{
		Ratio:    domain.RatioBelanjaOperasi,
		Severity: domain.SeverityCukup,
		Text: fmt.Sprintf("Komposisi belanja: Operasi %.2f%%, Modal %.2f%% — ideal tergantung prioritas; belanja modal rendah dapat berdampak pada investasi infrastruktur.",
			bo, bm),
	}
}

func interpretPertumbuhan(pg float64) domain.Insight {
	severity := domain.SeverityBaik
	if pg < 0 {
		severity = domain.SeverityPerhatian
	}
	return domain.Insight{
		Ratio:    domain.RatioPertumbuhanPendapat,
		Severity: severity,
		Text:     fmt.Sprintf("Pertumbuhan pendapatan tahunan: %.2f%% (jika tersedia data tahun sebelumnya).", pg),
	}
}

func interpretSILPA(silpa float64) domain.Insight {
	return domain.Insight{
		Ratio:    domain.RatioSILPA,
		Severity: domain.SeverityCukup,
		Text: fmt.Sprintf("Terdapat SILPA sebesar %s — perlu analisis alokasi dan penyebab (serapan, penyusunan anggaran).",
			groupDigits(silpa)),
	}
}

// InterpretGeneric applies the coarse single-ratio band scale used for
// ad-hoc category percentages, with the category name interpolated into the
// sentence. Band boundaries differ from the named-ratio bands on purpose.
// Returns false for an unavailable value.
func InterpretGeneric(name string, v domain.Value) (domain.Insight, bool) {
	if !v.Available {
		return domain.Insight{}, false
	}

	var severity domain.Severity
	var grade string
	switch {
	case v.Amount > 100:
		severity = domain.SeverityCukup
		grade = "sangat tinggi"
	case v.Amount > 60:
		severity = domain.SeverityBaik
		grade = "baik"
	case v.Amount > 40:
		severity = domain.SeverityCukup
		grade = "sedang"
	default:
		severity = domain.SeverityPerhatian
		grade = "rendah"
	}

	return domain.Insight{
		Ratio:    domain.RatioName(name),
		Severity: severity,
		Text:     fmt.Sprintf("Rasio %s sebesar %.2f%% tergolong %s.", name, v.Amount, grade),
	}, true
}

// groupDigits renders a float as a whole number with comma thousands
// separators, matching the dashboard's rupiah display.
func groupDigits(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
