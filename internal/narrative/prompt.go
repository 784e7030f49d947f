package narrative

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"apbdcli/pkg/contracts/domain"
)

// DefaultTopN bounds the prompt when the caller passes no preference.
const DefaultTopN = 5

// BuildPrompt renders the fixed Indonesian prompt over the topN aggregate
// rows sorted by realized amount, largest first. The instruction asks for
// a short summary a non-specialist reader can follow.
func BuildPrompt(rows []domain.AggregateRow, topN int) string {
	if topN <= 0 {
		topN = DefaultTopN
	}

	sorted := make([]domain.AggregateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Actual > sorted[j].Actual
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}

	var b strings.Builder
	b.WriteString("Anda adalah analis keuangan pemerintah daerah. ")
	b.WriteString("Buat ringkasan naratif singkat (3-5 kalimat) dalam Bahasa Indonesia ")
	b.WriteString("yang mudah dipahami masyarakat umum tentang realisasi APBD berikut. ")
	b.WriteString("Sebutkan kategori dengan realisasi terbesar, bandingkan realisasi ")
	b.WriteString("dengan anggarannya, dan hindari istilah teknis.\n\n")
	b.WriteString("Data per kategori (anggaran vs realisasi, dalam rupiah):\n")

	for _, row := range sorted {
		if row.Budget != 0 {
			fmt.Fprintf(&b, "- %s: anggaran Rp %s, realisasi Rp %s (%.1f%%)\n",
				row.Category, groupAmount(row.Budget), groupAmount(row.Actual),
				row.Actual/row.Budget*100)
		} else {
			fmt.Fprintf(&b, "- %s: anggaran Rp %s, realisasi Rp %s\n",
				row.Category, groupAmount(row.Budget), groupAmount(row.Actual))
		}
	}

	b.WriteString("\nJawab hanya dengan paragraf narasi, tanpa judul dan tanpa daftar.")
	return b.String()
}

// groupAmount renders a rupiah amount with comma thousands separators,
// matching the dashboard display.
func groupAmount(v float64) string {
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
